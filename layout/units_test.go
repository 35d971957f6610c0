package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, v := range samples {
		if diff := math.Abs(mmToPT(ptToMM(v)) - v); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%g diff=%g", v, diff)
		}
		if diff := math.Abs(ptToMM(mmToPT(v)) - v); diff > 1e-9 {
			t.Fatalf("mm→pt→mm 往返误差过大: in=%g diff=%g", v, diff)
		}
	}
}

// TestParseLength 覆盖常见单位与百分比。
func TestParseLength(t *testing.T) {
	tests := []struct {
		in     string
		wantMM float64
		unit   Unit
	}{
		{"16mm", 16, UnitMM},
		{"2.54cm", 25.4, UnitCM},
		{"1in", 25.4, UnitIN},
		{"72pt", 72 * PtToMm, UnitPT},
		{" 12 ", 12, UnitNone},
	}
	for _, tt := range tests {
		l, ok := ParseLength(tt.in)
		if !ok {
			t.Fatalf("ParseLength(%q) failed", tt.in)
		}
		if l.Unit != tt.unit {
			t.Fatalf("ParseLength(%q) unit = %s, want %s", tt.in, UnitToString(l.Unit), UnitToString(tt.unit))
		}
		if diff := math.Abs(l.ToMM() - tt.wantMM); diff > 1e-9 {
			t.Fatalf("ParseLength(%q).ToMM() = %g, want %g", tt.in, l.ToMM(), tt.wantMM)
		}
	}

	pct, ok := ParseLength("30%")
	if !ok || pct.Unit != UnitPercent || math.Abs(pct.Ratio()-0.3) > 1e-12 {
		t.Fatalf("percent parse failed: %+v", pct)
	}
	if _, ok := ParseLength("portrait"); ok {
		t.Fatalf("non-numeric token must not parse")
	}
	if v, ok := parsePT("9"); !ok || v != 9 {
		t.Fatalf("bare numbers are points for parsePT, got %g", v)
	}
	if v, ok := parsePT("10mm"); !ok || math.Abs(v-10*MmToPt) > 1e-9 {
		t.Fatalf("parsePT(10mm) = %g", v)
	}
}

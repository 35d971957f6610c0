package layout

import (
	"reflect"
	"strings"
	"testing"
)

func TestFitTextTruncatesLongHeadline(t *testing.T) {
	w := charWidth(20)
	text := "SUPER LONG PRODUCT NAME EXCEEDING WIDTH"

	got := FitText(text, 200, 1, w)
	if len(got) != 1 || got[0] != "SUPER LONG PROD…" {
		t.Fatalf("FitText = %q", got)
	}
	if w(got[0]) > 200 {
		t.Fatalf("line too wide: %g", w(got[0]))
	}
	if line := TruncateLine(text, 200, w); line != "SUPER LONG PROD…" {
		t.Fatalf("TruncateLine = %q", line)
	}
}

func TestFitTextExtendsLastLine(t *testing.T) {
	w := charWidth(10) // 6pt/字符
	got := FitText("alpha beta gamma delta", 60, 2, w)
	want := []string{"alpha beta", "gamma del…"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FitText = %q, want %q", got, want)
	}
}

func TestFitTextEdgeCases(t *testing.T) {
	w := charWidth(10)
	if got := FitText("", 100, 3, w); !reflect.DeepEqual(got, []string{""}) {
		t.Fatalf("empty input = %q", got)
	}
	if got := FitText("one two three", 100, 0, w); len(got) != 1 {
		t.Fatalf("maxLines<1 应按 1 处理: %q", got)
	}
	if got := FitText("a\n\nb", 100, 3, w); !reflect.DeepEqual(got, []string{"a", "", "b"}) {
		t.Fatalf("blank block lost: %q", got)
	}
	// 达到行数上限后，后续段落的首词接到最后一行
	if got := FitText("first\nsecond", 100, 1, w); !reflect.DeepEqual(got, []string{"first second…"}) {
		t.Fatalf("cross-block extend = %q", got)
	}

	wide := func(s string) float64 {
		n := 0.0
		for _, r := range s {
			if r == 'W' {
				n += 20
			} else {
				n += 12
			}
		}
		return n
	}
	if got := FitText("W", 15, 1, wide); !reflect.DeepEqual(got, []string{"…"}) {
		t.Fatalf("single wide char = %q", got)
	}
	if got := FitText("abcdefghij", 48, 2, charWidth(10)); got[0] != "abcdefg…" {
		t.Fatalf("oversized word = %q", got)
	}
}

func TestFitTextBoundsAndIdempotence(t *testing.T) {
	texts := []string{
		"Heavy duty stainless steel combination pliers with insulated grip",
		"10, 20, 30, 40, 50, 60\n70, 80",
		"Supercalifragilisticexpialidocious word\n\nnext paragraph here",
		"  spaced   out\twords  ",
		"短 中文 文本 测试 一二三四五六七八九十",
		"x",
	}
	w := charWidth(9)
	for _, text := range texts {
		for _, maxW := range []float64{6, 20, 45, 80, 150, 400} {
			for maxLines := 1; maxLines <= 4; maxLines++ {
				got := FitText(text, maxW, maxLines, w)
				if len(got) == 0 || len(got) > maxLines {
					t.Fatalf("%q w=%g n=%d: %d lines", text, maxW, maxLines, len(got))
				}
				for _, line := range got {
					if w(line) > maxW+1e-9 {
						t.Fatalf("%q w=%g n=%d: line %q too wide", text, maxW, maxLines, line)
					}
				}
				again := FitText(strings.Join(got, "\n"), maxW, maxLines, w)
				if !reflect.DeepEqual(again, got) {
					t.Fatalf("%q w=%g n=%d: refit %q != %q", text, maxW, maxLines, again, got)
				}
			}
		}
	}
}

func TestWrapText(t *testing.T) {
	w := charWidth(10)
	if got := WrapText("alpha beta gamma", 60, w); !reflect.DeepEqual(got, []string{"alpha beta", "gamma"}) {
		t.Fatalf("WrapText = %q", got)
	}
	if got := WrapText("abcdefghijkl", 60, w); !reflect.DeepEqual(got, []string{"abcdefghij", "kl"}) {
		t.Fatalf("hard break = %q", got)
	}
	if got := WrapText("a\nb", 60, w); len(got) != 2 {
		t.Fatalf("newline lost: %q", got)
	}
}

func TestEstimateLines(t *testing.T) {
	tests := []struct {
		text string
		max  int
		want int
	}{
		{"abc", 5, 1},
		{strings.Repeat("x", 30), 5, 3},
		{"a\nb\nc", 5, 3},
		{strings.Repeat("x", 100), 2, 2},
		{strings.Repeat("x", 100), 1, 1},
	}
	for _, tt := range tests {
		// (100 - 6) / 6.6 = 14 字符/行
		if got := EstimateLines(tt.text, 100, 3, 11, tt.max); got != tt.want {
			t.Fatalf("EstimateLines(%q, max=%d) = %d, want %d", tt.text, tt.max, got, tt.want)
		}
	}
}

package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe lengths used by profiles and the planner.

// Unit represents the original unit of a length value as written in a profile.
type Unit int

const (
	UnitNone    Unit = iota // unit-less numbers like ratios
	UnitMM                  // millimeters
	UnitCM                  // centimeters
	UnitIN                  // inches
	UnitPT                  // points
	UnitPercent             // percent of a reference length
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// ToMM converts to millimeters. Unit-less values are taken as mm; percentages
// have no absolute size and return the bare number.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ToPT converts to points.
func (l Length) ToPT() float64 {
	if l.Unit == UnitPT {
		return l.Value
	}
	return l.ToMM() * MmToPt
}

// Ratio returns the value as a fraction: 30% → 0.3, 0.3 → 0.3.
func (l Length) Ratio() float64 {
	if l.Unit == UnitPercent {
		return l.Value / 100
	}
	return l.Value
}

// ParseLength parses a profile length string preserving its unit.
// ok is false when the numeric part is not a number.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"%", UnitPercent}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// parseMM is a shorthand for profile values where a bare number means mm.
func parseMM(value string) (float64, bool) {
	l, ok := ParseLength(value)
	if !ok {
		return 0, false
	}
	return l.ToMM(), true
}

// parsePT is a shorthand for profile values where a bare number means pt.
func parsePT(value string) (float64, bool) {
	l, ok := ParseLength(value)
	if !ok {
		return 0, false
	}
	if l.Unit == UnitNone {
		return l.Value, true
	}
	return l.ToPT(), true
}

func ptToMM(v float64) float64 { return v * PtToMm }
func mmToPT(v float64) float64 { return v * MmToPt }

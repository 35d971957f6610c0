package layout

import (
	"math"
	"unicode/utf8"

	"github.com/ByLCY/folio/catalog"
)

// charMeasurer 以 字符数×字号×0.6 近似文字宽度，结果只与字号有关。
var charMeasurer = MeasureFunc(func(s string, _ FontResource, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size * 0.6
})

func charWidth(size float64) WidthFunc {
	return func(s string) float64 { return charMeasurer(s, FontResource{}, size) }
}

// mapResolver 只认识表中的引用。
type mapResolver map[string]string

func (m mapResolver) Resolve(ref string) (string, bool) {
	p, ok := m[ref]
	return p, ok
}

func record(name, code, group, category, sub string, f catalog.Format, fields ...catalog.Field) catalog.Record {
	return catalog.Record{
		Name:        name,
		Code:        code,
		GroupKey:    group,
		Category:    category,
		Subcategory: sub,
		Format:      f,
		Fields:      fields,
		Attrs:       map[string]string{},
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

package preview

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/folio/catalog"
	"github.com/ByLCY/folio/layout"
)

var stubMeasurer = layout.MeasureFunc(func(s string, _ layout.FontResource, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size * 0.6
})

func samplePlan(t *testing.T) *layout.Result {
	t.Helper()
	recs := []catalog.Record{
		{Name: "Claw Hammer", Code: "H1", Category: "Hand Tools", Subcategory: "Hammers", Format: catalog.FormatTwoPerPage,
			Fields: []catalog.Field{{Key: "Weight", Value: "500 g"}}},
		{Name: "Hex Key Set", Code: "HK1", GroupKey: "G", Category: "Hand Tools", Subcategory: "Hex Keys", Format: catalog.FormatTable,
			Fields: []catalog.Field{{Key: "Size", Value: "2, 3, 4"}, {Key: "Packing", Value: "10 pcs"}}},
	}
	res, err := layout.Build(recs, layout.BuildOptions{Measurer: stubMeasurer})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res
}

func TestRenderPageDrawsContent(t *testing.T) {
	res := samplePlan(t)
	r := NewRenderer(t.TempDir(), 2)
	img, err := r.RenderPage(res, res.Pages[0])
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 420 || b.Dy() != 594 {
		t.Fatalf("page bounds = %v", b)
	}
	// 页眉带中应有深色像素（子类标题）
	band := res.Pages[0].Margin.Top + 14
	if !hasInk(img, 0, 0, img.Bounds().Dx(), int(band*2)) {
		t.Fatalf("header band is blank")
	}
	// 页脚横线与页脚文字
	if !hasInk(img, 0, int((297-9)*2)-2, img.Bounds().Dx(), img.Bounds().Dy()) {
		t.Fatalf("footer rule missing")
	}
}

func TestRenderContactSheet(t *testing.T) {
	res := samplePlan(t)
	data, err := NewRenderer("", 1).Render(res)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode sheet: %v", err)
	}
	if w := img.Bounds().Dx(); w != 2*(210+8)+8 {
		t.Fatalf("sheet width = %d", w)
	}
	if _, err := NewRenderer("", 1).Render(&layout.Result{}); err == nil {
		t.Fatalf("empty plan should fail")
	}
}

func TestWritePages(t *testing.T) {
	res := samplePlan(t)
	paths, err := NewRenderer("", 1).WritePages(res, t.TempDir())
	if err != nil {
		t.Fatalf("WritePages: %v", err)
	}
	if len(paths) != len(res.Pages) {
		t.Fatalf("wrote %d files for %d pages", len(paths), len(res.Pages))
	}
	for _, p := range paths {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("missing preview %s: %v", p, err)
		}
	}
}

func hasInk(img image.Image, x0, y0, x1, y1 int) bool {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r < 0xc000 && g < 0xc000 && b < 0xc000 {
				return true
			}
		}
	}
	return false
}

package layout

import (
	"strings"
	"testing"

	"github.com/ByLCY/folio/catalog"
	"github.com/ByLCY/folio/dsl"
)

const testProfile = `
catalog Hardware v1 {
  meta {
    title: "Hardware Catalogue"
    author: "LSK"
    keywords: ["tools", "hardware"]
  }
  resources {
    font Black {
      src: "builtin:bold"
      style: "bold"
    }
    font Book {
      src: "fonts/Avenir-Book.ttf"
      fallback: "builtin:regular"
    }
    image round { src: "icons/round.png" }
    cover main { src: "covers/main.jpg" }
    cover "Hand Tools" { src: "covers/hand-tools.jpg" }
  }
  page A4 margin 1mm 6mm 15mm 6mm {
    header: 12mm
  }
  format 1WP { boost: 6mm }
  format 3 {
    gap: 10mm
    cap: 80%
    rows: 8
  }
  columns {
    min: 12mm
    ratio: 0.5
    cap size max 90pt ratio 25%
    cap finish max 60pt
  }
  footer {
    template: "${Brand|\"Acme\"}"
    color: #333
  }
}
`

func loadTestProfile(t *testing.T, src string) *Profile {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析配置失败: %v", err)
	}
	p, err := LoadProfile(doc)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	return p
}

func TestLoadProfile(t *testing.T) {
	p := loadTestProfile(t, testProfile)
	if p.Meta.Title != "Hardware Catalogue" || p.Meta.Author != "LSK" || len(p.Meta.Keywords) != 2 {
		t.Fatalf("meta: %+v", p.Meta)
	}
	if f := p.Resources.Fonts[FontBook]; f.Src != "fonts/Avenir-Book.ttf" || f.Fallback != "builtin:regular" {
		t.Fatalf("book font: %+v", f)
	}
	if p.Resources.Images["round"].Src != "icons/round.png" {
		t.Fatalf("icon not registered: %+v", p.Resources.Images)
	}
	cfg := p.Config
	if cfg.Covers.Main != "covers/main.jpg" || cfg.Covers.Categories["HAND TOOLS"] != "covers/hand-tools.jpg" {
		t.Fatalf("covers: %+v", cfg.Covers)
	}
	if !near(cfg.Margin.Top, 1) || !near(cfg.Margin.Left, 6) || !near(cfg.HeaderBand, 12) {
		t.Fatalf("page: %+v header=%g", cfg.Margin, cfg.HeaderBand)
	}
	if one := cfg.ParamsFor(catalog.FormatSinglePerPage); !near(one.Boost, 6) || one.ImageWidth != 100 {
		t.Fatalf("1WP params: %+v", one)
	}
	three := cfg.ParamsFor(catalog.FormatThreePerPage)
	if !near(three.Gap, 10) || !near(three.ImageCap, 0.8) || three.DetailRows != 8 || three.PerPage != 3 {
		t.Fatalf("format 3 params: %+v", three)
	}
	if !near(cfg.Columns.MinWidth, 12*MmToPt) || !near(cfg.Columns.MaxRatio, 0.5) {
		t.Fatalf("columns: %+v", cfg.Columns)
	}
	if c, ok := cfg.Columns.Cap("Size"); !ok || !near(c.Max, 90) || !near(c.Ratio, 0.25) {
		t.Fatalf("size cap: %+v", c)
	}
	if c, ok := cfg.Columns.Cap("finish"); !ok || !near(c.Max, 60) {
		t.Fatalf("finish cap: %+v", c)
	}
	if _, ok := cfg.Columns.Cap("height"); !ok {
		t.Fatalf("default caps should be kept")
	}
	if cfg.Footer.Template != `${Brand|"Acme"}` || cfg.Styles.Footer.Color != (Color{R: 0x33, G: 0x33, B: 0x33}) {
		t.Fatalf("footer: %q %+v", cfg.Footer.Template, cfg.Styles.Footer.Color)
	}
}

func TestLoadProfileMarginVariants(t *testing.T) {
	get := func(spec string) Margin {
		return loadTestProfile(t, "catalog T v1 { page "+spec+" }").Config.Margin
	}
	m1 := get("A4 portrait margin 10mm")
	if !(near(m1.Top, 10) && near(m1.Right, 10) && near(m1.Bottom, 10) && near(m1.Left, 10)) {
		t.Fatalf("1 值语义错误: %+v", m1)
	}
	m2 := get("A4 margin 10mm 5mm")
	if !(near(m2.Top, 10) && near(m2.Bottom, 10) && near(m2.Left, 5) && near(m2.Right, 5)) {
		t.Fatalf("2 值语义错误: %+v", m2)
	}
	m3 := get("A4 margin 12mm 8mm 6mm")
	if !(near(m3.Top, 12) && near(m3.Right, 8) && near(m3.Bottom, 6) && near(m3.Left, 0)) {
		t.Fatalf("3 值语义错误: %+v", m3)
	}
	m4 := get("A4 margin 1cm 5mm 2cm 3mm")
	if !(near(m4.Top, 10) && near(m4.Right, 5) && near(m4.Bottom, 20) && near(m4.Left, 3)) {
		t.Fatalf("4 值语义错误: %+v", m4)
	}
	m5 := get("A4 margin 1mm 2mm 3mm 4mm 999mm")
	if !(near(m5.Top, 1) && near(m5.Right, 2) && near(m5.Bottom, 3) && near(m5.Left, 4)) {
		t.Fatalf(">4 值应忽略多余: %+v", m5)
	}
	if p := loadTestProfile(t, "catalog T v1 { page A5 landscape }"); p.Config.PageWidth != 210 || p.Config.PageHeight != 148 {
		t.Fatalf("landscape A5: %gx%g", p.Config.PageWidth, p.Config.PageHeight)
	}
}

func TestLoadProfileErrors(t *testing.T) {
	bad := []string{
		"catalog T v1 { page Letter }",
		"catalog T v1 { format 2 { colour: 1 } }",
		"catalog T v1 { format TABLE { gap: 1mm } }",
		"catalog T v1 { format 3 { perpage: 0 } }",
		"catalog T v1 { columns { min: wide } }",
	}
	for _, src := range bad {
		doc, err := dsl.ParseString(src)
		if err != nil {
			continue
		}
		if _, err := LoadProfile(doc); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
	if p, err := LoadProfile(nil); err != nil || p.Config.PageWidth != 210 {
		t.Fatalf("nil document should give defaults: %v", err)
	}
}

func TestDefaultProfileFonts(t *testing.T) {
	p := DefaultProfile()
	if !strings.HasPrefix(p.Resources.Font(FontBlack).Src, "builtin:") {
		t.Fatalf("black font: %+v", p.Resources.Font(FontBlack))
	}
	if p.Resources.Font("missing").Name != FontBook {
		t.Fatalf("unknown font should fall back to Book")
	}
}

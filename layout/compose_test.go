package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ByLCY/folio/catalog"
)

func field(key, value string) catalog.Field {
	return catalog.Field{Key: key, Value: value}
}

func buildWith(t *testing.T, records []catalog.Record, profile *Profile, images ImageResolver) *Result {
	t.Helper()
	res, err := Build(records, BuildOptions{Measurer: charMeasurer, Images: images, Profile: profile})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res
}

func warningCodes(res *Result) []string {
	var out []string
	for _, w := range res.Warnings {
		out = append(out, w.Code)
	}
	return out
}

func countWarnings(res *Result, code string) int {
	n := 0
	for _, w := range res.Warnings {
		if w.Code == code {
			n++
		}
	}
	return n
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(nil, BuildOptions{Measurer: charMeasurer}); !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	recs := []catalog.Record{record("Pliers", "DL1", "", "Tools", "Pliers", catalog.FormatTwoPerPage)}
	if _, err := Build(recs, BuildOptions{}); !errors.Is(err, ErrNoMeasurer) {
		t.Fatalf("expected ErrNoMeasurer, got %v", err)
	}
}

func TestBuildMultiItemPages(t *testing.T) {
	recs := []catalog.Record{
		record("Combination Pliers (8\")", "DL1", "A", "Hand Tools", "Pliers", catalog.FormatTwoPerPage, field("Material", "CrV")),
		record("Long Nose Pliers", "DL2", "B", "Hand Tools", "Pliers", catalog.FormatTwoPerPage, field("Material", "CrV")),
		record("", "DL3", "C", "Hand Tools", "Pliers", catalog.FormatTwoPerPage),
	}
	recs[0].Attrs["Company"] = "Acme Tools"
	res := buildWith(t, recs, nil, nil)

	if len(res.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(res.Pages))
	}
	first := res.Pages[0]
	if first.Kind != PageContent || first.Footer == nil {
		t.Fatalf("content page should carry a footer: %+v", first.Footer)
	}
	if got := *first.Footer; got != (FooterContext{Left: "Acme Tools", Center: "PLIERS", Right: "1"}) {
		t.Fatalf("footer = %+v", got)
	}
	if res.Pages[1].Footer.Right != "2" {
		t.Fatalf("second page number = %q", res.Pages[1].Footer.Right)
	}
	if first.Texts[0].Lines[0].Content != "PLIERS" {
		t.Fatalf("subcategory header = %q", first.Texts[0].Lines[0].Content)
	}

	var headlines []string
	for _, p := range res.Pages {
		for _, tb := range p.Texts {
			if tb.Font == FontBlack && near(tb.FontSize, ptToMM(20)) {
				headlines = append(headlines, tb.Lines[0].Content)
			}
		}
	}
	want := []string{"COMBINATION PLIERS", "LONG NOSE PLIERS", unknownProduct}
	if !reflect.DeepEqual(headlines, want) {
		t.Fatalf("headlines = %q, want %q", headlines, want)
	}

	plan := res.Sections[0].Plan
	if plan == nil || !near(plan.Container, 130.75) {
		t.Fatalf("section plan = %+v", plan)
	}
	// 第二个条目的标题在 top + container + gap
	top := DefaultConfig().ContentTop()
	second := res.Pages[0].Images[1]
	if !near(second.Y, top+plan.Container+plan.Gap+DefaultConfig().Headline) {
		t.Fatalf("second image y = %g", second.Y)
	}
	if !reflect.DeepEqual(res.Sections[0].Pages, []int{1, 2}) {
		t.Fatalf("section pages = %v", res.Sections[0].Pages)
	}
	for _, p := range res.Pages {
		for _, img := range p.Images {
			if img.Y+img.Height > p.Height-p.Margin.Bottom+1e-6 {
				t.Fatalf("image slot below content area: %+v", img)
			}
		}
	}
}

func TestBuildGroupsStayTogether(t *testing.T) {
	recs := []catalog.Record{
		record("A", "1", "G1", "Tools", "Sub", catalog.FormatThreePerPage),
		record("B", "2", "G2", "Tools", "Sub", catalog.FormatThreePerPage),
		record("C", "3", "G2", "Tools", "Sub", catalog.FormatThreePerPage),
		record("D", "4", "G2", "Tools", "Sub", catalog.FormatThreePerPage),
	}
	res := buildWith(t, recs, nil, nil)
	if len(res.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(res.Pages))
	}
	if n := len(res.Pages[1].Images); n != 3 {
		t.Fatalf("group G2 should share the second page, got %d slots", n)
	}
}

func TestBuildCovers(t *testing.T) {
	profile := DefaultProfile()
	profile.Config.Covers = Covers{
		Main: "main.jpg",
		Categories: map[string]string{
			"HAND TOOLS":  "hand.jpg",
			"POWER TOOLS": "power.jpg",
		},
	}
	images := mapResolver{"main.jpg": "/tmp/main.jpg", "hand.jpg": "/tmp/hand.jpg"}
	recs := []catalog.Record{
		record("Hammer", "H1", "", "Hand Tools", "Hammers", catalog.FormatSinglePerPage),
		record("Drill", "P1", "", "Power Tools", "Drills", catalog.FormatSinglePerPage),
	}
	res := buildWith(t, recs, profile, images)

	kinds := make([]PageKind, len(res.Pages))
	for i, p := range res.Pages {
		kinds[i] = p.Kind
	}
	want := []PageKind{PageCover, PageCover, PageContent, PageContent}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("page kinds = %v, want %v", kinds, want)
	}
	if res.Pages[0].Footer != nil || res.Pages[0].Images[0].Fit != "fill" {
		t.Fatalf("cover page should be a full-page image without footer")
	}
	if res.Pages[2].Footer.Right != "3" {
		t.Fatalf("page numbers should count covers: %q", res.Pages[2].Footer.Right)
	}
	if countWarnings(res, WarnCoverMissing) != 1 {
		t.Fatalf("expected one cover warning: %v", warningCodes(res))
	}
	// 1WP 无图：图表槽不显示占位，商品图显示
	if countWarnings(res, WarnImageMissing) != 0 {
		t.Fatalf("blank image refs should not warn: %v", warningCodes(res))
	}
	placeholders := 0
	for _, tb := range res.Pages[2].Texts {
		if len(tb.Lines) == 1 && tb.Lines[0].Content == "No Image" {
			placeholders++
		}
	}
	if placeholders != 1 || len(res.Pages[2].Rects) != 1 {
		t.Fatalf("expected one placeholder, got %d texts %d rects", placeholders, len(res.Pages[2].Rects))
	}
}

func TestBuildImageMissingWarning(t *testing.T) {
	rec := record("Saw", "S1", "", "Tools", "Saws", catalog.FormatTwoPerPage)
	rec.Image = "https://example.com/saw.png"
	res := buildWith(t, []catalog.Record{rec}, nil, mapResolver{})
	if countWarnings(res, WarnImageMissing) != 1 {
		t.Fatalf("expected image warning: %v", warningCodes(res))
	}
	if !res.Pages[0].Images[0].Missing() {
		t.Fatalf("slot should be kept as placeholder")
	}
}

func tableRecord(code, group, format string, size string) catalog.Record {
	return record("Hex Key Set", code, group, "Hand Tools", "Hex Keys", catalog.NormalizeFormat(format),
		field("Size", size), field("Packing", "10 pcs"), field("Weight", "1kg"))
}

func TestBuildTablePairs(t *testing.T) {
	recs := []catalog.Record{
		tableRecord("HK1", "G1", "TABLE2", "1.5"),
		tableRecord("HK2", "G2", "TABLE2", "2"),
		tableRecord("HK3", "G3", "TABLE2", "2.5"),
	}
	res := buildWith(t, recs, nil, nil)
	if len(res.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(res.Pages))
	}
	if n := len(res.Pages[0].Tables); n != 2 {
		t.Fatalf("first page should hold two tables, got %d", n)
	}
	if countWarnings(res, WarnPairDegraded) != 1 {
		t.Fatalf("expected one degraded pair: %v", warningCodes(res))
	}
	if len(res.Sections) != 3 || !reflect.DeepEqual(res.Sections[1].Pages, []int{1}) {
		t.Fatalf("sections = %+v", res.Sections)
	}
	tbl := res.Pages[0].Tables[0]
	headers := make([]string, len(tbl.Rows[0].Cells))
	for i, c := range tbl.Rows[0].Cells {
		headers[i] = c.Text.Lines[0].Content
	}
	if !reflect.DeepEqual(headers, []string{"Item Code", "Size", "Packing"}) {
		t.Fatalf("hidden keys should not become columns: %q", headers)
	}
	if !near(sumOf(tbl.ColumnWidths), DefaultConfig().ContentWidth()) {
		t.Fatalf("column widths should fill the content width: %v", tbl.ColumnWidths)
	}
	second := res.Pages[0].Tables[1]
	if second.Y <= tbl.Y+tbl.Rows[0].Height+tbl.Rows[1].Height {
		t.Fatalf("second table overlaps the first")
	}
}

func TestBuildTablePairNeedsSameSubcategory(t *testing.T) {
	a := tableRecord("HK1", "G1", "TABLE2", "1.5")
	b := tableRecord("HK2", "G2", "TABLE2", "2")
	b.Subcategory = "Torx Keys"
	res := buildWith(t, []catalog.Record{a, b}, nil, nil)
	if len(res.Pages) != 2 || countWarnings(res, WarnPairDegraded) != 2 {
		t.Fatalf("pages=%d warnings=%v", len(res.Pages), warningCodes(res))
	}
}

func TestBuildTableContinuesWithHeader(t *testing.T) {
	var recs []catalog.Record
	for i := 0; i < 30; i++ {
		recs = append(recs, tableRecord(fmt.Sprintf("HK%02d", i), "G1", "TABLE", "3"))
	}
	res := buildWith(t, recs, nil, nil)
	if len(res.Pages) != 2 {
		t.Fatalf("expected table to continue on a second page, got %d pages", len(res.Pages))
	}
	body := 0
	for _, p := range res.Pages {
		if len(p.Tables) != 1 {
			t.Fatalf("page %d: %d tables", p.Number, len(p.Tables))
		}
		rows := p.Tables[0].Rows
		if !rows[0].IsHeader {
			t.Fatalf("page %d should start with the header row", p.Number)
		}
		for _, r := range rows[1:] {
			if r.IsHeader {
				t.Fatalf("header repeated inside body")
			}
			if r.Y+r.Height > p.Height-p.Margin.Bottom+1e-6 {
				t.Fatalf("row overflows page %d: %+v", p.Number, r.Y+r.Height)
			}
			body++
		}
	}
	if body != 30 {
		t.Fatalf("expected 30 body rows, got %d", body)
	}
	// 续页的表格从内容区顶部开始，不再重复标题与横幅
	if cont := res.Pages[1].Tables[0]; !near(cont.Y, DefaultConfig().ContentTop()) || len(res.Pages[1].Images) != 0 {
		t.Fatalf("continuation table y = %g", cont.Y)
	}
	if !reflect.DeepEqual(res.Sections[0].Pages, []int{1, 2}) {
		t.Fatalf("section pages = %v", res.Sections[0].Pages)
	}
}

func TestBuildTableDegenerateColumns(t *testing.T) {
	profile := DefaultProfile()
	profile.Config.Columns.MaxColumns = 0
	rec := record("Wide", "W1", "G", "Tools", "Wide", catalog.FormatTable)
	for i := 0; i < 14; i++ {
		rec.Fields = append(rec.Fields, field(fmt.Sprintf("Col %d", i), "v"))
	}
	res := buildWith(t, []catalog.Record{rec}, profile, nil)
	if countWarnings(res, WarnColumnsDegenerate) != 1 {
		t.Fatalf("expected degenerate warning: %v", warningCodes(res))
	}
	widths := res.Pages[0].Tables[0].ColumnWidths
	if len(widths) != 15 || !near(widths[0], widths[14]) {
		t.Fatalf("degenerate widths should be equal: %v", widths)
	}
}

func TestSpecRowsOrder(t *testing.T) {
	c := &composer{cfg: DefaultConfig()}
	fields := []catalog.Field{
		field("Price", "RM 10"),
		field("Packing", "12 pcs"),
		field("Item Code", "ignored"),
		field("Material", "CrV"),
		field("Weight", "1kg"),
		field("Finish", " "),
	}
	keys := func(code string) []string {
		var out []string
		for _, r := range c.specRows(record("X", code, "", "T", "S", catalog.FormatTwoPerPage, fields...), 0) {
			out = append(out, r.key)
		}
		return out
	}
	if got := keys("DL1"); !reflect.DeepEqual(got, []string{"Item Code", "Material", "Weight", "Packing", "Price"}) {
		t.Fatalf("rows = %q", got)
	}
	if got := keys("DL3565"); !reflect.DeepEqual(got, []string{"Item Code", "Material", "Packing", "Price"}) {
		t.Fatalf("excluded SKU should hide weight: %q", got)
	}
	if rows := c.specRows(record("X", "", "", "T", "S", catalog.FormatTwoPerPage), 0); len(rows) != 1 || rows[0].key != "—" {
		t.Fatalf("empty record should yield a dash row: %+v", rows)
	}
	if rows := c.specRows(record("X", "DL1", "", "T", "S", catalog.FormatTwoPerPage, fields...), 2); len(rows) != 2 {
		t.Fatalf("limit ignored: %d", len(rows))
	}
}

func TestBuildClipsLongSpecCard(t *testing.T) {
	desc := catalog.Field{Key: "Description", Value: strings.Repeat("long description text ", 100), Kind: catalog.MultiLine}
	rec := record("Chisel", "C1", "", "Tools", "Chisels", catalog.FormatFourPerPage, desc, field("Packing", "6 pcs"))
	res := buildWith(t, []catalog.Record{rec}, nil, nil)
	if countWarnings(res, WarnSpecRowsClipped) != 1 {
		t.Fatalf("expected clipped warning: %v", warningCodes(res))
	}
	plan := res.Sections[0].Plan
	top := DefaultConfig().ContentTop() + DefaultConfig().Headline
	for _, tb := range res.Pages[0].Texts {
		if tb.Y+tb.Height > top+plan.Row+1e-6 && tb.Y >= top {
			t.Fatalf("spec text escapes its row: %+v", tb.Y+tb.Height)
		}
	}
}

func TestBuildFooterTemplate(t *testing.T) {
	profile := DefaultProfile()
	profile.Config.Footer.Template = `${Brand|"Fallback"} Catalogue`
	recs := []catalog.Record{record("Pliers", "DL1", "", "Tools", "Pliers", catalog.FormatTwoPerPage)}
	res := buildWith(t, recs, profile, nil)
	if got := res.Pages[0].Footer.Left; got != "Fallback Catalogue" {
		t.Fatalf("footer left = %q", got)
	}
	recs[0].Attrs["brand"] = "Stanley"
	res = buildWith(t, recs, profile, nil)
	if got := res.Pages[0].Footer.Left; got != "Stanley Catalogue" {
		t.Fatalf("footer left = %q", got)
	}
	if !near(res.Footer.Baseline, 297-3.3) || !near(res.Footer.Rule.Y1, 297-9) {
		t.Fatalf("footer geometry = %+v", res.Footer)
	}
}

func TestWritePlan(t *testing.T) {
	recs := []catalog.Record{record("Pliers", "DL1", "", "Tools", "Pliers", catalog.FormatTwoPerPage)}
	res := buildWith(t, recs, nil, nil)
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "plan.yaml")
	if err := WritePlan(res, yamlPath); err != nil {
		t.Fatalf("WritePlan yaml: %v", err)
	}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "pages: 1") {
		t.Fatalf("yaml summary missing page count:\n%s", data)
	}

	jsonPath := filepath.Join(dir, "plan.json")
	if err := WritePlan(res, jsonPath); err != nil {
		t.Fatalf("WritePlan json: %v", err)
	}
	data, err = os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"kind": "content"`) {
		t.Fatalf("json plan missing page kind")
	}
}

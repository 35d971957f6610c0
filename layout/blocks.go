package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/folio/catalog"
)

const unknownProduct = "UNKNOWN PRODUCT"

// composer 持有一次排版的全部状态。页面按顺序追加，c.page 始终指向最后一页。
type composer struct {
	cfg      Config
	res      ResourceSet
	measurer Measurer
	images   ImageResolver

	pages    []*Page
	page     *Page
	sections []SectionInfo
	warnings []Warning

	footerLeft string
}

func (c *composer) widthFunc(st TextStyle) WidthFunc {
	font := c.res.Font(st.Font)
	return func(s string) float64 { return c.measurer.MeasureText(s, font, st.Size) }
}

func (c *composer) warn(code, format string, args ...any) {
	page := 0
	if c.page != nil {
		page = c.page.Number
	}
	c.warnings = append(c.warnings, Warning{Page: page, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (c *composer) resolve(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || c.images == nil {
		return "", false
	}
	return c.images.Resolve(ref)
}

func (c *composer) newPage(kind PageKind, section string) *Page {
	p := &Page{
		Number:  len(c.pages) + 1,
		Kind:    kind,
		Section: section,
		Width:   c.cfg.PageWidth,
		Height:  c.cfg.PageHeight,
		Margin:  c.cfg.Margin,
	}
	c.pages = append(c.pages, p)
	c.page = p
	return p
}

// contentPage 开启一页内容页：绘制子类标题并附上页脚上下文。
func (c *composer) contentPage(sec Section) *Page {
	p := c.newPage(PageContent, sectionLabel(sec))
	p.Footer = &FooterContext{
		Left:   c.footerLeft,
		Center: catalog.Upper(sec.Subcategory),
		Right:  fmt.Sprint(p.Number),
	}
	c.subcategoryHeader(sec.Subcategory)
	return p
}

// cover 添加整页封面。图片无法解析时只记警告，不占页。
func (c *composer) cover(ref, label string) {
	path, ok := c.resolve(ref)
	if !ok {
		c.warn(WarnCoverMissing, "封面 %s 无法解析: %s", label, ref)
		return
	}
	p := c.newPage(PageCover, label)
	p.Images = append(p.Images, ImageBox{
		Ref: ref, Path: path,
		Width: c.cfg.PageWidth, Height: c.cfg.PageHeight,
		Fit: "fill",
	})
}

func (c *composer) textBox(st TextStyle, x, y, w, h float64, lines []string) TextBox {
	wf := c.widthFunc(st)
	out := make([]TextLine, len(lines))
	for i, l := range lines {
		out[i] = TextLine{Content: l, Width: ptToMM(wf(l))}
	}
	leading := st.Leading
	if leading <= 0 {
		leading = st.Size * 1.2
	}
	return TextBox{
		X: x, Y: y, Width: w, Height: h,
		LineHeight: ptToMM(leading),
		Font:       st.Font,
		FontSize:   ptToMM(st.Size),
		Color:      st.Color,
		Lines:      out,
		VAlign:     VAlignTop,
	}
}

// subcategoryHeader 在页眉带中绘制大写子类名。字号按 0.5pt 递减，
// 最多缩小到 HeaderMinScale；框高保持不变，下方内容不会移动。
func (c *composer) subcategoryHeader(sub string) {
	text := catalog.Upper(catalog.CleanText(sub))
	if text == "" {
		return
	}
	st := c.cfg.Styles.Subcategory
	maxW := mmToPT(c.cfg.ContentWidth())
	minSize := st.Size * c.cfg.Styles.HeaderMinScale
	step := c.cfg.Styles.HeaderShrinkStep
	if step <= 0 {
		step = 0.5
	}
	for st.Size > minSize && c.widthFunc(st)(text) > maxW {
		st.Size -= step
	}
	text = TruncateLine(text, maxW, c.widthFunc(st))
	tb := c.textBox(st, c.cfg.Margin.Left, c.cfg.Margin.Top, c.cfg.ContentWidth(), c.cfg.HeaderBand, []string{text})
	c.page.Texts = append(c.page.Texts, tb)
}

// headline 绘制条目标题（去括号、大写）及其右侧的尾线，返回占用高度。
func (c *composer) headline(name string, x, y, w float64) float64 {
	st := c.cfg.Styles.ItemName
	text := catalog.HeadlineText(name)
	if text == "" {
		text = unknownProduct
	}
	wf := c.widthFunc(st)
	line := TruncateLine(text, mmToPT(w-c.cfg.HeadlineGap), wf)
	h := ptToMM(st.Size + 2)
	tb := c.textBox(st, x, y, w, h, []string{line})
	tb.LineHeight = h
	tb.VAlign = VAlignMiddle
	c.page.Texts = append(c.page.Texts, tb)

	start := x + ptToMM(wf(line)) + c.cfg.HeadlineGap
	if end := x + w; end > start {
		ruleY := y + h/2
		c.page.Lines = append(c.page.Lines, Line{X1: start, Y1: ruleY, X2: end, Y2: ruleY, Color: black, Width: ptToMM(1)})
	}
	return h
}

// imageSlot 保留 w×h 的图片槽位。placeholder 为 true 时缺图显示 “No Image”。
func (c *composer) imageSlot(ref string, x, y, w, h float64, placeholder bool) {
	path, ok := c.resolve(ref)
	if strings.TrimSpace(ref) != "" && !ok {
		c.warn(WarnImageMissing, "图片无法解析: %s", ref)
	}
	c.page.Images = append(c.page.Images, ImageBox{Ref: ref, Path: path, X: x, Y: y, Width: w, Height: h, Fit: "contain"})
	if ok || !placeholder {
		return
	}
	st := c.cfg.Styles.Placeholder
	tb := c.textBox(st, x, y, w, h, []string{"No Image"})
	tb.Align = "center"
	tb.VAlign = VAlignMiddle
	c.page.Texts = append(c.page.Texts, tb)
	c.page.Rects = append(c.page.Rects, Rect{X: x, Y: y, Width: w, Height: h, StrokeColor: st.Color, StrokeWidth: ptToMM(0.5)})
}

// icon 返回图标资源的本地路径。
func (c *composer) icon(id string) string {
	if id == "" {
		return ""
	}
	img, ok := c.res.Images[strings.ToLower(id)]
	if !ok {
		return ""
	}
	path, ok := c.resolve(img.Src)
	if !ok {
		return ""
	}
	return path
}

type specRow struct {
	key   string
	value string
	style TextStyle
	kind  catalog.FieldKind
	icon  string
	code  bool
}

// specRows 生成规格卡的行：Item Code 在最前，其余字段保持原序，
// Packing 与 Price 排在最后；超过 limit 的行被丢弃。
func (c *composer) specRows(rec catalog.Record, limit int) []specRow {
	st := c.cfg.Styles
	var rows, others, packing, price []specRow
	if code := strings.TrimSpace(rec.Code); code != "" {
		rows = append(rows, specRow{key: "Item Code", value: code, style: st.DetailCode, code: true})
	}
	skipHidden := c.cfg.excluded(rec.Code)
	for _, f := range rec.VisibleFields() {
		low := strings.ToLower(strings.TrimSpace(f.Key))
		if low == "item code" || (skipHidden && c.cfg.hidden(f.Key)) {
			continue
		}
		r := specRow{key: f.Key, value: f.Value, style: st.DetailValue, kind: f.Kind, icon: f.Icon}
		if f.Style == catalog.StyleBold {
			r.style = st.DetailBold
		}
		switch low {
		case "packing":
			packing = append(packing, r)
		case "price":
			price = append(price, r)
		default:
			others = append(others, r)
		}
	}
	rows = append(rows, others...)
	rows = append(rows, packing...)
	rows = append(rows, price...)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	if len(rows) == 0 {
		rows = []specRow{{key: "—", value: "—", style: st.DetailValue}}
	}
	return rows
}

// specCard 在 (x, y) 处绘制键值两列的规格卡，高度不超过 maxH（mm）。
// 放不下的行整行丢弃并记录警告。
func (c *composer) specCard(rec catalog.Record, x, y, w, maxH float64, limit int) {
	sp := c.cfg.Spec
	keyW := w * sp.KeyRatio
	valW := w - keyW
	keyWpt, valWpt := mmToPT(keyW), mmToPT(valW)
	keySt := c.cfg.Styles.DetailKey
	keyWF := c.widthFunc(keySt)

	rows := c.specRows(rec, limit)
	var bottoms []float64
	cy := y
	for i, r := range rows {
		kLines := EstimateLines(r.key, keyWpt, sp.KeyPadX, keySt.Size, sp.KeyLines)
		keyText := FitText(r.key, keyWpt-2*sp.KeyPadX, kLines, keyWF)
		keyH := float64(kLines) * keySt.Leading * sp.LeadingFactor

		valWF := c.widthFunc(r.style)
		iconPath := c.icon(r.icon)
		indent := 0.0
		if iconPath != "" {
			indent = c.cfg.IconSize + 2
		}
		textW := valWpt - 2*sp.ValuePadX - indent
		var valText []string
		var valH float64
		if r.kind == catalog.MultiLine {
			valText = WrapText(r.value, textW, valWF)
			valH = float64(len(valText))*r.style.Leading*sp.WrapFactor + 2*sp.ValuePadY
		} else {
			maxLines := sp.ValueLines
			if r.code {
				maxLines = 1
			}
			n := EstimateLines(r.value, valWpt, sp.ValuePadX, r.style.Size, maxLines)
			valText = FitText(r.value, textW, n, valWF)
			valH = float64(n)*r.style.Leading*sp.LeadingFactor + 3.5*sp.ValuePadY
		}

		rowH := ptToMM(max(keyH, valH))
		if cy+rowH > y+maxH+1e-6 {
			c.warn(WarnSpecRowsClipped, "%s: %d 行规格放不下，已省略", rec.Code, len(rows)-i)
			break
		}

		kb := c.textBox(keySt, x+ptToMM(sp.KeyPadX), cy, keyW-ptToMM(2*sp.KeyPadX), rowH, keyText)
		kb.LineHeight = ptToMM(keySt.Leading * sp.WrapFactor)
		kb.VAlign = VAlignMiddle
		vb := c.textBox(r.style, x+keyW+ptToMM(sp.ValuePadX), cy, valW-ptToMM(2*sp.ValuePadX), rowH, valText)
		vb.LineHeight = ptToMM(r.style.Leading * sp.WrapFactor)
		vb.VAlign = VAlignMiddle
		if iconPath != "" {
			vb.Icon = iconPath
			vb.IconSize = ptToMM(c.cfg.IconSize)
			vb.Indent = ptToMM(indent)
		}
		c.page.Texts = append(c.page.Texts, kb, vb)
		cy += rowH
		bottoms = append(bottoms, cy)
	}
	for i := 0; i+1 < len(bottoms); i++ {
		c.page.Lines = append(c.page.Lines, Line{
			X1: x, Y1: bottoms[i], X2: x + w, Y2: bottoms[i],
			Color: sp.RuleColor, Width: ptToMM(sp.RuleWidth),
		})
	}
}

// itemBlock 绘制 2/3/4 版式中的一个条目：标题行、图片与规格卡。
func (c *composer) itemBlock(rec catalog.Record, p FormatParams, plan HeightPlan, y float64) {
	x0 := c.cfg.Margin.Left
	contentW := c.cfg.ContentWidth()
	c.headline(rec.Name, x0, y, contentW)
	rowY := y + c.cfg.Headline
	c.imageSlot(rec.Image, x0+p.LeftPad, rowY, p.ImageWidth, plan.Row*p.ImageCap, true)
	specX := x0 + p.LeftPad + p.ImageWidth + p.Gutter
	c.specCard(rec, specX, rowY, contentW-(p.LeftPad+p.ImageWidth+p.Gutter), plan.Row, p.DetailRows)
}

// singleBlock 绘制 1WP 版式：标题、居中的图表、下方左图右规格卡。
func (c *composer) singleBlock(rec catalog.Record, p FormatParams, plan HeightPlan) {
	sg := c.cfg.Single
	x0 := c.cfg.Margin.Left
	contentW := c.cfg.ContentWidth()
	y := c.cfg.ContentTop()
	y += c.headline(rec.Name, x0, y, contentW)
	y += sg.NameGap

	graphW := contentW * sg.GraphWidth
	graphH := plan.Row * sg.GraphHeight
	c.imageSlot(rec.GraphImage, x0+(contentW-graphW)/2, y, graphW, graphH, false)
	y += graphH + sg.GraphGap

	c.imageSlot(rec.Image, x0+p.LeftPad, y+ptToMM(sg.ImageOffset), p.ImageWidth, plan.Row*p.ImageCap, true)
	specX := x0 + p.LeftPad + p.ImageWidth + p.Gutter
	c.specCard(rec, specX, y, contentW-(p.LeftPad+p.ImageWidth+p.Gutter), c.cfg.ContentBottom()-y, p.DetailRows)
}

func sectionLabel(sec Section) string {
	parts := []string{sec.Category, sec.Subcategory}
	if sec.Group != "" {
		parts = append(parts, sec.Group)
	}
	return strings.Join(parts, " / ")
}

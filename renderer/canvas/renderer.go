package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"golang.org/x/image/draw"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/images"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

const defaultStrokeWidth = 0.2

// Renderer draws layout plans via github.com/tdewolff/canvas.
// 它同时实现 layout.Measurer：排版与出图共用同一套字体度量。
type Renderer struct {
	baseDir string

	// injected resources
	fontBlobs map[string][]byte // by builtin name

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily

	imageMu sync.Mutex
	decoded map[string]image.Image // 解码失败记为 nil
}

var (
	_ renderer.Renderer  = (*Renderer)(nil)
	_ renderer.Measuring = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // 通过 builtin:<name> 引用，优先于内置 Go 字体
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
		decoded:      map[string]image.Image{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 读取失败时按未注入处理，使用时回退
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// MeasureText 实现 layout.Measurer，返回文本宽度（pt）。
// 字体完全无法加载时按 字符数×字号×0.6 估算。
func (r *Renderer) MeasureText(s string, font layout.FontResource, sizePt float64) float64 {
	if s == "" {
		return 0
	}
	face, err := r.fontFace(font, sizePt, layout.Color{})
	if err != nil {
		return float64(utf8.RuneCountInString(s)) * sizePt * 0.6
	}
	return toPt(face.TextWidth(s))
}

// Render renders the plan into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page, result); err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", page.Number, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, result *layout.Result) error {
	// 图片先画，占位框与分隔线叠在其上，文字最后
	r.drawImages(ctx, page.Images)
	r.drawRects(ctx, page.Rects)
	r.drawLines(ctx, page.Lines)
	for _, tb := range page.Texts {
		if err := r.drawTextBox(ctx, tb, result.Resources); err != nil {
			return err
		}
	}
	if err := r.drawTables(ctx, page.Tables, result.Resources); err != nil {
		return err
	}
	if page.Footer != nil {
		return r.drawFooter(ctx, *page.Footer, result.Footer, result.Resources)
	}
	return nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, resources layout.ResourceSet) error {
	if len(tb.Lines) == 0 {
		return nil
	}
	// TextBox 的坐标/字号/行高均为 mm；创建字体面需要 pt，这里做一次 mm→pt。
	face, err := r.fontFace(resources.Font(tb.Font), toPt(tb.FontSize), tb.Color)
	if err != nil {
		return err
	}
	lineHeight := tb.LineHeight
	if lineHeight <= 0 {
		lineHeight = tb.FontSize * 1.2
	}
	top := tb.Y
	blockHeight := lineHeight * float64(len(tb.Lines))
	switch tb.VAlign {
	case layout.VAlignMiddle:
		top += (tb.Height - blockHeight) / 2
	case layout.VAlignBottom:
		top += tb.Height - blockHeight
	}

	if tb.Icon != "" && tb.IconSize > 0 {
		r.drawImage(ctx, layout.ImageBox{
			Path: tb.Icon, X: tb.X, Y: top + (lineHeight-tb.IconSize)/2,
			Width: tb.IconSize, Height: tb.IconSize, Fit: "contain",
		})
	}

	// 处理水平对齐：left（默认）/center/right。
	x := tb.X + tb.Indent
	width := tb.Width - tb.Indent
	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = x + width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = x + width
	default:
		textAlign = canvas.Left
		anchorX = x
	}

	metrics := face.Metrics()
	for i, line := range tb.Lines {
		if line.Content == "" {
			continue
		}
		// 基线：行内垂直居中字形高度
		lineTop := top + float64(i)*lineHeight
		baseline := lineTop + (lineHeight-(metrics.Ascent+metrics.Descent))/2 + metrics.Ascent
		ctx.DrawText(anchorX, baseline, canvas.NewTextLine(face, line.Content, textAlign))
	}
	return nil
}

func (r *Renderer) drawImages(ctx *canvas.Context, boxes []layout.ImageBox) {
	for _, box := range boxes {
		if box.Missing() {
			continue
		}
		r.drawImage(ctx, box)
	}
}

// drawImage 按 Fit 绘制图片；文件无法解码时画灰色叉框代替，不中断整份目录。
func (r *Renderer) drawImage(ctx *canvas.Context, box layout.ImageBox) {
	img := r.loadImage(box.Path)
	if img == nil {
		r.drawBroken(ctx, box)
		return
	}
	placed, ok := placeImage(img, box)
	if !ok {
		return
	}
	ctx.DrawImage(placed.X, placed.Y, placed.Image, canvas.DPMM(placed.DPMM))
}

func (r *Renderer) drawBroken(ctx *canvas.Context, box layout.ImageBox) {
	grey := layout.Color{R: 0x99, G: 0x99, B: 0x99}
	r.drawRects(ctx, []layout.Rect{{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height, StrokeColor: grey}})
	r.drawLines(ctx, []layout.Line{
		{X1: box.X, Y1: box.Y, X2: box.X + box.Width, Y2: box.Y + box.Height, Color: grey},
		{X1: box.X + box.Width, Y1: box.Y, X2: box.X, Y2: box.Y + box.Height, Color: grey},
	})
}

// placement 是图片在页面上的最终位置与分辨率。
type placement struct {
	X, Y  float64
	DPMM  float64
	Image image.Image
}

// placeImage 计算图片的放置方式。contain 等比缩放（允许放大）、水平居中、顶部对齐；
// fill 拉伸铺满整个框，纵向先重采样到与横向相同的分辨率。
func placeImage(img image.Image, box layout.ImageBox) (placement, bool) {
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw <= 0 || ih <= 0 || box.Width <= 0 || box.Height <= 0 {
		return placement{}, false
	}
	if box.Fit == "fill" {
		dpmm := iw / box.Width
		th := int(math.Round(box.Height * dpmm))
		out := img
		if th > 0 && th != b.Dy() {
			dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), th))
			draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
			out = dst
		}
		return placement{X: box.X, Y: box.Y, DPMM: dpmm, Image: out}, true
	}
	scale := math.Min(box.Width/iw, box.Height/ih) // mm/px
	w := iw * scale
	return placement{X: box.X + (box.Width-w)/2, Y: box.Y, DPMM: 1 / scale, Image: img}, true
}

func (r *Renderer) loadImage(path string) image.Image {
	if path == "" {
		return nil
	}
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}
	r.imageMu.Lock()
	defer r.imageMu.Unlock()
	if img, ok := r.decoded[path]; ok {
		return img
	}
	img, _ := images.Decode(path)
	r.decoded[path] = img
	return img
}

func (r *Renderer) drawTables(ctx *canvas.Context, tables []layout.TableBox, resources layout.ResourceSet) error {
	for _, table := range tables {
		if len(table.ColumnWidths) == 0 {
			continue
		}
		for _, row := range table.Rows {
			if row.IsHeader && table.HeaderFill != nil {
				r.drawRects(ctx, []layout.Rect{{
					X: table.X, Y: row.Y, Width: table.Width, Height: row.Height,
					FillColor: table.HeaderFill,
				}})
			}
			for _, cell := range row.Cells {
				if err := r.drawTextBox(ctx, cell.Text, resources); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// drawFooter 绘制页脚横线以及左、中、右三段文字，基线位置由 FooterStyle 给出。
func (r *Renderer) drawFooter(ctx *canvas.Context, fc layout.FooterContext, st layout.FooterStyle, resources layout.ResourceSet) error {
	if st.Rule.X2 > st.Rule.X1 {
		r.drawLines(ctx, []layout.Line{st.Rule})
	}
	face, err := r.fontFace(resources.Font(st.Font), toPt(st.FontSize), st.Color)
	if err != nil {
		return err
	}
	for _, part := range []struct {
		text  string
		x     float64
		align canvas.TextAlign
	}{
		{fc.Left, st.LeftX, canvas.Left},
		{fc.Center, st.CenterX, canvas.Center},
		{fc.Right, st.RightX, canvas.Right},
	} {
		if part.text == "" {
			continue
		}
		ctx.DrawText(part.x, st.Baseline, canvas.NewTextLine(face, part.text, part.align))
	}
	return nil
}

// drawLines 绘制直线列表（毫米单位）
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := ln.Width
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetFillColor(color.RGBA{})
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(w)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
		ctx.DrawPath(ln.X1, ln.Y1, p)
	}
}

// drawRects 绘制矩形；StrokeWidth 为 0 且有填充色时只填充。
func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		if rc.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*rc.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{})
		}
		w := rc.StrokeWidth
		switch {
		case w > 0:
			ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		case rc.FillColor == nil:
			w = defaultStrokeWidth
			ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		default:
			ctx.SetStrokeColor(color.RGBA{})
		}
		ctx.SetStrokeWidth(w)
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
	}
}

func (r *Renderer) fontFace(font layout.FontResource, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = layout.FontBook
	}
	family := canvas.NewFontFamily(familyName)

	err := r.loadFontIntoFamily(family, font.Src, style)
	if err != nil && font.Fallback != "" {
		err = r.loadFontIntoFamily(family, font.Fallback, style)
	}
	if err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, src string, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(src)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体缺少 src")
	}
	if fonts.IsBuiltin(src) {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "builtin:"), "embed:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return fonts.Load(name)
	}
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load(fonts.Regular)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("folio-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	var result canvas.FontStyle
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	default:
		result = canvas.FontRegular
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s|%s", font.Name, font.Src, font.Style, font.Fallback)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

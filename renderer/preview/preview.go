// Package preview 把排版计划栅格化为 PNG，用于快速检查版面，不追求印刷精度。
package preview

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/images"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

// DefaultScale 是每毫米的像素数，A4 约为 630×891 像素。
const DefaultScale = 3.0

const sheetColumns = 4

var _ renderer.Renderer = (*Renderer)(nil)

// Renderer 使用 fogleman/gg 绘制页面，字体通过 golang/freetype 解析。
type Renderer struct {
	baseDir string
	scale   float64

	mu     sync.Mutex
	fonts  map[string]*truetype.Font // by src
	faces  map[faceKey]font.Face
	images map[string]image.Image
}

type faceKey struct {
	src  string
	size float64
}

// NewRenderer 创建预览渲染器；scale<=0 时使用 DefaultScale。
func NewRenderer(baseDir string, scale float64) *Renderer {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Renderer{
		baseDir: baseDir,
		scale:   scale,
		fonts:   map[string]*truetype.Font{},
		faces:   map[faceKey]font.Face{},
		images:  map[string]image.Image{},
	}
}

// Render 把所有页面缩排成一张总览图（每行 4 页），返回 PNG 数据。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil || len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	pages := make([]image.Image, len(result.Pages))
	for i, p := range result.Pages {
		img, err := r.RenderPage(result, p)
		if err != nil {
			return nil, err
		}
		pages[i] = img
	}
	const gap = 8
	cols := min(sheetColumns, len(pages))
	rows := (len(pages) + cols - 1) / cols
	cellW, cellH := pages[0].Bounds().Dx(), pages[0].Bounds().Dy()
	dc := gg.NewContext(cols*(cellW+gap)+gap, rows*(cellH+gap)+gap)
	dc.SetRGB(0.8, 0.8, 0.8)
	dc.Clear()
	for i, img := range pages {
		x := gap + (i%cols)*(cellW+gap)
		y := gap + (i/cols)*(cellH+gap)
		dc.DrawImage(img, x, y)
	}
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("编码预览图失败: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePages 把每页写成 dir/page-NNN.png，返回写出的文件路径。
func (r *Renderer) WritePages(result *layout.Result, dir string) ([]string, error) {
	if result == nil {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建预览目录失败: %w", err)
	}
	var out []string
	for _, p := range result.Pages {
		img, err := r.RenderPage(result, p)
		if err != nil {
			return out, err
		}
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.png", p.Number))
		if err := gg.SavePNG(path, img); err != nil {
			return out, fmt.Errorf("写入预览 %s 失败: %w", path, err)
		}
		out = append(out, path)
	}
	return out, nil
}

// RenderPage 栅格化单页。
func (r *Renderer) RenderPage(result *layout.Result, page layout.Page) (image.Image, error) {
	s := r.scale
	dc := gg.NewContext(int(page.Width*s+0.5), int(page.Height*s+0.5))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, box := range page.Images {
		if !box.Missing() {
			r.drawImage(dc, box)
		}
	}
	for _, rc := range page.Rects {
		r.drawRect(dc, rc)
	}
	for _, ln := range page.Lines {
		r.drawLine(dc, ln)
	}
	for _, tb := range page.Texts {
		if err := r.drawText(dc, tb, result.Resources); err != nil {
			return nil, err
		}
	}
	for _, table := range page.Tables {
		for _, row := range table.Rows {
			if row.IsHeader && table.HeaderFill != nil {
				r.drawRect(dc, layout.Rect{X: table.X, Y: row.Y, Width: table.Width, Height: row.Height, FillColor: table.HeaderFill})
			}
			for _, cell := range row.Cells {
				if err := r.drawText(dc, cell.Text, result.Resources); err != nil {
					return nil, err
				}
			}
		}
	}
	if page.Footer != nil {
		if err := r.drawFooter(dc, *page.Footer, result.Footer, result.Resources); err != nil {
			return nil, err
		}
	}
	return dc.Image(), nil
}

func (r *Renderer) drawText(dc *gg.Context, tb layout.TextBox, resources layout.ResourceSet) error {
	if len(tb.Lines) == 0 {
		return nil
	}
	s := r.scale
	face, err := r.face(resources.Font(tb.Font), tb.FontSize*s)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	setColor(dc, tb.Color)

	lineHeight := tb.LineHeight
	if lineHeight <= 0 {
		lineHeight = tb.FontSize * 1.2
	}
	top := tb.Y
	switch block := lineHeight * float64(len(tb.Lines)); tb.VAlign {
	case layout.VAlignMiddle:
		top += (tb.Height - block) / 2
	case layout.VAlignBottom:
		top += tb.Height - block
	}
	if tb.Icon != "" && tb.IconSize > 0 {
		r.drawImage(dc, layout.ImageBox{Path: tb.Icon, X: tb.X, Y: top + (lineHeight-tb.IconSize)/2, Width: tb.IconSize, Height: tb.IconSize})
		setColor(dc, tb.Color)
	}

	m := face.Metrics()
	ascent, descent := float64(m.Ascent)/64, float64(m.Descent)/64
	x, width := tb.X+tb.Indent, tb.Width-tb.Indent
	ax := 0.0
	switch strings.ToLower(tb.Align) {
	case "center":
		x, ax = x+width/2, 0.5
	case "right", "end":
		x, ax = x+width, 1
	}
	for i, line := range tb.Lines {
		lineTop := (top + float64(i)*lineHeight) * s
		baseline := lineTop + (lineHeight*s-(ascent+descent))/2 + ascent
		dc.DrawStringAnchored(line.Content, x*s, baseline, ax, 0)
	}
	return nil
}

func (r *Renderer) drawFooter(dc *gg.Context, fc layout.FooterContext, st layout.FooterStyle, resources layout.ResourceSet) error {
	r.drawLine(dc, st.Rule)
	face, err := r.face(resources.Font(st.Font), st.FontSize*r.scale)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	setColor(dc, st.Color)
	y := st.Baseline * r.scale
	dc.DrawStringAnchored(fc.Left, st.LeftX*r.scale, y, 0, 0)
	dc.DrawStringAnchored(fc.Center, st.CenterX*r.scale, y, 0.5, 0)
	dc.DrawStringAnchored(fc.Right, st.RightX*r.scale, y, 1, 0)
	return nil
}

// drawImage 按槽位缩放绘制；解码失败时画灰色叉框。
func (r *Renderer) drawImage(dc *gg.Context, box layout.ImageBox) {
	s := r.scale
	img := r.loadImage(box.Path)
	if img == nil {
		dc.SetRGB(0.6, 0.6, 0.6)
		dc.SetLineWidth(1)
		dc.DrawRectangle(box.X*s, box.Y*s, box.Width*s, box.Height*s)
		dc.DrawLine(box.X*s, box.Y*s, (box.X+box.Width)*s, (box.Y+box.Height)*s)
		dc.DrawLine((box.X+box.Width)*s, box.Y*s, box.X*s, (box.Y+box.Height)*s)
		dc.Stroke()
		return
	}
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw <= 0 || ih <= 0 {
		return
	}
	x, y := box.X, box.Y
	sx, sy := box.Width/iw, box.Height/ih
	if box.Fit != "fill" {
		k := min(sx, sy)
		x += (box.Width - iw*k) / 2
		sx, sy = k, k
	}
	dc.Push()
	dc.Translate(x*s, y*s)
	dc.Scale(sx*s, sy*s)
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

func (r *Renderer) drawRect(dc *gg.Context, rc layout.Rect) {
	s := r.scale
	dc.DrawRectangle(rc.X*s, rc.Y*s, rc.Width*s, rc.Height*s)
	if rc.FillColor != nil {
		setColor(dc, *rc.FillColor)
		if rc.StrokeWidth > 0 {
			dc.FillPreserve()
		} else {
			dc.Fill()
			return
		}
	}
	setColor(dc, rc.StrokeColor)
	dc.SetLineWidth(max(1, rc.StrokeWidth*s))
	dc.Stroke()
}

func (r *Renderer) drawLine(dc *gg.Context, ln layout.Line) {
	s := r.scale
	setColor(dc, ln.Color)
	dc.SetLineWidth(max(1, ln.Width*s))
	dc.DrawLine(ln.X1*s, ln.Y1*s, ln.X2*s, ln.Y2*s)
	dc.Stroke()
}

// face 返回像素字号为 px 的字体面。字体按 src、fallback、内置 regular 的顺序尝试。
func (r *Renderer) face(res layout.FontResource, px float64) (font.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := faceKey{src: res.Src + "|" + res.Fallback, size: px}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	var (
		ttf *truetype.Font
		err error
	)
	for _, src := range []string{res.Src, res.Fallback, "builtin:" + fonts.Regular} {
		if src == "" {
			continue
		}
		if ttf, err = r.parseFont(src); err == nil {
			break
		}
	}
	if ttf == nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", res.Name, err)
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: px, DPI: 72, Hinting: font.HintingNone})
	r.faces[key] = f
	return f, nil
}

func (r *Renderer) parseFont(src string) (*truetype.Font, error) {
	if f, ok := r.fonts[src]; ok {
		return f, nil
	}
	var (
		data []byte
		err  error
	)
	if fonts.IsBuiltin(src) {
		data, err = fonts.Load(src)
	} else {
		path := src
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.baseDir, path)
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	r.fonts[src] = f
	return f, nil
}

func (r *Renderer) loadImage(path string) image.Image {
	if path == "" {
		return nil
	}
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if img, ok := r.images[path]; ok {
		return img
	}
	img, _ := images.Decode(path)
	r.images[path] = img
	return img
}

func setColor(dc *gg.Context, c layout.Color) { dc.SetRGB255(c.R, c.G, c.B) }

package layout

// 该文件定义排版计划与资源描述，供布局计算、渲染与调试 JSON 共用。
// 所有坐标以页面左上角为原点，单位为毫米。

// Result 是一次排版的完整计划。
type Result struct {
	Pages     []Page        `json:"pages"`
	Resources ResourceSet   `json:"resources"`
	Meta      DocumentMeta  `json:"meta"`
	Footer    FooterStyle   `json:"footer"`
	Sections  []SectionInfo `json:"sections"`
	Warnings  []Warning     `json:"warnings,omitempty"`
}

// SectionInfo 汇总一个 Section 的排版结果，供调试输出与命令行摘要使用。
type SectionInfo struct {
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory"`
	Format      string      `json:"format"`
	Group       string      `json:"group,omitempty"`
	Records     int         `json:"records"`
	Pages       []int       `json:"pages"`
	Plan        *HeightPlan `json:"plan,omitempty"`
	Columns     []float64   `json:"columns,omitempty"` // pt
}

// ResourceSet 记录版式配置中声明的字体与图片资源。
type ResourceSet struct {
	Fonts  map[string]FontResource  `json:"fonts"`
	Images map[string]ImageResource `json:"images"`
}

// Font 按名称查找字体，找不到时退回 Book，再退回任意一个。
func (rs ResourceSet) Font(name string) FontResource {
	if f, ok := rs.Fonts[name]; ok {
		return f
	}
	if f, ok := rs.Fonts[FontBook]; ok {
		return f
	}
	for _, f := range rs.Fonts {
		return f
	}
	return FontResource{Name: name}
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Style    string `json:"style,omitempty"`
	Family   string `json:"family,omitempty"` // 渲染器使用的 Family 名称
	Fallback string `json:"fallback,omitempty"`
}

// ImageResource 记录图标等图片资源。
type ImageResource struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// PageKind 区分内容页与封面页。
type PageKind string

const (
	PageContent PageKind = "content"
	PageCover   PageKind = "cover"
)

// Page 记录页面尺寸与最终可以直接渲染的元素。
// Footer 为空表示该页不绘制页脚（封面）。
type Page struct {
	Number  int            `json:"number"`
	Kind    PageKind       `json:"kind"`
	Section string         `json:"section,omitempty"`
	Width   float64        `json:"width"`
	Height  float64        `json:"height"`
	Margin  Margin         `json:"margin"`
	Texts   []TextBox      `json:"texts"`
	Images  []ImageBox     `json:"images"`
	Tables  []TableBox     `json:"tables,omitempty"`
	Lines   []Line         `json:"lines,omitempty"`
	Rects   []Rect         `json:"rects,omitempty"`
	Footer  *FooterContext `json:"footer,omitempty"`
}

// FooterContext 是每页显式携带的页脚内容。
type FooterContext struct {
	Left   string `json:"left"`
	Center string `json:"center"`
	Right  string `json:"right"`
}

// FooterStyle 是所有页脚共用的几何与字体。
type FooterStyle struct {
	Font     string  `json:"font"`
	FontSize float64 `json:"fontSize"` // mm
	Color    Color   `json:"color"`
	Rule     Line    `json:"rule"`
	Baseline float64 `json:"baseline"`
	LeftX    float64 `json:"leftX"`
	CenterX  float64 `json:"centerX"`
	RightX   float64 `json:"rightX"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// VAlign 是文本在固定高度框中的垂直对齐方式。
type VAlign string

const (
	VAlignTop    VAlign = "top"
	VAlignMiddle VAlign = "middle"
	VAlignBottom VAlign = "bottom"
)

// TextBox 表示一个已经排好坐标的固定尺寸文本框。
// Lines 已经过宽度裁剪，渲染器只需逐行绘制。
type TextBox struct {
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	LineHeight float64    `json:"lineHeight"`
	Font       string     `json:"font"`
	FontSize   float64    `json:"fontSize"` // mm
	Color      Color      `json:"color"`
	Lines      []TextLine `json:"lines"`
	Align      string     `json:"align,omitempty"` // left/center/right（默认 left）
	VAlign     VAlign     `json:"valign,omitempty"`
	Icon       string     `json:"icon,omitempty"` // 图标本地路径，绘制在 X 处、首行左侧
	IconSize   float64    `json:"iconSize,omitempty"`
	Indent     float64    `json:"indent,omitempty"` // 文字相对 X 的缩进，为图标留位
}

// TextLine 表示排版后的一行文本内容及其宽度。
type TextLine struct {
	Content string  `json:"content"`
	Width   float64 `json:"width"`
}

// ImageBox 描述图片槽位。Path 为空表示图片缺失，槽位仍然保留。
// 渲染器按比例缩放图片放入 Width×Height，水平居中、顶部对齐。
type ImageBox struct {
	Ref    string  `json:"ref,omitempty"`
	Path   string  `json:"path,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Fit    string  `json:"fit"` // contain / fill
}

// Missing 表示该槽位只是占位框。
func (b ImageBox) Missing() bool { return b.Path == "" }

// TableBox 保存明细表的列宽与已排好的行。
type TableBox struct {
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Width        float64    `json:"width"`
	ColumnWidths []float64  `json:"columnWidths"`
	Rows         []TableRow `json:"rows"`
	HeaderFill   *Color     `json:"headerFill,omitempty"`
}

// TableRow 记录每一行的位置、高度与单元格。
type TableRow struct {
	Y        float64     `json:"y"`
	Height   float64     `json:"height"`
	IsHeader bool        `json:"isHeader"`
	Cells    []TableCell `json:"cells"`
}

// TableCell 复用 TextBox 作为单元格内容。
type TableCell struct {
	Text TextBox `json:"text"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
}

// Rect 表示一个矩形。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`         // mm，0 表示不描边
	FillColor   *Color  `json:"fillColor,omitempty"` // 为空表示不填充
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// Warning 是不影响出图的软性问题，例如列宽退化或图片缺失。
type Warning struct {
	Page    int    `json:"page"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// 警告代码。
const (
	WarnColumnsDegenerate = "columns-degenerate"
	WarnSpecRowsClipped   = "spec-rows-clipped"
	WarnImageMissing      = "image-missing"
	WarnPairDegraded      = "table-pair-degraded"
	WarnCoverMissing      = "cover-missing"
)

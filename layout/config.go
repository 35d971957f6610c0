package layout

import (
	"strings"

	"github.com/ByLCY/folio/catalog"
)

// 默认字体资源名：Black 用于标题与键名，Book 用于正文。
const (
	FontBlack = "Black"
	FontBook  = "Book"
)

// Profile 汇总一次生成所需的配置、资源与文档元信息。
type Profile struct {
	Config    Config
	Resources ResourceSet
	Meta      DocumentMeta
}

// TextStyle 描述一种文字角色，字号与行距单位为 pt。
type TextStyle struct {
	Font    string  `json:"font"`
	Size    float64 `json:"size"`
	Leading float64 `json:"leading"`
	Color   Color   `json:"color"`
}

// Styles 列出目录中用到的全部文字角色。
type Styles struct {
	Subcategory TextStyle
	ItemName    TextStyle
	DetailKey   TextStyle
	DetailValue TextStyle
	DetailBold  TextStyle
	DetailCode  TextStyle
	TableHeader TextStyle
	TableCell   TextStyle
	TableBold   TextStyle
	TableCode   TextStyle
	Footer      TextStyle
	Placeholder TextStyle

	HeaderMinScale   float64 // 子类标题最多缩小到原字号的比例
	HeaderShrinkStep float64 // pt
}

// FormatParams 是多条目与单条目版式的分页与几何参数（mm）。
type FormatParams struct {
	PerPage    int     `json:"perPage"`
	Gap        float64 `json:"gap"`
	Boost      float64 `json:"boost"`
	LeftPad    float64 `json:"leftPad"`
	Gutter     float64 `json:"gutter"`
	ImageWidth float64 `json:"imageWidth"`
	ImageCap   float64 `json:"imageCap"` // 图片高度占内容行高度的比例
	DetailRows int     `json:"detailRows"`
}

// ColumnCap 限制某一列的原始宽度：取 Max（pt）与 Ratio×总宽中较小且非零者。
type ColumnCap struct {
	Header string  `json:"header"`
	Max    float64 `json:"max"`
	Ratio  float64 `json:"ratio"`
}

// ColumnParams 配置列宽分配，宽度单位为 pt。
type ColumnParams struct {
	MinWidth   float64     `json:"minWidth"`
	MaxRatio   float64     `json:"maxRatio"`
	Padding    float64     `json:"padding"`
	FontSize   float64     `json:"fontSize"`
	MaxColumns int         `json:"maxColumns"` // 不含 Item Code 列
	Caps       []ColumnCap `json:"caps"`
}

// Cap 按表头（忽略大小写与首尾空白）查找列宽上限。
func (p ColumnParams) Cap(header string) (ColumnCap, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	for _, c := range p.Caps {
		if strings.ToLower(strings.TrimSpace(c.Header)) == h {
			return c, true
		}
	}
	return ColumnCap{}, false
}

// TableParams 描述 TABLE / TABLE2 块的几何（mm）与单元格内边距（pt）。
type TableParams struct {
	HeadlineGap  float64
	BannerHeight float64
	BannerGap    float64
	PairSpacer   float64
	CellLines    int
	CellPadX     float64
	HeaderPadY   float64
	BodyPadTop   float64
	BodyPadBot   float64
	RuleWidth    float64 // pt
	RuleColor    Color
}

// SpecParams 描述规格卡（键值两列）的比例与内边距（pt）。
type SpecParams struct {
	KeyRatio      float64
	KeyLines      int
	ValueLines    int
	KeyPadX       float64
	ValuePadX     float64
	ValuePadY     float64
	LeadingFactor float64 // 截断单元格的行距系数
	WrapFactor    float64 // 多行单元格的行距系数
	RuleWidth     float64 // pt
	RuleColor     Color
}

// SingleParams 是 1WP 版式中图表与主图的摆放参数。
type SingleParams struct {
	NameGap     float64 // mm
	GraphWidth  float64 // 占内容宽度比例
	GraphHeight float64 // 占内容行高度比例
	GraphGap    float64 // mm
	ImageOffset float64 // pt
}

// FooterConfig 描述页脚模板与位置；纵向位置从页面底边量起（mm）。
type FooterConfig struct {
	Template  string
	RuleY     float64
	TextY     float64
	RuleX1    float64
	RuleX2    float64
	LeftX     float64
	CenterX   float64
	RightX    float64
	RuleWidth float64 // pt
}

// Covers 记录主封面与各类目封面的图片引用，类目键为大写。
type Covers struct {
	Main       string            `json:"main,omitempty"`
	Categories map[string]string `json:"categories,omitempty"`
}

// Config 保存排版引擎的全部常量。长度单位为 mm，字体相关为 pt。
type Config struct {
	PageWidth    float64
	PageHeight   float64
	Margin       Margin
	HeaderBand   float64
	Safety       float64
	Headline     float64 // 条目标题占用的高度
	HeadlineGap  float64 // 标题文字与尾线之间的间隔
	MinRow       float64
	MinContainer float64
	IconSize     float64 // pt

	Formats map[catalog.Format]FormatParams
	Columns ColumnParams
	Styles  Styles
	Table   TableParams
	Spec    SpecParams
	Single  SingleParams
	Footer  FooterConfig
	Covers  Covers

	ExcludedSKUs []string // 这些货号不展示重量与包装尺寸
	HiddenKeys   []string // 对 ExcludedSKUs 与表格列隐藏的字段
}

var (
	black = Color{}
	red   = Color{R: 255}
	grey  = Color{R: 0x99, G: 0x99, B: 0x99}
)

// DefaultConfig 返回 A4 目录的默认参数。
func DefaultConfig() Config {
	detail := func(font string, c Color) TextStyle {
		return TextStyle{Font: font, Size: 11, Leading: 11, Color: c}
	}
	cell := func(font string, c Color) TextStyle {
		return TextStyle{Font: font, Size: 9, Leading: 10.8, Color: c}
	}
	return Config{
		PageWidth:    210,
		PageHeight:   297,
		Margin:       Margin{Top: 0.5, Right: 5, Bottom: 14.5, Left: 5},
		HeaderBand:   14,
		Safety:       1.5,
		Headline:     10,
		HeadlineGap:  4,
		MinRow:       22,
		MinContainer: 40,
		IconSize:     12,
		Formats: map[catalog.Format]FormatParams{
			catalog.FormatSinglePerPage: {PerPage: 1, Gap: 0, Boost: 4, LeftPad: 1, Gutter: 1, ImageWidth: 100, ImageCap: 0.40, DetailRows: 16},
			catalog.FormatTwoPerPage:    {PerPage: 2, Gap: 15, Boost: 5, LeftPad: 6, Gutter: 5, ImageWidth: 85, ImageCap: 0.90, DetailRows: 16},
			catalog.FormatThreePerPage:  {PerPage: 3, Gap: 12, Boost: 4, LeftPad: 23, Gutter: 22, ImageWidth: 50, ImageCap: 0.85, DetailRows: 10},
			catalog.FormatFourPerPage:   {PerPage: 4, Gap: 2, Boost: 0, LeftPad: 22, Gutter: 20, ImageWidth: 53, ImageCap: 0.75, DetailRows: 6},
		},
		Columns: ColumnParams{
			MinWidth:   16 * MmToPt,
			MaxRatio:   0.55,
			Padding:    6,
			FontSize:   9,
			MaxColumns: 6,
			Caps: []ColumnCap{
				{Header: "height", Max: 130},
				{Header: "size", Max: 100, Ratio: 0.30},
			},
		},
		Styles: Styles{
			Subcategory:      TextStyle{Font: FontBlack, Size: 30, Leading: 32, Color: black},
			ItemName:         TextStyle{Font: FontBlack, Size: 20, Leading: 18, Color: black},
			DetailKey:        detail(FontBlack, black),
			DetailValue:      detail(FontBook, black),
			DetailBold:       detail(FontBlack, black),
			DetailCode:       detail(FontBlack, red),
			TableHeader:      cell(FontBlack, black),
			TableCell:        cell(FontBook, black),
			TableBold:        cell(FontBlack, black),
			TableCode:        cell(FontBlack, red),
			Footer:           TextStyle{Font: FontBlack, Size: 9, Leading: 11, Color: black},
			Placeholder:      detail(FontBook, grey),
			HeaderMinScale:   0.70,
			HeaderShrinkStep: 0.5,
		},
		Table: TableParams{
			HeadlineGap:  10,
			BannerHeight: 60,
			BannerGap:    10,
			PairSpacer:   14,
			CellLines:    3,
			CellPadX:     2,
			HeaderPadY:   4,
			BodyPadTop:   6,
			BodyPadBot:   10,
			RuleWidth:    0.4,
			RuleColor:    grey,
		},
		Spec: SpecParams{
			KeyRatio:      0.40,
			KeyLines:      2,
			ValueLines:    5,
			KeyPadX:       3,
			ValuePadX:     5,
			ValuePadY:     3,
			LeadingFactor: 1.15,
			WrapFactor:    1.25,
			RuleWidth:     0.5,
			RuleColor:     grey,
		},
		Single: SingleParams{
			NameGap:     4,
			GraphWidth:  0.85,
			GraphHeight: 0.52,
			GraphGap:    6,
			ImageOffset: 8,
		},
		Footer: FooterConfig{
			Template:  `${Footer Left|Company|Brand|"LSK Hardware Trading Sdn Bhd"}`,
			RuleY:     9,
			TextY:     3.3,
			RuleX1:    10,
			RuleX2:    200,
			LeftX:     15,
			CenterX:   105,
			RightX:    195,
			RuleWidth: 1,
		},
		ExcludedSKUs: []string{"DL241025", "DL241041", "DL241057", "DL3565"},
		HiddenKeys:   []string{"weight", "packing dimension"},
	}
}

// DefaultResources 使用内置 Go 字体作为 Black / Book。
func DefaultResources() ResourceSet {
	return ResourceSet{
		Fonts: map[string]FontResource{
			FontBlack: {Name: FontBlack, Family: FontBlack, Src: "builtin:bold", Style: "bold"},
			FontBook:  {Name: FontBook, Family: FontBook, Src: "builtin:regular"},
		},
		Images: map[string]ImageResource{},
	}
}

// DefaultProfile 返回不依赖任何配置文件即可使用的默认版式。
func DefaultProfile() *Profile {
	return &Profile{
		Config:    DefaultConfig(),
		Resources: DefaultResources(),
		Meta:      DocumentMeta{Creator: "Folio"},
	}
}

// ContentWidth 是左右边距之间的宽度。
func (c Config) ContentWidth() float64 { return c.PageWidth - c.Margin.Left - c.Margin.Right }

// ContentTop 是页眉带之下第一条内容的位置。
func (c Config) ContentTop() float64 { return c.Margin.Top + c.HeaderBand }

// ContentBottom 是内容区域的下边界。
func (c Config) ContentBottom() float64 { return c.PageHeight - c.Margin.Bottom }

// Usable 是可供条目分配的高度：框架高度减去页眉带。
func (c Config) Usable() float64 { return c.ContentBottom() - c.ContentTop() }

// ParamsFor 返回某一版式的参数，未配置时退回 TwoPerPage。
func (c Config) ParamsFor(f catalog.Format) FormatParams {
	if p, ok := c.Formats[f]; ok {
		return p
	}
	return c.Formats[catalog.FormatTwoPerPage]
}

// hidden 判断字段名是否属于 HiddenKeys。
func (c Config) hidden(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, h := range c.HiddenKeys {
		if k == h {
			return true
		}
	}
	return false
}

// excluded 判断货号是否在 ExcludedSKUs 中。
func (c Config) excluded(code string) bool {
	code = strings.TrimSpace(code)
	for _, s := range c.ExcludedSKUs {
		if strings.EqualFold(s, code) {
			return true
		}
	}
	return false
}

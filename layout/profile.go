package layout

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/catalog"
	"github.com/ByLCY/folio/dsl"
)

var pagePresets = map[string][2]float64{
	"A4": {210, 297},
	"A5": {148, 210},
}

// LoadProfileFile 读取并解析版式配置文件。
func LoadProfileFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := dsl.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("解析版式配置 %s 失败: %w", path, err)
	}
	return LoadProfile(doc)
}

// LoadProfile 在 DefaultProfile 的基础上应用配置文档中出现的各段。
// 未出现的参数保持默认值。
func LoadProfile(doc *dsl.Document) (*Profile, error) {
	p := DefaultProfile()
	if doc == nil {
		return p, nil
	}
	p.Meta = collectMeta(doc, p.Meta)
	for _, section := range doc.Sections {
		var err error
		switch {
		case section.Resources != nil:
			err = applyResources(p, section.Resources.Block)
		case section.Page != nil:
			err = applyPage(&p.Config, section.Page)
		case section.Format != nil:
			err = applyFormat(&p.Config, section.Format)
		case section.Columns != nil:
			err = applyColumns(&p.Config.Columns, section.Columns.Block)
		case section.Footer != nil:
			err = applyFooter(&p.Config, section.Footer.Block)
		}
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

func collectMeta(doc *dsl.Document, meta DocumentMeta) DocumentMeta {
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func applyResources(p *Profile, block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		if stmt.Command == nil {
			continue
		}
		cmd := stmt.Command
		switch cmd.Name {
		case "font":
			font := parseFontResource(cmd)
			if font.Name == "" {
				return fmt.Errorf("第 %d 行: font 缺少名称", cmd.Pos.Line)
			}
			p.Resources.Fonts[font.Name] = font
		case "image":
			image := parseImageResource(cmd)
			if image.Name == "" {
				return fmt.Errorf("第 %d 行: image 缺少名称", cmd.Pos.Line)
			}
			p.Resources.Images[strings.ToLower(image.Name)] = image
		case "cover":
			if len(cmd.Args) == 0 {
				return fmt.Errorf("第 %d 行: cover 需要 main 或类目名", cmd.Pos.Line)
			}
			src := blockString(cmd.Block, "src")
			target := cmd.Args[0]
			if target.Type == "Ident" && strings.EqualFold(target.Value, "main") {
				p.Config.Covers.Main = src
				continue
			}
			if p.Config.Covers.Categories == nil {
				p.Config.Covers.Categories = map[string]string{}
			}
			p.Config.Covers.Categories[catalog.Upper(target.Value)] = src
		}
	}
	return nil
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{
		Name:   cmd.Args[0].Value,
		Family: cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil || stmt.Assignment.Value.String == nil {
			continue
		}
		v := string(*stmt.Assignment.Value.String)
		switch stmt.Assignment.Key {
		case "src":
			font.Src = v
		case "style":
			font.Style = v
		case "fallback":
			font.Fallback = v
		}
	}
	return font
}

func parseImageResource(cmd *dsl.Command) ImageResource {
	if len(cmd.Args) == 0 {
		return ImageResource{}
	}
	return ImageResource{
		Name: cmd.Args[0].Value,
		Src:  blockString(cmd.Block, "src"),
	}
}

func applyPage(cfg *Config, section *dsl.PageSection) error {
	w, h, err := resolvePageSize(section.Spec)
	if err != nil {
		return err
	}
	cfg.PageWidth, cfg.PageHeight = w, h
	if m, ok := resolveMargin(section.Spec.Params); ok {
		cfg.Margin = m
	}
	if section.Block == nil {
		return nil
	}
	for _, stmt := range section.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		raw := valueToString(stmt.Assignment.Value)
		switch stmt.Assignment.Key {
		case "header":
			v, ok := parseMM(raw)
			if !ok {
				return fmt.Errorf("page.header 无法解析: %q", raw)
			}
			cfg.HeaderBand = v
		case "safety":
			v, ok := parseMM(raw)
			if !ok {
				return fmt.Errorf("page.safety 无法解析: %q", raw)
			}
			cfg.Safety = v
		}
	}
	return nil
}

func resolvePageSize(spec dsl.PageSpec) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(spec.Size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
	}
	width, height := base[0], base[1]
	for _, token := range spec.Params {
		if token.Value == "landscape" {
			width, height = height, width
		}
	}
	return width, height, nil
}

// resolveMargin 读取 margin 之后的 1~4 个长度，遇到非数值停止。
// 1 值四边相同；2 值为上下、左右；3 值为上、右、下且左为 0；4 值为上右下左。
func resolveMargin(params []*dsl.Lexeme) (Margin, bool) {
	for i, token := range params {
		if token.Value != "margin" {
			continue
		}
		var vals []float64
		for j := i + 1; j < len(params) && len(vals) < 4; j++ {
			v, ok := parseMM(params[j].Value)
			if !ok {
				break
			}
			vals = append(vals, v)
		}
		switch len(vals) {
		case 1:
			v := vals[0]
			return Margin{Top: v, Right: v, Bottom: v, Left: v}, true
		case 2:
			return Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, true
		case 3:
			return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: 0}, true
		case 4:
			return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, true
		}
	}
	return Margin{}, false
}

func applyFormat(cfg *Config, section *dsl.FormatSection) error {
	tag := section.Tag()
	f := catalog.NormalizeFormat(tag)
	if f.IsTable() {
		return fmt.Errorf("format %s: 表格版式没有可覆盖的条目参数", tag)
	}
	params := cfg.ParamsFor(f)
	if section.Block != nil {
		for _, stmt := range section.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			key := stmt.Assignment.Key
			raw := valueToString(stmt.Assignment.Value)
			var ok bool
			switch key {
			case "gap":
				params.Gap, ok = parseMM(raw)
			case "boost":
				params.Boost, ok = parseMM(raw)
			case "pad":
				params.LeftPad, ok = parseMM(raw)
			case "gutter":
				params.Gutter, ok = parseMM(raw)
			case "image":
				params.ImageWidth, ok = parseMM(raw)
			case "cap":
				var l Length
				l, ok = ParseLength(raw)
				params.ImageCap = l.Ratio()
			case "rows":
				params.DetailRows, ok = parseInt(raw)
			case "perpage":
				params.PerPage, ok = parseInt(raw)
			default:
				return fmt.Errorf("format %s: 未知参数 %s", tag, key)
			}
			if !ok {
				return fmt.Errorf("format %s: %s 无法解析: %q", tag, key, raw)
			}
		}
	}
	if params.PerPage < 1 {
		return fmt.Errorf("format %s: perpage 必须大于 0", tag)
	}
	if cfg.Formats == nil {
		cfg.Formats = map[catalog.Format]FormatParams{}
	}
	cfg.Formats[f] = params
	return nil
}

func applyColumns(cp *ColumnParams, block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		switch {
		case stmt.Assignment != nil:
			key := stmt.Assignment.Key
			raw := valueToString(stmt.Assignment.Value)
			var ok bool
			switch key {
			case "min":
				cp.MinWidth, ok = parsePT(raw)
			case "ratio":
				var l Length
				l, ok = ParseLength(raw)
				cp.MaxRatio = l.Ratio()
			case "padding":
				cp.Padding, ok = parsePT(raw)
			case "size":
				cp.FontSize, ok = parsePT(raw)
			case "max":
				cp.MaxColumns, ok = parseInt(raw)
			default:
				return fmt.Errorf("columns: 未知参数 %s", key)
			}
			if !ok {
				return fmt.Errorf("columns: %s 无法解析: %q", key, raw)
			}
		case stmt.Command != nil && stmt.Command.Name == "cap":
			c, err := parseColumnCap(stmt.Command)
			if err != nil {
				return err
			}
			replaced := false
			for i := range cp.Caps {
				if strings.EqualFold(cp.Caps[i].Header, c.Header) {
					cp.Caps[i] = c
					replaced = true
				}
			}
			if !replaced {
				cp.Caps = append(cp.Caps, c)
			}
		}
	}
	return nil
}

// parseColumnCap 解析 cap <header> max <pt> ratio <percent>。
func parseColumnCap(cmd *dsl.Command) (ColumnCap, error) {
	if len(cmd.Args) == 0 {
		return ColumnCap{}, fmt.Errorf("第 %d 行: cap 缺少列名", cmd.Pos.Line)
	}
	c := ColumnCap{Header: cmd.Args[0].Value}
	attrs := parseArgs(cmd.Args[1:])
	if v, ok := attrs["max"]; ok {
		pt, ok := parsePT(v)
		if !ok {
			return c, fmt.Errorf("第 %d 行: cap max 无法解析: %q", cmd.Pos.Line, v)
		}
		c.Max = pt
	}
	if v, ok := attrs["ratio"]; ok {
		l, ok := ParseLength(v)
		if !ok {
			return c, fmt.Errorf("第 %d 行: cap ratio 无法解析: %q", cmd.Pos.Line, v)
		}
		c.Ratio = l.Ratio()
	}
	return c, nil
}

func applyFooter(cfg *Config, block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		switch {
		case stmt.Text != nil:
			cfg.Footer.Template = string(stmt.Text.Value)
		case stmt.Assignment != nil:
			raw := valueToString(stmt.Assignment.Value)
			switch stmt.Assignment.Key {
			case "template":
				cfg.Footer.Template = raw
			case "color":
				c, err := parseColor(raw)
				if err != nil {
					return err
				}
				cfg.Styles.Footer.Color = c
			case "size":
				v, ok := parsePT(raw)
				if !ok {
					return fmt.Errorf("footer.size 无法解析: %q", raw)
				}
				cfg.Styles.Footer.Size = v
			}
		}
	}
	return nil
}

func parseArgs(args []*dsl.Lexeme) map[string]string {
	result := map[string]string{}
	for i := 0; i+1 < len(args); i += 2 {
		result[args[i].Value] = args[i+1].Value
	}
	return result
}

func blockString(block *dsl.Block, key string) string {
	if block == nil {
		return ""
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment != nil && stmt.Assignment.Key == key {
			return valueToString(stmt.Assignment.Value)
		}
	}
	return ""
}

func parseInt(raw string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	return v, err == nil
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	v, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}

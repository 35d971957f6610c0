package catalog

import "strings"

// FieldKind 区分单行（可截断）字段与多行（完整折行）字段。
type FieldKind int

const (
	SingleLine FieldKind = iota
	MultiLine
)

func (k FieldKind) String() string {
	if k == MultiLine {
		return "multi-line"
	}
	return "single-line"
}

// MarshalText keeps debug JSON readable.
func (k FieldKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// FieldStyle 对应规格卡中值单元格的字重与颜色。
type FieldStyle int

const (
	StylePlain FieldStyle = iota
	StyleBold
	StyleCode // 红色加粗，仅用于 Item Code
)

// Field 是规格卡或表格中的一个键值对。
// Icon 非空时字段为带图标文本（IconAnnotatedText），在导入时一次性判定。
type Field struct {
	Key   string     `json:"key"`
	Value string     `json:"value"`
	Kind  FieldKind  `json:"kind"`
	Style FieldStyle `json:"style,omitempty"`
	Icon  string     `json:"icon,omitempty"`
}

// Empty 为 true 时该字段不参与排版。
func (f Field) Empty() bool { return strings.TrimSpace(f.Value) == "" }

// Record 是一条商品记录，加载后只读。
type Record struct {
	Name        string            `json:"name"`
	Code        string            `json:"code"`
	Image       string            `json:"image,omitempty"`
	GraphImage  string            `json:"graphImage,omitempty"`
	GroupKey    string            `json:"groupKey,omitempty"`
	Category    string            `json:"category"`
	Subcategory string            `json:"subcategory"`
	Format      Format            `json:"format"`
	Fields      []Field           `json:"fields"`
	Attrs       map[string]string `json:"attrs,omitempty"` // 原始列，供页脚模板绑定
}

// VisibleFields 返回非空字段，保持原有顺序。
func (r Record) VisibleFields() []Field {
	out := make([]Field, 0, len(r.Fields))
	for _, f := range r.Fields {
		if f.Empty() {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Field 按键名（忽略大小写与首尾空白）查找字段值。
func (r Record) Field(key string) (Field, bool) {
	want := normalizeKey(key)
	for _, f := range r.Fields {
		if normalizeKey(f.Key) == want {
			return f, true
		}
	}
	return Field{}, false
}

func normalizeKey(k string) string { return strings.ToLower(strings.TrimSpace(k)) }

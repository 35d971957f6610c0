package catalog

import (
	"fmt"
	"strings"
)

// MaxParameters 是表格中 ParameterN/ValueN 列的上限。
const MaxParameters = 20

var (
	nameKeys  = []string{"Item Name", "Title", "Product Name"}
	codeKeys  = []string{"Item Code", "Code"}
	imageKeys = []string{"Image URL", "Image", "IMAGE", "image", "Main Image", "Photo"}
	graphKeys = []string{"Image URL Graph", "Graph URL", "Graph"}

	multiLineKeys = map[string]bool{
		"size":             true,
		"package include":  true,
		"package includes": true,
		"specification":    true,
		"specifications":   true,
		"features":         true,
		"description":      true,
		"material list":    true,
	}

	// 顺序有意义：flat 先于 half round，half round 先于 round。
	iconIDs = []string{"flat", "half round", "round", "triangle", "square"}
)

// FromRow 将一行表格数据（列名 → 单元格文本）转换为 Record。
// ParameterN 列保存字段名，ValueN 列保存字段值；任一为空时该字段被忽略。
func FromRow(row map[string]string) Record {
	rec := Record{
		Name:        FirstNonEmpty(row, nameKeys...),
		Code:        FirstNonEmpty(row, codeKeys...),
		Image:       FirstNonEmpty(row, imageKeys...),
		GraphImage:  FirstNonEmpty(row, graphKeys...),
		GroupKey:    strings.TrimSpace(row["Group ID"]),
		Category:    strings.TrimSpace(row["Category"]),
		Subcategory: strings.TrimSpace(row["SubCategory"]),
		Format:      NormalizeFormat(row["Format"]),
		Attrs:       make(map[string]string, len(row)),
	}
	for k, v := range row {
		rec.Attrs[k] = strings.TrimSpace(v)
	}
	for i := 1; i <= MaxParameters; i++ {
		label := CleanText(row[fmt.Sprintf("Parameter%d", i)])
		raw := strings.TrimSpace(row[fmt.Sprintf("Value%d", i)])
		if label == "" || raw == "" {
			continue
		}
		if f := NewField(label, raw); !f.Empty() {
			rec.Fields = append(rec.Fields, f)
		}
	}
	return rec
}

// NewField 根据字段名与原始值构造字段：判定多行类型、加粗样式与图标标记。
func NewField(key, raw string) Field {
	key = strings.TrimSpace(key)
	icon, text := DetectIcon(raw)
	f := Field{
		Key:   key,
		Value: CleanText(text),
		Icon:  icon,
	}
	low := normalizeKey(key)
	if multiLineKeys[low] {
		f.Kind = MultiLine
	}
	if low == "packing" || low == "price" {
		f.Style = StyleBold
	}
	return f
}

// DetectIcon 识别以 <span> 开头的形状标记值，返回图标 id 与去掉标记后的文本。
// 非标记值原样返回，图标 id 为空。
func DetectIcon(raw string) (string, string) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(strings.ToLower(trimmed), "<span>") {
		return "", trimmed
	}
	text := strings.TrimSpace(trimmed[len("<span>"):])
	low := strings.ToLower(text)
	for _, id := range iconIDs {
		if strings.Contains(low, id) {
			return id, text
		}
	}
	return "", text
}

// FirstNonEmpty 返回 keys 中第一个非空列的值。
func FirstNonEmpty(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(row[k]); v != "" {
			return v
		}
	}
	return ""
}

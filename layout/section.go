package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/folio/catalog"
)

// Section 是 (类目, 版式, 子类[, 分组]) 相同的一段连续记录。
type Section struct {
	Category    string
	Subcategory string
	Format      catalog.Format
	Group       string // 仅表格版式使用
	Records     []catalog.Record
}

type sectionKey struct {
	category    string
	format      catalog.Format
	subcategory string
	group       string
}

// DetectSections 按输入顺序切分 Section，键元组变化即开始新段。
// 表格版式还按分组键切分，空白分组各自成段。
func DetectSections(records []catalog.Record) []Section {
	var out []Section
	var prev sectionKey
	for i, rec := range records {
		k := sectionKey{
			category:    strings.TrimSpace(rec.Category),
			format:      rec.Format,
			subcategory: strings.TrimSpace(rec.Subcategory),
		}
		if rec.Format.IsTable() {
			k.group = strings.TrimSpace(rec.GroupKey)
			if k.group == "" {
				k.group = fmt.Sprintf("\x00blank:%d", i)
			}
		}
		if len(out) > 0 && k == prev {
			last := &out[len(out)-1]
			last.Records = append(last.Records, rec)
			continue
		}
		sec := Section{
			Category:    k.category,
			Subcategory: k.subcategory,
			Format:      rec.Format,
			Records:     []catalog.Record{rec},
		}
		if rec.Format.IsTable() {
			sec.Group = strings.TrimSpace(rec.GroupKey)
		}
		out = append(out, sec)
		prev = k
	}
	return out
}

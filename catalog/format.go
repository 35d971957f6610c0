package catalog

import "strings"

// Format 决定一个 Section 走哪条排版路径，以及每页容量与高度规划参数。
type Format int

const (
	FormatTwoPerPage Format = iota // 默认值
	FormatTable
	FormatTablePair
	FormatSinglePerPage
	FormatThreePerPage
	FormatFourPerPage
)

// NormalizeFormat 将表格中的格式标记（含历史别名）映射为规范值，无法识别时退回 TwoPerPage。
func NormalizeFormat(tag string) Format {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "TABLE":
		return FormatTable
	case "TABLE2", "1B", "TABLE-PAIR", "PAIR":
		return FormatTablePair
	case "1WP", "SINGLE":
		return FormatSinglePerPage
	case "2", "2A", "2B", "TWO":
		return FormatTwoPerPage
	case "3", "3A", "THREE":
		return FormatThreePerPage
	case "4", "4A", "FOUR":
		return FormatFourPerPage
	default:
		return FormatTwoPerPage
	}
}

// String 返回规范标记，与表格中使用的写法保持一致。
func (f Format) String() string {
	switch f {
	case FormatTable:
		return "TABLE"
	case FormatTablePair:
		return "TABLE2"
	case FormatSinglePerPage:
		return "1WP"
	case FormatThreePerPage:
		return "3"
	case FormatFourPerPage:
		return "4"
	default:
		return "2"
	}
}

// MarshalText lets formats appear as their canonical tag in debug JSON.
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText accepts any alias understood by NormalizeFormat.
func (f *Format) UnmarshalText(b []byte) error {
	*f = NormalizeFormat(string(b))
	return nil
}

// PerPage 返回每页最多容纳的条目数。表格类格式按“块”计数。
func (f Format) PerPage() int {
	switch f {
	case FormatTablePair:
		return 2
	case FormatThreePerPage:
		return 3
	case FormatFourPerPage:
		return 4
	case FormatTable, FormatSinglePerPage:
		return 1
	default:
		return 2
	}
}

// IsTable 表示该格式按 Group ID 聚合为一张明细表。
func (f Format) IsTable() bool { return f == FormatTable || f == FormatTablePair }

// IsMultiItem 表示该格式在一页上排多个条目，需要分页与高度规划。
func (f Format) IsMultiItem() bool {
	return f == FormatTwoPerPage || f == FormatThreePerPage || f == FormatFourPerPage
}

package binding

import (
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Lookup 按列名取值，第二个返回值表示该列是否存在且非空。
type Lookup func(key string) (string, bool)

// FromMap 以大小写不敏感的方式在 map 中查找列。
func FromMap(data map[string]string) Lookup {
	return func(key string) (string, bool) {
		if v, ok := data[key]; ok {
			v = strings.TrimSpace(v)
			return v, v != ""
		}
		for k, v := range data {
			if strings.EqualFold(strings.TrimSpace(k), key) {
				v = strings.TrimSpace(v)
				return v, v != ""
			}
		}
		return "", false
	}
}

// Interpolate 将文本中的 ${a|b|"默认值"} 替换为第一个有值的候选列。
// 候选项按 | 分隔，带引号的候选项是字面量；全部落空时替换为空串。
func Interpolate(text string, lookup Lookup) string {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		for _, alt := range splitAlternatives(groups[1]) {
			if lit, ok := literal(alt); ok {
				return lit
			}
			if alt == "" {
				continue
			}
			if val, ok := lookup(alt); ok {
				return val
			}
		}
		return ""
	})
}

// splitAlternatives 按 | 切分候选项，引号内的 | 不参与切分。
func splitAlternatives(expr string) []string {
	var (
		parts   []string
		b       strings.Builder
		inQuote bool
		escaped bool
	)
	for _, r := range expr {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case r == '|' && !inQuote:
			parts = append(parts, strings.TrimSpace(b.String()))
			b.Reset()
			continue
		}
		b.WriteRune(r)
	}
	parts = append(parts, strings.TrimSpace(b.String()))
	return parts
}

func literal(alt string) (string, bool) {
	if len(alt) < 2 || alt[0] != '"' || alt[len(alt)-1] != '"' {
		return "", false
	}
	s, err := strconv.Unquote(alt)
	if err != nil {
		return alt[1 : len(alt)-1], true
	}
	return s, true
}

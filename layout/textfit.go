package layout

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Ellipsis 是截断时追加的省略号。
const Ellipsis = "…"

// WidthFunc 返回字符串的渲染宽度，单位与 maxWidth 一致。
type WidthFunc func(string) float64

// FitText 将文本折行为最多 maxLines 行，每行宽度不超过 maxWidth。
// 显式换行划分段落，段内按空白分词贪心填充。内容被丢弃时，
// 最后一行追加下一个待放入词的最长前缀与省略号。
// 结果是幂等的：对输出再次调用 FitText 得到相同的行。
func FitText(text string, maxWidth float64, maxLines int, width WidthFunc) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	blocks := strings.Split(text, "\n")
	lines := make([]string, 0, maxLines)
	for bi, block := range blocks {
		words := strings.Fields(block)
		if len(lines) >= maxLines {
			if next := firstWord(blocks[bi:]); next != "" {
				return extendLast(lines, next, maxWidth, width)
			}
			return lines
		}
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			cand := w
			if cur != "" {
				cand = cur + " " + w
			}
			if width(cand) <= maxWidth {
				cur = cand
				continue
			}
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
				if len(lines) >= maxLines {
					return extendLast(lines, w, maxWidth, width)
				}
			}
			if width(w) <= maxWidth {
				cur = w
				continue
			}
			lines = append(lines, truncateRunes(w, maxWidth, width))
			if len(lines) >= maxLines {
				return lines
			}
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// extendLast 把 pending 的最长前缀加省略号接到最后一行；一个字符都放不下时
// 只给最后一行补省略号。
func extendLast(lines []string, pending string, maxWidth float64, width WidthFunc) []string {
	last := lines[len(lines)-1]
	if strings.HasSuffix(last, Ellipsis) {
		return lines
	}
	runes := []rune(pending)
	for k := len(runes); k > 0; k-- {
		cand := string(runes[:k]) + Ellipsis
		if last != "" {
			cand = last + " " + cand
		}
		if width(cand) <= maxWidth {
			lines[len(lines)-1] = cand
			return lines
		}
	}
	lines[len(lines)-1] = truncateRunes(last+Ellipsis, maxWidth, width)
	return lines
}

// truncateRunes 返回 s 本身（若放得下），否则返回最长前缀加省略号；
// 省略号也放不下时仍返回省略号本身。
func truncateRunes(s string, maxWidth float64, width WidthFunc) string {
	if width(s) <= maxWidth {
		return s
	}
	base := strings.TrimSuffix(s, Ellipsis)
	runes := []rune(base)
	lo, hi := 0, len(runes)
	// width 对长度单调，二分查找最长可用前缀。
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if width(strings.TrimRight(string(runes[:mid]), " ")+Ellipsis) <= maxWidth {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	prefix := strings.TrimRight(string(runes[:lo]), " ")
	return prefix + Ellipsis
}

// TruncateLine 把文本压成单行，超宽时按字符截断并追加省略号。
func TruncateLine(text string, maxWidth float64, width WidthFunc) string {
	text = strings.Join(strings.Fields(text), " ")
	return truncateRunes(text, maxWidth, width)
}

// WrapText 不限行数地折行，用于多行字段；超宽的单词按字符硬断开。
func WrapText(text string, maxWidth float64, width WidthFunc) []string {
	var lines []string
	for _, block := range strings.Split(text, "\n") {
		words := strings.Fields(block)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			cand := w
			if cur != "" {
				cand = cur + " " + w
			}
			if width(cand) <= maxWidth {
				cur = cand
				continue
			}
			if cur != "" {
				lines = append(lines, cur)
			}
			cur = ""
			for _, piece := range hardBreak(w, maxWidth, width) {
				if cur != "" {
					lines = append(lines, cur)
				}
				cur = piece
			}
		}
		lines = append(lines, cur)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// hardBreak 把超宽单词拆成若干段，每段至少一个字符。
func hardBreak(word string, maxWidth float64, width WidthFunc) []string {
	var out []string
	runes := []rune(word)
	for len(runes) > 0 {
		k := 1
		for k < len(runes) && width(string(runes[:k+1])) <= maxWidth {
			k++
		}
		out = append(out, string(runes[:k]))
		runes = runes[k:]
	}
	return out
}

// EstimateLines 估算值单元格需要的行数：显式换行数与按平均字宽折算的行数取大，
// 再以 maxLines 封顶。columnWidth 与 padding 单位为 pt。
func EstimateLines(text string, columnWidth, padding, fontSize float64, maxLines int) int {
	if maxLines <= 1 {
		return 1
	}
	perLine := 1
	if fontSize > 0 {
		if v := int((columnWidth - 2*padding) / (fontSize * 0.6)); v > 1 {
			perLine = v
		}
	}
	need := strings.Count(text, "\n") + 1
	if byWidth := int(math.Ceil(float64(utf8.RuneCountInString(text)) / float64(perLine))); byWidth > need {
		need = byWidth
	}
	if need > maxLines {
		return maxLines
	}
	return need
}

func firstWord(blocks []string) string {
	for _, b := range blocks {
		if f := strings.Fields(b); len(f) > 0 {
			return f[0]
		}
	}
	return ""
}

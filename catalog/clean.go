package catalog

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	newlineReplacer = strings.NewReplacer(
		`\n`, "\n",
		`\r`, "\n",
		"&#10;", "\n",
		"&#13;", "\n",
		"&#xa;", "\n",
		"\r\n", "\n",
		"\r", "\n",
	)
	junkPattern      = regexp.MustCompile(`[\x{25A0}-\x{25FF}\x{2610}-\x{2613}\x{FFFD}\x{F0A7}\x00-\x08\x0B-\x1F\x7F]`)
	manyNewlines     = regexp.MustCompile(`\n{3,}`)
	spaceRun         = regexp.MustCompile(`[ \t]+`)
	commaSpacing     = regexp.MustCompile(`\s*,\s*`)
	parenthesisGroup = regexp.MustCompile(`\([^>]*\)`)
)

// CleanText 清洗表格单元格里的富文本：统一换行、去除 HTML 标签与实体、删除不可见字符并压缩空白。
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = newlineReplacer.Replace(s)
	s = stripTags(s)
	s = junkPattern.ReplaceAllString(s, "")
	s = manyNewlines.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	return norm.NFC.String(strings.TrimSpace(s))
}

// stripTags 使用 HTML 分词器去掉标签并解码实体，<br> 与块级结束标签转为换行。
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br":
				b.WriteByte('\n')
			case "p", "div", "li":
				if tt == html.EndTagToken {
					b.WriteByte('\n')
				}
			}
		}
	}
}

// Upper 按 Unicode 规则转为大写，用于标题与页脚。
// cases.Caser 不能并发复用，这里每次新建。
func Upper(s string) string { return cases.Upper(language.Und).String(s) }

// HeadlineText 生成条目标题：去掉括号内容后转大写。
func HeadlineText(name string) string {
	return Upper(strings.TrimSpace(parenthesisGroup.ReplaceAllString(name, "")))
}

// SplitSizeList 将过长的尺寸列表拆成两行，便于表格列宽测量。
// 多于 4 项时按项数对半拆分，第一行保留结尾逗号。
func SplitSizeList(s string) string {
	if s == "" {
		return s
	}
	s = commaSpacing.ReplaceAllString(strings.TrimSpace(s), ", ")
	if !strings.Contains(s, ",") {
		return s
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) <= 4 {
		return s
	}
	mid := len(parts) / 2
	return strings.Join(parts[:mid], ", ") + ",\n" + strings.Join(parts[mid:], ", ")
}

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ByLCY/folio/layout"
)

var (
	summaryHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	summaryCell   = lipgloss.NewStyle().Padding(0, 1)
	summaryDim    = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	summaryBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderSummary 以表格列出每个 Section 的版式、记录数、页码与高度规划，
// 末尾附上警告数量。
func renderSummary(res *layout.Result) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(summaryBorder).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return summaryHeader
			case row%2 == 1:
				return summaryDim
			default:
				return summaryCell
			}
		}).
		Headers("Category", "Subcategory", "Format", "Records", "Pages", "Plan")

	for _, s := range res.Sections {
		t.Row(s.Category, s.Subcategory, s.Format, fmt.Sprint(s.Records), pageRange(s.Pages), planText(s))
	}
	footer := fmt.Sprintf("%d 页，%d 个 Section，%d 条警告", len(res.Pages), len(res.Sections), len(res.Warnings))
	return lipgloss.JoinVertical(lipgloss.Left, t.String(), summaryCell.Render(footer))
}

// pageRange 把连续页码压缩为 a-b 形式。
func pageRange(pages []int) string {
	if len(pages) == 0 {
		return "-"
	}
	var parts []string
	start, prev := pages[0], pages[0]
	flush := func() {
		if start == prev {
			parts = append(parts, fmt.Sprint(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, p := range pages[1:] {
		if p == prev+1 {
			prev = p
			continue
		}
		flush()
		start, prev = p, p
	}
	flush()
	return strings.Join(parts, ",")
}

func planText(s layout.SectionInfo) string {
	switch {
	case s.Plan != nil:
		return fmt.Sprintf("box %.1f / row %.1f / gap %.1f mm", s.Plan.Container, s.Plan.Row, s.Plan.Gap)
	case len(s.Columns) > 0:
		cols := make([]string, len(s.Columns))
		for i, w := range s.Columns {
			cols[i] = fmt.Sprintf("%.0f", w)
		}
		return "cols " + strings.Join(cols, "/") + " pt"
	default:
		return ""
	}
}

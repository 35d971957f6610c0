package layout

import "strings"

// ColumnPlan 是一张表格的列宽（pt），总和等于请求的总宽。
// Degenerate 表示总宽小于 列数×最小列宽，此时不保证最小列宽。
type ColumnPlan struct {
	Widths     []float64 `json:"widths"`
	Degenerate bool      `json:"degenerate,omitempty"`
}

// ColumnWidthFunc 测量单元格文本宽度（pt），header 区分表头与正文字体。
type ColumnWidthFunc func(s string, header bool) float64

// AllocateColumns 在 total（pt）内为各列分配宽度。
//
// 原始宽度取表头与各值（按行拆开）的最大测量宽度加内边距，受列上限与
// MaxRatio 约束。总和不足时按 min(2, w/avg) 分配剩余空间；超出时统一压缩，
// 宽列多压、窄列少压。最后保证最小列宽并归一化到 total。
func AllocateColumns(headers []string, rows [][]string, total float64, cfg ColumnParams, width ColumnWidthFunc) ColumnPlan {
	n := len(headers)
	if n == 0 {
		return ColumnPlan{}
	}
	minW := cfg.MinWidth
	if total < float64(n)*minW {
		widths := make([]float64, n)
		for i := range widths {
			widths[i] = total / float64(n)
		}
		return ColumnPlan{Widths: widths, Degenerate: true}
	}

	raw := make([]float64, n)
	for i, h := range headers {
		w := width(h, true)
		for _, row := range rows {
			if i >= len(row) {
				continue
			}
			for _, line := range strings.Split(row[i], "\n") {
				if lw := width(line, false); lw > w {
					w = lw
				}
			}
		}
		w += cfg.Padding
		if c, ok := cfg.Cap(h); ok {
			w = applyCap(w, c, total)
		}
		if cfg.MaxRatio > 0 {
			if limit := cfg.MaxRatio * total; w > limit {
				w = limit
			}
		}
		raw[i] = w
	}

	sum := sumOf(raw)
	avg := sum / float64(n)
	adjusted := make([]float64, n)
	switch {
	case avg <= 0:
		for i := range adjusted {
			adjusted[i] = total / float64(n)
		}
	case sum <= total:
		weights := make([]float64, n)
		for i, w := range raw {
			weights[i] = min(2.0, w/avg)
		}
		wsum := sumOf(weights)
		surplus := total - sum
		for i, w := range raw {
			adjusted[i] = w
			if wsum > 0 {
				adjusted[i] += surplus * weights[i] / wsum
			}
		}
	default:
		factor := total / sum
		for i, w := range raw {
			damp := 0.7 + 0.6*min(1.0, w/avg)
			adjusted[i] = w * factor * (2 - damp)
		}
	}

	for i := range adjusted {
		if adjusted[i] < minW {
			adjusted[i] = minW
		}
	}
	return ColumnPlan{Widths: normalizeWidths(adjusted, total, minW)}
}

// normalizeWidths 把列宽缩放到 total。缩小时只缩放超出最小列宽的部分，
// 因而结果仍不小于 minW。
func normalizeWidths(widths []float64, total, minW float64) []float64 {
	sum := sumOf(widths)
	if sum <= 0 {
		return widths
	}
	if sum <= total {
		k := total / sum
		for i := range widths {
			widths[i] *= k
		}
		return widths
	}
	excess := sum - float64(len(widths))*minW
	room := total - float64(len(widths))*minW
	if excess <= 0 {
		for i := range widths {
			widths[i] = total / float64(len(widths))
		}
		return widths
	}
	k := room / excess
	for i := range widths {
		widths[i] = minW + (widths[i]-minW)*k
	}
	return widths
}

func applyCap(w float64, c ColumnCap, total float64) float64 {
	limit := 0.0
	if c.Max > 0 {
		limit = c.Max
	}
	if c.Ratio > 0 {
		if r := c.Ratio * total; limit == 0 || r < limit {
			limit = r
		}
	}
	if limit > 0 && w > limit {
		return limit
	}
	return w
}

func sumOf(vals []float64) float64 {
	s := 0.0
	for _, v := range vals {
		s += v
	}
	return s
}

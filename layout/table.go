package layout

import (
	"strings"

	"github.com/ByLCY/folio/catalog"
)

// tableBlock 是一个表格块（标题、横幅与明细表）在放置前的几何。
// 行的 Y 为 0，放置时再平移。
type tableBlock struct {
	sec     Section
	headers []string
	plan    ColumnPlan
	widths  []float64 // mm
	header  TableRow
	rows    []TableRow
}

// tableColumns 取首条记录的字段名作为列：去掉隐藏字段并去重，最多 max 列。
func (c *composer) tableColumns(rec catalog.Record) []string {
	seen := map[string]bool{"item code": true}
	var cols []string
	for _, f := range rec.Fields {
		low := strings.ToLower(strings.TrimSpace(f.Key))
		if low == "" || seen[low] || c.cfg.hidden(f.Key) {
			continue
		}
		seen[low] = true
		cols = append(cols, f.Key)
		if limit := c.cfg.Columns.MaxColumns; limit > 0 && len(cols) >= limit {
			break
		}
	}
	return append([]string{"Item Code"}, cols...)
}

func (c *composer) layoutTable(sec Section) *tableBlock {
	st := c.cfg.Styles
	tp := c.cfg.Table
	headers := c.tableColumns(sec.Records[0])

	type cell struct {
		text  string
		style TextStyle
		icon  string
	}
	values := make([][]string, len(sec.Records))
	cells := make([][]cell, len(sec.Records))
	for i, rec := range sec.Records {
		row := []cell{{text: strings.TrimSpace(rec.Code), style: st.TableCode}}
		for _, h := range headers[1:] {
			f, _ := rec.Field(h)
			v := f.Value
			style := st.TableCell
			switch strings.ToLower(strings.TrimSpace(h)) {
			case "size":
				v = catalog.SplitSizeList(v)
			case "packing", "price":
				style = st.TableBold
			}
			row = append(row, cell{text: v, style: style, icon: f.Icon})
		}
		cells[i] = row
		vals := make([]string, len(row))
		for j, cl := range row {
			vals[j] = cl.text
		}
		values[i] = vals
	}

	total := mmToPT(c.cfg.ContentWidth())
	measure := func(s string, header bool) float64 {
		if header {
			return c.widthFunc(st.TableHeader)(s)
		}
		return c.widthFunc(st.TableCell)(s)
	}
	cp := c.cfg.Columns
	cp.FontSize = st.TableCell.Size
	plan := AllocateColumns(headers, values, total, cp, measure)
	widths := make([]float64, len(plan.Widths))
	for i, w := range plan.Widths {
		widths[i] = ptToMM(w)
	}

	tb := &tableBlock{sec: sec, headers: headers, plan: plan, widths: widths}

	hdr := make([]cell, len(headers))
	for i, h := range headers {
		hdr[i] = cell{text: h, style: st.TableHeader}
	}
	build := func(row []cell, padTop, padBot float64, isHeader bool) TableRow {
		lines := make([][]string, len(row))
		indents := make([]float64, len(row))
		icons := make([]string, len(row))
		n := 1
		for i, cl := range row {
			avail := plan.Widths[i] - 2*tp.CellPadX
			if p := c.icon(cl.icon); p != "" {
				icons[i] = p
				indents[i] = c.cfg.IconSize + 2
				avail -= indents[i]
			}
			lines[i] = FitText(cl.text, avail, tp.CellLines, c.widthFunc(cl.style))
			n = max(n, len(lines[i]))
		}
		leading := row[0].style.Leading
		h := ptToMM(float64(n)*leading + padTop + padBot)
		tr := TableRow{Height: h, IsHeader: isHeader}
		x := 0.0
		for i, cl := range row {
			text := c.textBox(cl.style, x+ptToMM(tp.CellPadX), ptToMM(padTop), widths[i]-ptToMM(2*tp.CellPadX), h-ptToMM(padTop+padBot), lines[i])
			text.VAlign = VAlignMiddle
			if icons[i] != "" {
				text.Icon = icons[i]
				text.IconSize = ptToMM(c.cfg.IconSize)
				text.Indent = ptToMM(indents[i])
			}
			tr.Cells = append(tr.Cells, TableCell{Text: text})
			x += widths[i]
		}
		return tr
	}
	tb.header = build(hdr, tp.HeaderPadY, tp.HeaderPadY, true)
	for _, row := range cells {
		tb.rows = append(tb.rows, build(row, tp.BodyPadTop, tp.BodyPadBot, false))
	}
	return tb
}

// height 返回整块放在同一页时占用的高度（mm）。
func (t *tableBlock) height(cfg Config) float64 {
	h := cfg.Table.HeadlineGap + cfg.Table.BannerHeight + cfg.Table.BannerGap + t.header.Height
	for _, r := range t.rows {
		h += r.Height
	}
	return h
}

// placeTable 从 y 开始放置表格块，返回结束位置。放不下的行在新页继续，
// 新页重复表头。
func (c *composer) placeTable(t *tableBlock, y float64) float64 {
	tp := c.cfg.Table
	x0 := c.cfg.Margin.Left
	contentW := c.cfg.ContentWidth()
	first := t.sec.Records[0]
	if t.plan.Degenerate {
		c.warn(WarnColumnsDegenerate, "%s: 表格总宽小于 %d 列的最小宽度", sectionLabel(t.sec), len(t.headers))
	}

	c.headline(first.Name, x0, y, contentW)
	y += tp.HeadlineGap
	c.imageSlot(first.Image, x0, y, contentW, tp.BannerHeight, false)
	y += tp.BannerHeight + tp.BannerGap

	bottom := c.cfg.ContentBottom()
	box, y := c.openTable(y, t)
	fresh := false
	body := 0
	for _, r := range t.rows {
		if y+r.Height > bottom+1e-6 && !(fresh && body == 0) {
			if body > 0 {
				c.closeTable(box, body)
			}
			c.contentPage(t.sec)
			box, y = c.openTable(c.cfg.ContentTop(), t)
			fresh = true
			body = 0
		}
		box.Rows = append(box.Rows, shiftRow(r, box.X, y))
		y += r.Height
		body++
	}
	c.closeTable(box, body)
	return y
}

// openTable 在 y 处开始一张新表并放入表头，返回表与表头下沿。
func (c *composer) openTable(y float64, t *tableBlock) (*TableBox, float64) {
	box := &TableBox{
		X:            c.cfg.Margin.Left,
		Y:            y,
		Width:        c.cfg.ContentWidth(),
		ColumnWidths: t.widths,
	}
	box.Rows = []TableRow{shiftRow(t.header, box.X, y)}
	return box, y + t.header.Height
}

// closeTable 把表格写入当前页；多于一行正文时在正文行之间画分隔线。
func (c *composer) closeTable(box *TableBox, body int) {
	if body > 1 {
		tp := c.cfg.Table
		for _, r := range box.Rows[1 : len(box.Rows)-1] {
			ly := r.Y + r.Height
			c.page.Lines = append(c.page.Lines, Line{
				X1: box.X, Y1: ly, X2: box.X + box.Width, Y2: ly,
				Color: tp.RuleColor, Width: ptToMM(tp.RuleWidth),
			})
		}
	}
	c.page.Tables = append(c.page.Tables, *box)
}

// shiftRow 把相对坐标的行平移到 (x, y)。
func shiftRow(r TableRow, x, y float64) TableRow {
	out := TableRow{Y: y, Height: r.Height, IsHeader: r.IsHeader, Cells: make([]TableCell, len(r.Cells))}
	for i, cell := range r.Cells {
		cell.Text.X += x
		cell.Text.Y += y
		out.Cells[i] = cell
	}
	return out
}

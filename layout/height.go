package layout

// HeightParams 是高度规划的固定参数（mm）。
type HeightParams struct {
	Safety       float64
	MinContainer float64
	Headline     float64
	MinRow       float64
}

// HeightPlan 是一个 Section 内所有页共用的条目几何（mm）。
type HeightPlan struct {
	PerPage   int     `json:"perPage"`
	Container float64 `json:"container"`
	Row       float64 `json:"row"`
	Gap       float64 `json:"gap"`
}

// HeightParams 从配置中取出高度规划参数。
func (c Config) HeightParams() HeightParams {
	return HeightParams{
		Safety:       c.Safety,
		MinContainer: c.MinContainer,
		Headline:     c.Headline,
		MinRow:       c.MinRow,
	}
}

// PlanHeights 把 usable 高度分给 perPage 个条目。
// 基础容器高度不低于 MinContainer，再加上 boost；超出时先压缩间距到 0，
// 仍超出再把剩余差额平摊到每个容器。内容行高度为容器减去标题占用，
// 最低为 MinRow。
func PlanHeights(perPage int, gap, boost, usable float64, p HeightParams) HeightPlan {
	if perPage < 1 {
		perPage = 1
	}
	if gap < 0 {
		gap = 0
	}
	n := float64(perPage)
	container := (usable - (n-1)*gap - p.Safety) / n
	if container < p.MinContainer {
		container = p.MinContainer
	}
	container += boost

	total := func() float64 { return n*container + (n-1)*gap + p.Safety }
	if over := total() - usable; over > 0 && perPage > 1 {
		reclaim := min(over, (n-1)*gap)
		gap -= reclaim / (n - 1)
	}
	if over := total() - usable; over > 0 {
		container -= over / n
	}
	if container < 0 {
		container = 0
	}

	row := container - p.Headline
	if row < p.MinRow {
		row = p.MinRow
	}
	return HeightPlan{PerPage: perPage, Container: container, Row: row, Gap: gap}
}

package layout

import (
	"errors"
	"strings"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/catalog"
)

var (
	// ErrNoRecords 表示输入没有任何记录，无法生成目录。
	ErrNoRecords = errors.New("layout: 没有可排版的记录")
	// ErrNoMeasurer 表示调用方没有提供文字测量实现。
	ErrNoMeasurer = errors.New("layout: 缺少 Measurer")
)

// Build 把有序记录排成逐页的版面计划。记录必须按分组键连续排列，这里不会重新排序。
// 每个 Section 从新页开始；类目变化时先插入该类目的封面（如有配置）。
func Build(records []catalog.Record, opts BuildOptions) (*Result, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if opts.Measurer == nil {
		return nil, ErrNoMeasurer
	}
	profile := opts.Profile
	if profile == nil {
		profile = DefaultProfile()
	}
	cfg := profile.Config
	c := &composer{
		cfg:        cfg,
		res:        profile.Resources,
		measurer:   opts.Measurer,
		images:     opts.Images,
		footerLeft: binding.Interpolate(cfg.Footer.Template, binding.FromMap(records[0].Attrs)),
	}

	if cfg.Covers.Main != "" {
		c.cover(cfg.Covers.Main, "main")
	}
	sections := DetectSections(records)
	prevCategory := ""
	for i := 0; i < len(sections); {
		sec := sections[i]
		category := catalog.Upper(sec.Category)
		if i == 0 || category != prevCategory {
			if ref := cfg.Covers.Categories[category]; ref != "" {
				c.cover(ref, sec.Category)
			}
			prevCategory = category
		}
		switch sec.Format {
		case catalog.FormatTable:
			c.composeTable(sec)
			i++
		case catalog.FormatTablePair:
			i += c.composeTablePair(sections, i)
		case catalog.FormatSinglePerPage:
			c.composeSingle(sec)
			i++
		default:
			c.composeMulti(sec)
			i++
		}
	}

	result := &Result{
		Pages:     make([]Page, len(c.pages)),
		Resources: profile.Resources,
		Meta:      profile.Meta,
		Footer:    footerStyle(cfg),
		Sections:  c.sections,
		Warnings:  c.warnings,
	}
	for i, p := range c.pages {
		result.Pages[i] = *p
	}
	return result, nil
}

// footerStyle 把页脚配置换算为页面坐标。
func footerStyle(cfg Config) FooterStyle {
	f := cfg.Footer
	ruleY := cfg.PageHeight - f.RuleY
	return FooterStyle{
		Font:     cfg.Styles.Footer.Font,
		FontSize: ptToMM(cfg.Styles.Footer.Size),
		Color:    cfg.Styles.Footer.Color,
		Rule:     Line{X1: f.RuleX1, Y1: ruleY, X2: f.RuleX2, Y2: ruleY, Color: cfg.Styles.Footer.Color, Width: ptToMM(f.RuleWidth)},
		Baseline: cfg.PageHeight - f.TextY,
		LeftX:    f.LeftX,
		CenterX:  f.CenterX,
		RightX:   f.RightX,
	}
}

// beginSection 记录 Section 摘要，返回其下标，页码在排版过程中补充。
func (c *composer) beginSection(sec Section) int {
	c.sections = append(c.sections, SectionInfo{
		Category:    sec.Category,
		Subcategory: sec.Subcategory,
		Format:      sec.Format.String(),
		Group:       sec.Group,
		Records:     len(sec.Records),
	})
	return len(c.sections) - 1
}

// trackPages 把 from 之后新增的页码记到 Section 摘要中。
func (c *composer) trackPages(idx, from int) {
	for n := from + 1; n <= len(c.pages); n++ {
		c.sections[idx].Pages = append(c.sections[idx].Pages, n)
	}
}

// composeMulti 处理 2/3/4 版式：按分组键分页，整个 Section 共用一份高度规划。
func (c *composer) composeMulti(sec Section) {
	idx := c.beginSection(sec)
	from := len(c.pages)
	p := c.cfg.ParamsFor(sec.Format)
	plan := PlanHeights(p.PerPage, p.Gap, p.Boost, c.cfg.Usable(), c.cfg.HeightParams())
	c.sections[idx].Plan = &plan

	pages := PaginateBy(sec.Records, func(r catalog.Record) string { return r.GroupKey }, p.PerPage)
	top := c.cfg.ContentTop()
	for _, items := range pages {
		c.contentPage(sec)
		for j, rec := range items {
			c.itemBlock(rec, p, plan, top+float64(j)*(plan.Container+plan.Gap))
		}
	}
	c.trackPages(idx, from)
}

// composeSingle 处理 1WP 版式：每条记录独占一页。
func (c *composer) composeSingle(sec Section) {
	idx := c.beginSection(sec)
	from := len(c.pages)
	p := c.cfg.ParamsFor(catalog.FormatSinglePerPage)
	plan := PlanHeights(1, p.Gap, p.Boost, c.cfg.Usable(), c.cfg.HeightParams())
	c.sections[idx].Plan = &plan
	for _, rec := range sec.Records {
		c.contentPage(sec)
		c.singleBlock(rec, p, plan)
	}
	c.trackPages(idx, from)
}

// composeTable 处理 TABLE 版式：一个分组一张表，从新页开始。
func (c *composer) composeTable(sec Section) float64 {
	idx := c.beginSection(sec)
	from := len(c.pages)
	t := c.layoutTable(sec)
	c.sections[idx].Columns = t.plan.Widths
	c.contentPage(sec)
	y := c.placeTable(t, c.cfg.ContentTop())
	c.trackPages(idx, from)
	return y
}

// composeTablePair 处理 TABLE2：当下一个 Section 同为 TABLE2、类目与子类相同，
// 且能完整放进当前页剩余空间时，两张表上下共用一页。返回消耗的 Section 数。
func (c *composer) composeTablePair(sections []Section, i int) int {
	sec := sections[i]
	y := c.composeTable(sec)
	if i+1 >= len(sections) || !pairable(sec, sections[i+1]) {
		c.warn(WarnPairDegraded, "%s: 没有可同页的下一组，单独成页", sectionLabel(sec))
		return 1
	}
	next := sections[i+1]
	t := c.layoutTable(next)
	y += c.cfg.Table.PairSpacer
	if y+t.height(c.cfg) > c.cfg.ContentBottom()+1e-6 {
		c.warn(WarnPairDegraded, "%s: 下一组放不下，改为单独成页", sectionLabel(next))
		return 1
	}
	idx := c.beginSection(next)
	c.sections[idx].Columns = t.plan.Widths
	c.sections[idx].Pages = []int{c.page.Number}
	c.placeTable(t, y)
	return 2
}

func pairable(a, b Section) bool {
	return b.Format == catalog.FormatTablePair &&
		strings.EqualFold(catalog.Upper(a.Category), catalog.Upper(b.Category)) &&
		a.Subcategory == b.Subcategory
}

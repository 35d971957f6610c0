package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteDebugJSON 将完整排版计划输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// PlanSummary 是排版计划的精简视图：每个 Section 的页码、高度规划与列宽，以及全部警告。
type PlanSummary struct {
	Pages    int           `yaml:"pages"`
	Sections []SectionInfo `yaml:"sections"`
	Warnings []Warning     `yaml:"warnings,omitempty"`
}

// Summary 从排版结果提取 PlanSummary。
func (r *Result) Summary() PlanSummary {
	return PlanSummary{Pages: len(r.Pages), Sections: r.Sections, Warnings: r.Warnings}
}

// WritePlan 按扩展名输出计划：.yaml/.yml 写精简摘要，其余写完整 JSON。
func WritePlan(res *Result, path string) error {
	if res == nil {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(res.Summary())
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	default:
		return WriteDebugJSON(res, path)
	}
}

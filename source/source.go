// Package source 负责从表格导出文件（JSON / YAML / CSV）读取商品记录。
package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/folio/catalog"
)

// ErrUnsupportedFormat 表示无法根据扩展名识别记录文件格式。
var ErrUnsupportedFormat = errors.New("不支持的记录文件格式")

// Load 按扩展名读取记录文件并转换为 Record 列表，保持文件中的原始顺序。
func Load(path string) ([]catalog.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取记录文件 %s 失败: %w", path, err)
	}
	var rows []map[string]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		rows, err = ParseJSON(data)
	case ".yaml", ".yml":
		rows, err = ParseYAML(data)
	case ".csv":
		rows, err = ParseCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("解析记录文件 %s 失败: %w", path, err)
	}
	return Records(rows), nil
}

// Records 将行数据逐条转换为 Record，跳过整行为空的记录。
func Records(rows []map[string]string) []catalog.Record {
	out := make([]catalog.Record, 0, len(rows))
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		out = append(out, catalog.FromRow(row))
	}
	return out
}

// ParseJSON 支持顶层数组，或带 records 字段的对象。
func ParseJSON(data []byte) ([]map[string]string, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return rowsFrom(doc)
}

// ParseYAML 与 ParseJSON 接受相同的结构。
func ParseYAML(data []byte) ([]map[string]string, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return rowsFrom(doc)
}

// ParseCSV 读取首行为列名的表格导出。
func ParseCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}
	var rows []map[string]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" || i >= len(rec) {
				continue
			}
			row[name] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowsFrom(doc any) ([]map[string]string, error) {
	var items []any
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		items = v
	case map[string]any:
		inner, ok := v["records"].([]any)
		if !ok {
			return nil, fmt.Errorf("缺少 records 数组")
		}
		items = inner
	default:
		return nil, fmt.Errorf("顶层结构必须是数组或对象，实际为 %T", doc)
	}
	rows := make([]map[string]string, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("第 %d 条记录不是对象", i+1)
		}
		row := make(map[string]string, len(obj))
		for k, val := range obj {
			row[k] = scalarString(val)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// scalarString 将表格单元格的值转换为文本，整数形式的浮点数不带小数部分。
func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func blankRow(row map[string]string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

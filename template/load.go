package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/ByLCY/certkit/dsl"
)

// Format 标识模板的序列化格式。
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatDSL  Format = "cert"
)

// FormatOf 根据扩展名判断格式，未知扩展名按 JSON 处理。
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".cert":
		return FormatDSL
	default:
		return FormatJSON
	}
}

// LoadFile 读取并规范化模板文件。
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取模板失败: %w", err)
	}
	tpl, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("解析模板 %s 失败: %w", path, err)
	}
	if tpl.Name == "" {
		tpl.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return tpl, nil
}

// Parse 按指定格式解码模板并完成规范化。
func Parse(data []byte, format Format) (*Template, error) {
	var (
		tpl *Template
		err error
	)
	switch format {
	case FormatJSON:
		tpl = &Template{}
		err = json.Unmarshal(data, tpl)
	case FormatYAML:
		tpl = &Template{}
		err = yaml.Unmarshal(data, tpl)
	case FormatDSL:
		var doc *dsl.Document
		doc, err = dsl.ParseString("template.cert", string(data))
		if err == nil {
			tpl, err = Compile(doc)
		}
	default:
		return nil, fmt.Errorf("不支持的模板格式: %s", format)
	}
	if err != nil {
		return nil, err
	}
	if err := tpl.Normalize(); err != nil {
		return nil, err
	}
	return tpl, nil
}

// ParseJSON 是 Parse(data, FormatJSON) 的简写。
func ParseJSON(data []byte) (*Template, error) { return Parse(data, FormatJSON) }

package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/certkit/dsl"
)

// 页面块内的简写键，其余键按 `-` 换 `_` 后直接对应 JSON 键。
var pageKeyAliases = map[string]string{
	"background":       "background_image",
	"native_size":      "use_background_size",
	"y_offset":         "global_y_offset",
	"background_color": "background_color",
	"text_color":       "text_color",
	"debug_points":     "debug_points",
}

var debugKinds = map[string]string{
	"grid":        "debug_grid",
	"canvas-grid": "debug_canvas_grid",
	"overlay":     "debug_grid_overlay",
}

var slotNames = map[string]bool{"title": true, "name": true, "school": true, "project": true, "award": true}

var pixelKeys = map[string]bool{"font_size": true, "max_font_size": true, "min_font_size": true, "line_height": true}

// 取值可能引用 resources 中命名颜色的键。
var colorKeys = map[string]bool{"color": true, "text_color": true, "background_color": true}

// Compile 把 .cert 语法树转换为模板。转换先生成与 JSON 模板同形的对象，
// 再复用 JSON 解码，因此两种写法的默认值与容错规则完全一致。
func Compile(doc *dsl.Document) (*Template, error) {
	if doc == nil {
		return nil, fmt.Errorf("模板语法树为空")
	}
	c := compiler{colors: map[string]string{}}
	root := map[string]any{}
	var meta Meta
	pages := 0

	for _, sec := range doc.Sections {
		switch {
		case sec.Meta != nil:
			if err := c.meta(sec.Meta.Block, &meta); err != nil {
				return nil, err
			}
		case sec.Resources != nil:
			if err := c.resources(sec.Resources.Block); err != nil {
				return nil, err
			}
		case sec.Page != nil:
			pages++
			if pages > 1 {
				return nil, fmt.Errorf("模板只能包含一个 page 分区")
			}
			if err := c.page(sec.Page, root); err != nil {
				return nil, err
			}
		}
	}
	if pages == 0 {
		return nil, fmt.Errorf("模板缺少 page 分区")
	}

	data, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("编码模板失败: %w", err)
	}
	tpl := &Template{}
	if err := json.Unmarshal(data, tpl); err != nil {
		return nil, fmt.Errorf("模板字段类型错误: %w", err)
	}
	tpl.Name = doc.Name
	tpl.Meta = meta
	return tpl, nil
}

type compiler struct {
	colors map[string]string
	unit   string
}

func (c *compiler) meta(block *dsl.Block, meta *Meta) error {
	if block == nil {
		return nil
	}
	for _, st := range block.Statements {
		if st.Assignment == nil {
			continue
		}
		v := st.Assignment.Value
		switch normalizeKey(string(st.Assignment.Key)) {
		case "title":
			meta.Title = v.Literal()
		case "author":
			meta.Author = v.Literal()
		case "subject":
			meta.Subject = v.Literal()
		case "creator":
			meta.Creator = v.Literal()
		case "keywords":
			if v.Array != nil {
				for _, item := range v.Array.Values {
					meta.Keywords = append(meta.Keywords, item.Literal())
				}
			} else if s := v.Literal(); s != "" {
				meta.Keywords = append(meta.Keywords, s)
			}
		}
	}
	return nil
}

// resources 目前只识别 `color Name = #hex`。
func (c *compiler) resources(block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, st := range block.Statements {
		cmd := st.Command
		if cmd == nil || cmd.Name != "color" {
			continue
		}
		if len(cmd.Args) != 3 || cmd.Args[1].Value != "=" || cmd.Args[2].Type != "Color" {
			return fmt.Errorf("%s: color 资源格式应为 color <Name> = #hex", cmd.Pos)
		}
		c.colors[cmd.Args[0].Value] = cmd.Args[2].Value
	}
	return nil
}

func (c *compiler) page(p *dsl.PageSection, root map[string]any) error {
	unit := strings.ToLower(p.Spec.Unit)
	root["coord_unit"] = unit
	c.unit = unit
	if len(p.Spec.Params) > 0 {
		root["y_origin"] = strings.ToLower(p.Spec.Params[0].Value)
	}
	if p.Block == nil {
		return nil
	}

	var texts, stamps []any
	for _, st := range p.Block.Statements {
		switch {
		case st.Assignment != nil:
			key := normalizeKey(string(st.Assignment.Key))
			if alias, ok := pageKeyAliases[key]; ok {
				key = alias
			}
			v, err := c.value(key, c.unit, st.Assignment.Value)
			if err != nil {
				return err
			}
			root[key] = v
		case st.Command != nil:
			cmd := st.Command
			unit := c.unit
			if cmd.Name == "slot" {
				// 旧版槽位固定使用 mm
				unit = "mm"
			}
			body, err := c.object(cmd.Block, unit)
			if err != nil {
				return err
			}
			switch cmd.Name {
			case "text":
				texts = append(texts, body)
			case "stamp":
				stamps = append(stamps, body)
			case "stamps":
				if len(cmd.Args) > 0 {
					body["kind"] = cmd.Args[0].Value
				}
				root["stamp_repeat"] = body
			case "debug":
				if len(cmd.Args) == 0 {
					return fmt.Errorf("%s: debug 需要指定 grid/canvas-grid/overlay", cmd.Pos)
				}
				key, ok := debugKinds[cmd.Args[0].Value]
				if !ok {
					return fmt.Errorf("%s: 未知调试层 %q", cmd.Pos, cmd.Args[0].Value)
				}
				if key == "debug_grid_overlay" && len(body) == 0 {
					root[key] = true
				} else {
					root[key] = body
				}
			case "slot":
				if len(cmd.Args) == 0 || !slotNames[cmd.Args[0].Value] {
					return fmt.Errorf("%s: slot 需要 title/name/school/project/award 之一", cmd.Pos)
				}
				root[cmd.Args[0].Value] = body
			default:
				return fmt.Errorf("%s: 未知指令 %q", cmd.Pos, cmd.Name)
			}
		}
	}
	if texts != nil {
		root["texts"] = texts
	}
	if stamps != nil {
		root["stamp_images"] = stamps
	}
	return nil
}

// object 把块内的赋值与文本字面量转为 JSON 对象；文本字面量等价于 text 键。
// 块内声明了 unit 时，数值后缀按该单位校验，否则按 unit 参数。
func (c *compiler) object(block *dsl.Block, unit string) (map[string]any, error) {
	out := map[string]any{}
	if block == nil {
		return out, nil
	}
	unit = blockUnit(block, unit)
	for _, st := range block.Statements {
		switch {
		case st.Assignment != nil:
			key := normalizeKey(string(st.Assignment.Key))
			v, err := c.value(key, unit, st.Assignment.Value)
			if err != nil {
				return nil, err
			}
			out[key] = v
		case st.Text != nil:
			out["text"] = string(st.Text.Value)
		case st.Command != nil:
			return nil, fmt.Errorf("%s: 块内不支持嵌套指令 %q", st.Command.Pos, st.Command.Name)
		}
	}
	return out, nil
}

// blockUnit 返回块内 unit 赋值的单位，没有时返回 def。
func blockUnit(block *dsl.Block, def string) string {
	for _, st := range block.Statements {
		a := st.Assignment
		if a == nil || normalizeKey(string(a.Key)) != "unit" {
			continue
		}
		if u := strings.ToLower(strings.TrimSpace(a.Value.Literal())); u != "" {
			return u
		}
	}
	return def
}

func (c *compiler) value(key, unit string, v *dsl.Value) (any, error) {
	switch {
	case v == nil:
		return nil, nil
	case v.String != nil:
		return string(*v.String), nil
	case v.Number != nil:
		return c.number(key, unit, *v.Number)
	case v.Color != nil:
		return *v.Color, nil
	case v.Array != nil:
		out := make([]any, 0, len(v.Array.Values))
		for _, item := range v.Array.Values {
			x, err := c.value(key, unit, item)
			if err != nil {
				return nil, err
			}
			out = append(out, x)
		}
		return out, nil
	case v.Object != nil:
		out := make(map[string]any, len(v.Object.Entries))
		for _, e := range v.Object.Entries {
			// glyph-dx 的键是字符本身，不做 `-` 替换
			k := string(e.Key)
			if key != "glyph_dx" {
				k = normalizeKey(k)
			}
			x, err := c.value(k, unit, e.Value)
			if err != nil {
				return nil, err
			}
			out[k] = x
		}
		return out, nil
	}

	lit := v.Literal()
	switch lit {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if colorKeys[key] {
		if hex, ok := c.colors[lit]; ok {
			return hex, nil
		}
	}
	if _, err := strconv.ParseFloat(lit, 64); err == nil {
		return json.Number(lit), nil
	}
	return lit, nil
}

// number 去掉与 unit 一致的后缀；后缀与 unit 不一致时报错而不是静默换算。
// 字号与行高始终是像素，允许写 px 后缀。
func (c *compiler) number(key, unit, raw string) (any, error) {
	num := raw
	for _, suf := range []string{"px", "mm"} {
		if strings.HasSuffix(raw, suf) {
			want := unit
			if pixelKeys[key] {
				want = "px"
			}
			if suf != want {
				return nil, fmt.Errorf("%s: 数值 %s 的单位应为 %s", key, raw, want)
			}
			num = strings.TrimSuffix(raw, suf)
			break
		}
	}
	return json.Number(num), nil
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.TrimSpace(k), "-", "_")
}

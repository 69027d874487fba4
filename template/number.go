package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number 是模板中的数值字段：接受 JSON 数字或数字字符串。
// 无法解析的内容保留在 Raw 中且 Valid=false，由布局阶段回退到默认值，而不是在加载时报错。
type Number struct {
	Value float64
	Raw   string
	Set   bool // 字段是否出现
	Valid bool // Raw 是否为有限数字
}

// Num 构造一个有效数值。
func Num(v float64) Number {
	return Number{Value: v, Raw: strconv.FormatFloat(v, 'f', -1, 64), Set: true, Valid: true}
}

// RawNumber 按原文构造数值，解析规则与 JSON 字符串一致。
func RawNumber(raw string) Number {
	var n Number
	n.parse(raw)
	return n
}

// Present 表示字段出现且可用。
func (n Number) Present() bool { return n.Set && n.Valid }

// Malformed 表示字段出现但不是数字。
func (n Number) Malformed() bool { return n.Set && !n.Valid }

// Or 返回数值，缺失或非法时返回 def。
func (n Number) Or(def float64) float64 {
	if n.Present() {
		return n.Value
	}
	return def
}

func (n *Number) parse(raw string) {
	n.Set = true
	n.Raw = raw
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		n.Value = 0
		n.Valid = false
		return
	}
	n.Value = f
	n.Valid = true
}

// UnmarshalJSON 接受 number / "12.5" / null。
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*n = Number{}
			return nil
		}
		n.parse(s)
		return nil
	}
	n.parse(string(data))
	return nil
}

// MarshalJSON 未设置时输出 null，非法值按原文字符串输出。
func (n Number) MarshalJSON() ([]byte, error) {
	switch {
	case !n.Set:
		return []byte("null"), nil
	case !n.Valid:
		return json.Marshal(n.Raw)
	default:
		return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
	}
}

// UnmarshalYAML 实现 yaml.v2 的自定义解码。
func (n *Number) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*n = Number{}
	case int:
		*n = Num(float64(t))
	case int64:
		*n = Num(float64(t))
	case uint64:
		*n = Num(float64(t))
	case float64:
		n.parse(strconv.FormatFloat(t, 'f', -1, 64))
	case string:
		if strings.TrimSpace(t) == "" {
			*n = Number{}
			return nil
		}
		n.parse(t)
	default:
		n.parse(fmt.Sprint(t))
	}
	return nil
}

package binding

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NameSeparator 是多名参赛者之间的分隔符。
const NameSeparator = "、"

// 这些字段名都指向参赛者姓名，兼容历史模板。
var participantAliases = map[string]bool{
	"participants_names": true,
	"participant_names":  true,
	"participant_name":   true,
	"name":               true,
	"winner_name":        true,
	"winners":            true,
	"student_name":       true,
	"student_names":      true,
}

// IsParticipantField 报告字段名是否为参赛者姓名的别名。
func IsParticipantField(field string) bool { return participantAliases[strings.TrimSpace(field)] }

// Resolve 把模板字段名解析为展示文本。未知字段或缺失值返回空串，从不报错。
func Resolve(rec Record, field string) string {
	field = strings.TrimSpace(field)
	if field == "" || rec == nil {
		return ""
	}
	if participantAliases[field] {
		return JoinNames(rec.Participants())
	}
	switch field {
	case "category_task":
		return Text(fmt.Sprintf("%s - %s", lookup(rec, "category"), lookup(rec, "task")))
	case "education_level":
		return strings.TrimSuffix(lookup(rec, field), "组")
	default:
		return lookup(rec, field)
	}
}

// JoinNames 按 SeqNo 排序后用顿号拼接姓名；只有一人时直接返回其姓名。
func JoinNames(ps []Participant) string {
	switch len(ps) {
	case 0:
		return ""
	case 1:
		return Text(ps[0].Name)
	}
	sorted := append([]Participant(nil), ps...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SeqNo < sorted[j].SeqNo })
	names := make([]string, len(sorted))
	for i, p := range sorted {
		names[i] = Text(p.Name)
	}
	return strings.Join(names, NameSeparator)
}

func lookup(rec Record, field string) string {
	v, ok := rec.Field(field)
	if !ok {
		return ""
	}
	return Text(v)
}

// Text 把任意值转为展示文本：nil、NaN 与字面量 "nan" 视为空串，结果做 NFC 规范化。
func Text(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		if math.IsNaN(float64(t)) {
			return ""
		}
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		s = t.String()
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	if IsNaN(s) {
		return ""
	}
	return norm.NFC.String(s)
}

// IsNaN 报告 s 是否为清洗数据遗留的 "nan" 字面量。
func IsNaN(s string) bool { return strings.EqualFold(strings.TrimSpace(s), "nan") }

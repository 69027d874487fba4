package binding

import (
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将固定文本中的 ${field} 替换为记录字段的展示文本，字段名规则与 Resolve 相同。
// 若 rec 为空或字段不存在，则保留原占位符。
func Interpolate(text string, rec Record) string {
	if rec == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		field := strings.TrimSpace(groups[1])
		if field == "" || !known(rec, field) {
			return match
		}
		return Resolve(rec, field)
	})
}

func known(rec Record, field string) bool {
	if participantAliases[field] || field == "category_task" {
		return true
	}
	_, ok := rec.Field(field)
	return ok
}

// lookupPath 沿 a.b[0].c 形式的路径取值，只下探 map[string]any 与 []any。
func lookupPath(v any, path string) (any, bool) {
	keys := pathKeys(path)
	if len(keys) == 0 {
		return nil, false
	}
	for _, key := range keys {
		switch c := v.(type) {
		case map[string]any:
			next, ok := c[key]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(c) {
				return nil, false
			}
			v = c[i]
		default:
			return nil, false
		}
	}
	return v, true
}

// pathKeys 把 a.b[0] 拆成 ["a", "b", "0"]。
func pathKeys(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '.' || r == '[' || r == ']' })
}

package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Black 是默认文字颜色。
var Black = Color{A: 1}

var namedColors = map[string]Color{
	"black": {A: 1},
	"white": {R: 255, G: 255, B: 255, A: 1},
	"red":   {R: 255, A: 1},
	"gray":  {R: 128, G: 128, B: 128, A: 1},
	"grey":  {R: 128, G: 128, B: 128, A: 1},
}

// ParseColor 解析 #rgb、#rrggbb、#rrggbbaa 或常用颜色名。
func ParseColor(value string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(v, "#")
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
		}
	}
	switch len(hex) {
	case 3:
		return Color{
			R: mustHex(strings.Repeat(hex[0:1], 2)),
			G: mustHex(strings.Repeat(hex[1:2], 2)),
			B: mustHex(strings.Repeat(hex[2:3], 2)),
			A: 1,
		}, nil
	case 6:
		return Color{R: mustHex(hex[0:2]), G: mustHex(hex[2:4]), B: mustHex(hex[4:6]), A: 1}, nil
	case 8:
		return Color{
			R: mustHex(hex[0:2]),
			G: mustHex(hex[2:4]),
			B: mustHex(hex[4:6]),
			A: float64(mustHex(hex[6:8])) / 255,
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

// rgba 按 0-1 分量构造颜色，用于调试图层。
func rgba(r, g, b, a float64) Color {
	return Color{R: int(r*255 + 0.5), G: int(g*255 + 0.5), B: int(b*255 + 0.5), A: a}
}

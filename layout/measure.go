package layout

import "strings"

// TextWidth 返回逐字前进宽度之和，多于一个字符时加上 tracking*(字符数-1)。
func TextWidth(m Measurer, font string, size, tracking float64, s string) float64 {
	var w float64
	n := 0
	for _, r := range s {
		w += m.Advance(font, size, r)
		n++
	}
	if n > 1 {
		w += tracking * float64(n-1)
	}
	return w
}

// IsBlank 报告文本是否只含空白或为 "nan" 字面量，这类文本不绘制。
func IsBlank(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.EqualFold(t, "nan")
}

// measure 绑定字体、字号与字距，便于在排版算法中传递。
type measure struct {
	m        Measurer
	font     string
	size     float64
	tracking float64
}

func (ms measure) width(s string) float64 {
	return TextWidth(ms.m, ms.font, ms.size, ms.tracking, s)
}

func (ms measure) advance(r rune) float64 { return ms.m.Advance(ms.font, ms.size, r) }

package layout

import (
	"math"
	"strings"

	"github.com/ByLCY/certkit/template"
)

// wrapDelimiters 按优先级排列：顿号、全角逗号、半角逗号、空格。
// 第二列是重新拼接同一行时使用的连接符。
var wrapDelimiters = [][2]string{
	{"、", "、"},
	{"，", "，"},
	{",", ", "},
	{" ", " "},
}

// SplitWrapTokens 按第一个出现的分隔符切分文本，返回去空后的片段与连接符。
// 不含任何分隔符时整段文本作为一个片段。
func SplitWrapTokens(text string) ([]string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "、"
	}
	for _, d := range wrapDelimiters {
		if !strings.Contains(text, d[0]) {
			continue
		}
		var tokens []string
		for _, t := range strings.Split(text, d[0]) {
			if t = strings.TrimSpace(t); t != "" {
				tokens = append(tokens, t)
			}
		}
		return tokens, d[1]
	}
	return []string{text}, "、"
}

// PackLines 贪心地把片段拼接成行：候选行宽度不超过 width 时继续追加，否则另起一行。
// 单个片段本身超宽时独占一行，不会被拆开。
func PackLines(tokens []string, joiner string, width float64, measure func(string) float64) []string {
	var lines []string
	current := ""
	for _, tok := range tokens {
		candidate := tok
		if current != "" {
			candidate = current + joiner + tok
		}
		if measure(candidate) <= width {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = tok
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// AlignX 返回宽度为 w 的文本在 [x, x+boxWidth] 内按 align 对齐后的起点。
func AlignX(x, boxWidth, w float64, align template.HAlign) float64 {
	switch align {
	case template.AlignLeft:
		return x
	case template.AlignRight:
		return x + boxWidth - w
	default:
		return x + (boxWidth-w)/2
	}
}

// AnchorX 把锚点坐标换算为文本框左边界：center 左移半个框宽，right 左移整个框宽。
func AnchorX(x, boxWidth float64, anchor template.HAlign) float64 {
	switch anchor {
	case template.AlignCenter:
		return x - boxWidth/2
	case template.AlignRight:
		return x - boxWidth
	default:
		return x
	}
}

// AutoSize 从 maxPt 向 minPt 逐个整数字号尝试，返回第一个宽度不超过 width 的字号；
// 都放不下时返回 minPt，空文本直接返回 maxPt。
func AutoSize(text string, width, maxPt, minPt float64, widthAt func(size float64, s string) float64) float64 {
	if text == "" {
		return maxPt
	}
	hi := math.Floor(maxPt)
	lo := math.Floor(minPt)
	for size := hi; size >= lo; size-- {
		if size <= 0 {
			break
		}
		if widthAt(size, text) <= width {
			return size
		}
	}
	return minPt
}

// glyphRun 描述一行文本的字距与逐字偏移。
type glyphRun struct {
	tracking float64
	dx       map[rune]float64
}

// perGlyph 报告是否需要逐字绘制。
func (g glyphRun) perGlyph() bool { return g.tracking != 0 || len(g.dx) > 0 }

// place 计算逐字绘制时每个字符的绝对 X：起点 + 累计前进宽度（含字距）+ 该字符的偏移。
func (g glyphRun) place(ms measure, line string, startX float64) []Glyph {
	runes := []rune(line)
	glyphs := make([]Glyph, 0, len(runes))
	adv := 0.0
	for i, r := range runes {
		glyphs = append(glyphs, Glyph{Text: string(r), X: startX + adv + g.dx[r]})
		adv += ms.advance(r)
		if i < len(runes)-1 {
			adv += g.tracking
		}
	}
	return glyphs
}

// lineRun 对齐单行文本并生成 TextRun。
func lineRun(ms measure, g glyphRun, line string, x, y, boxWidth float64, align template.HAlign, color Color) TextRun {
	w := ms.width(line)
	start := AlignX(x, boxWidth, w, align)
	run := TextRun{
		Content:  line,
		X:        start,
		Y:        y,
		Width:    w,
		Font:     ms.font,
		FontSize: ms.size,
		Color:    color,
	}
	if g.perGlyph() {
		run.Glyphs = g.place(ms, line, start)
	}
	return run
}

// wrapRuns 切分、装行并逐行对齐。第 i 行在 up 方向上移 i*lineHeight，down 方向下移。
// maxLines 大于 0 时截断多余的行。
func wrapRuns(ms measure, g glyphRun, text string, x, y, boxWidth, lineHeight float64, maxLines int, dir template.Direction, align template.HAlign, color Color) []TextRun {
	tokens, joiner := SplitWrapTokens(text)
	if len(tokens) == 0 {
		return nil
	}
	lines := PackLines(tokens, joiner, boxWidth, ms.width)
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	runs := make([]TextRun, 0, len(lines))
	for i, line := range lines {
		dy := float64(i) * lineHeight
		if dir == template.DirectionDown {
			dy = -dy
		}
		runs = append(runs, lineRun(ms, g, line, x, y+dy, boxWidth, align, color))
	}
	return runs
}

package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/ByLCY/certkit/template"
)

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
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

var labelColor = rgba(1, 0, 0, 0.65)

// 网格间距下限，过小的间距会生成海量线段。
const (
	minGridStepPx = 1.0
	minGridStepMm = 1.0
)

// pxGrid 以 stepPx 像素为间距铺满页面，label 为 true 时在每条线旁标注像素坐标。
func pxGrid(layer *Layer, pageW, pageH, stepPx float64, color Color, lineWidth float64, label bool, labelSize float64) {
	if stepPx <= 0 || math.IsNaN(stepPx) {
		return
	}
	step := math.Max(stepPx, minGridStepPx) * PxToPt
	for x := 0.0; x <= pageW+0.01; x += step {
		layer.Lines = append(layer.Lines, Line{X1: x, Y1: 0, X2: x, Y2: pageH, Color: color, Width: lineWidth})
		if label {
			layer.Labels = append(layer.Labels, Label{
				Text: fmt.Sprintf("x=%dpx", int(math.Round(x/PxToPt))),
				X:    x + 2, Y: pageH - 10, Size: labelSize, Color: labelColor,
			})
		}
	}
	for y := 0.0; y <= pageH+0.01; y += step {
		layer.Lines = append(layer.Lines, Line{X1: 0, Y1: y, X2: pageW, Y2: y, Color: color, Width: lineWidth})
		if label {
			layer.Labels = append(layer.Labels, Label{
				Text: fmt.Sprintf("y=%dpx", int(math.Round(y/PxToPt))),
				X:    2, Y: y + 2, Size: labelSize, Color: labelColor,
			})
		}
	}
}

// mmGrid 以毫米为间距绘制网格，线段止于最后一条网格线。
func mmGrid(layer *Layer, pageW, pageH, stepMm float64, color Color, lineWidth float64) {
	if stepMm <= 0 || math.IsNaN(stepMm) {
		return
	}
	step := math.Max(stepMm, minGridStepMm) * MmToPt
	var xs, ys []float64
	for x := 0.0; x < pageW; x += step {
		xs = append(xs, x)
	}
	for y := 0.0; y < pageH; y += step {
		ys = append(ys, y)
	}
	if len(xs) == 0 || len(ys) == 0 {
		return
	}
	top, right := ys[len(ys)-1], xs[len(xs)-1]
	for _, x := range xs {
		layer.Lines = append(layer.Lines, Line{X1: x, Y1: ys[0], X2: x, Y2: top, Color: color, Width: lineWidth})
	}
	for _, y := range ys {
		layer.Lines = append(layer.Lines, Line{X1: xs[0], Y1: y, X2: right, Y2: y, Color: color, Width: lineWidth})
	}
}

// positive 返回有效的正数，否则返回 def。
func positive(n template.Number, def float64) float64 {
	if v := n.Or(def); v > 0 {
		return v
	}
	return def
}

func (b *builder) placeGuides() {
	if g := b.tpl.DebugGrid; g != nil {
		label := g.Label == nil || *g.Label
		pxGrid(&b.page.Guides, b.page.Width, b.page.Height,
			positive(g.StepPx, 100), rgba(1, 0, 0, g.Alpha.Or(0.25)), g.LineWidth.Or(0.5),
			label, positive(g.LabelFontSize, 7))
		b.record(KindDebug, 0, "debug_grid", nil)
	}
	if g := b.tpl.DebugCanvasGrid; g != nil {
		mmGrid(&b.page.Guides, b.page.Width, b.page.Height,
			positive(g.Step, 50), rgba(1, 0, 0, g.Alpha.Or(0.15)), g.LineWidth.Or(0.3))
		b.record(KindDebug, 1, "debug_canvas_grid", nil)
	}
}

func (b *builder) placeOverlay() {
	o := b.tpl.DebugGridOverlay
	if o == nil || !o.Enabled {
		return
	}
	labelSize := positive(o.LabelFontSize, 7)
	pxGrid(&b.page.Overlay, b.page.Width, b.page.Height,
		positive(o.FineStepPx, 10), rgba(0.2, 0.2, 0.2, positive(o.FineAlpha, 0.18)), positive(o.FineLineWidth, 0.35),
		false, labelSize)
	pxGrid(&b.page.Overlay, b.page.Width, b.page.Height,
		positive(o.MainStepPx, 50), rgba(0.15, 0.15, 0.15, positive(o.MainAlpha, 0.45)), positive(o.MainLineWidth, 0.8),
		true, labelSize)
	b.record(KindDebug, 2, "debug_grid_overlay", nil)
}

// markBox 在文本框位置绘制调试外框，并在锚点处绘制十字与圆圈。
// height 为 pt，yShift 为 mm。
func (b *builder) markBox(x, y, width, height, yShiftMm float64) {
	color := rgba(1, 0, 0, 0.6)
	b.page.Marks.Rects = append(b.page.Marks.Rects, Rect{
		X: x, Y: y + yShiftMm*MmToPt, Width: width, Height: height,
		StrokeColor: color, StrokeWidth: 0.8,
	})
	const r = 3.0
	point := rgba(1, 0, 0, 0.9)
	b.page.Marks.Lines = append(b.page.Marks.Lines,
		Line{X1: x - 2*r, Y1: y, X2: x + 2*r, Y2: y, Color: point, Width: 1},
		Line{X1: x, Y1: y - 2*r, X2: x, Y2: y + 2*r, Color: point, Width: 1},
	)
	b.page.Marks.Circles = append(b.page.Marks.Circles, Circle{CX: x, CY: y, R: r, StrokeColor: point, StrokeWidth: 1})
}

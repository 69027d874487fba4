package layout

import "github.com/ByLCY/certkit/template"

// 布局结果统一使用 pt，原点在页面左下角。

// Conversion constants.
const (
	PxToPt = 0.75
	MmToPt = 72.0 / 25.4
	PtToMm = 25.4 / 72.0
)

// A4 页面尺寸（pt）。
const (
	A4Width  = 210 * MmToPt
	A4Height = 297 * MmToPt
)

// ToPoints 按单位把数值换算为 pt；未知单位按 mm 处理。
func ToPoints(v float64, unit template.Unit) float64 {
	if unit == template.UnitPX {
		return v * PxToPt
	}
	return v * MmToPt
}

// TopToBottom 把自顶部起算的像素 Y 坐标换算为自底部起算的 pt 坐标。
func TopToBottom(yFromTopPx, pageHeightPt float64) float64 {
	return pageHeightPt - yFromTopPx*PxToPt
}

// Frame 是某一项生效的坐标约定。
type Frame struct {
	Unit       template.Unit
	Origin     template.Origin
	PageHeight float64 // pt
}

// Len 换算长度（宽度、x、偏移量）。
func (f Frame) Len(v float64) float64 { return ToPoints(v, f.Unit) }

// Y 换算纵坐标。只有 px + top 组合会翻转；mm 模板始终以底部为原点。
func (f Frame) Y(v float64) float64 {
	if f.Unit == template.UnitPX && f.Origin == template.OriginTop {
		return TopToBottom(v, f.PageHeight)
	}
	return f.Len(v)
}

// Flipped 报告该坐标约定是否从顶部起算。
func (f Frame) Flipped() bool {
	return f.Unit == template.UnitPX && f.Origin == template.OriginTop
}

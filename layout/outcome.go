package layout

import "errors"

var (
	// ErrNilTemplate 表示没有提供模板。
	ErrNilTemplate = errors.New("layout: 模板为空")
	// ErrNoMeasurer 表示缺少文本测量后端。
	ErrNoMeasurer = errors.New("layout: 缺少文本测量后端 Measurer")
	// ErrNoFonts 表示缺少字体注册表。
	ErrNoFonts = errors.New("layout: 缺少字体注册表")
	// ErrInvalidPage 表示页面尺寸不是正数。
	ErrInvalidPage = errors.New("layout: 页面尺寸无效")
)

// Status 是单个元素的处理结果。
type Status string

const (
	StatusDrawn    Status = "drawn"
	StatusSkipped  Status = "skipped"  // 按规则不绘制，例如空文本或缺失的图片
	StatusDegraded Status = "degraded" // 已绘制，但部分配置回退为默认值
	StatusFailed   Status = "failed"   // 处理过程中出错，该项被丢弃
)

// Kind 标识元素类别。
type Kind string

const (
	KindBackground Kind = "background"
	KindStamp      Kind = "stamp"
	KindText       Kind = "text"
	KindSlot       Kind = "slot"
	KindDebug      Kind = "debug"
)

// Outcome 记录一个元素的处理结果。单个元素的失败只体现在这里，不会中断整页布局。
type Outcome struct {
	Kind   Kind   `json:"kind"`
	Index  int    `json:"index"`
	Name   string `json:"name,omitempty"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Skipped 返回状态为 skipped 的结果。
func (r *Result) Skipped() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusSkipped {
			out = append(out, o)
		}
	}
	return out
}

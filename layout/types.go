package layout

// 该文件定义布局结果，供渲染与调试 JSON 共用。
// 所有坐标与尺寸单位为 pt，原点在页面左下角；文本 Y 为基线位置。

// Result 保存布局后的页面、逐项处理结果与文档信息。
type Result struct {
	Page     Page         `json:"page"`
	Outcomes []Outcome    `json:"outcomes"`
	Meta     DocumentMeta `json:"meta"`
}

// Page 按绘制顺序保存页面元素：底色、背景、印章、网格、调试框、文本、叠加网格。
type Page struct {
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Fill       *Color     `json:"fill,omitempty"`
	Background *ImageBox  `json:"background,omitempty"`
	Stamps     []ImageBox `json:"stamps,omitempty"`
	Guides     Layer      `json:"guides"`
	Marks      Layer      `json:"marks"`
	Texts      []TextRun  `json:"texts"`
	Overlay    Layer      `json:"overlay"`
}

// Color 采用 0-255 的 RGB 数值，A 为 0-1 的不透明度。
type Color struct {
	R int     `json:"r"`
	G int     `json:"g"`
	B int     `json:"b"`
	A float64 `json:"a"`
}

// ImageBox 用于描述图片位置与尺寸，Path 为已解析的文件路径。
type ImageBox struct {
	Path   string  `json:"path"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextRun 是一行已定位的文本。Glyphs 为空时整行绘制于 (X, Y)；
// 否则逐字绘制，每个字形带有自己的绝对 X。
type TextRun struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"` // 含字距的测量宽度
	Font     string  `json:"font"`
	FontSize float64 `json:"fontSize"`
	Color    Color   `json:"color"`
	Glyphs   []Glyph `json:"glyphs,omitempty"`
}

// Glyph 是逐字绘制时的单个字符。
type Glyph struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
}

// Layer 是调试用的基本图形集合。
type Layer struct {
	Lines   []Line   `json:"lines,omitempty"`
	Rects   []Rect   `json:"rects,omitempty"`
	Circles []Circle `json:"circles,omitempty"`
	Labels  []Label  `json:"labels,omitempty"`
}

// Empty 报告图层是否没有任何元素。
func (l Layer) Empty() bool {
	return len(l.Lines) == 0 && len(l.Rects) == 0 && len(l.Circles) == 0 && len(l.Labels) == 0
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// Rect 表示一个只描边的矩形。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// Circle 表示一个只描边的圆。
type Circle struct {
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	R           float64 `json:"r"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// Label 是网格刻度等调试文字，使用内置字体绘制。
type Label struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Color Color   `json:"color"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

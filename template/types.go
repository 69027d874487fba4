// Package template 定义证书版式模板：坐标单位、背景、文本项、印章与调试叠加层。
// 模板在加载时完成规范化与校验，渲染期间只读。
package template

// Unit 是模板坐标单位。
type Unit string

const (
	UnitMM Unit = "mm"
	UnitPX Unit = "px"
)

// Origin 是 Y 轴原点约定。
type Origin string

const (
	OriginBottom Origin = "bottom"
	OriginTop    Origin = "top"
)

// HAlign 用于文本对齐与文本框水平锚点。
type HAlign string

const (
	AlignLeft   HAlign = "left"
	AlignCenter HAlign = "center"
	AlignRight  HAlign = "right"
)

// VAnchor 是印章的垂直锚点。
type VAnchor string

const (
	AnchorBottom VAnchor = "bottom"
	AnchorCenter VAnchor = "center"
)

// Direction 是多行文本的堆叠方向。
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// StampKind 对应按序号命名的印章图片目录。
type StampKind string

const (
	KindPlayer StampKind = "player"
	KindCoach  StampKind = "coach"
)

// Template 是一张证书的声明式版式。
type Template struct {
	// Name 来自 DSL 头部或文件名；JSON 中的 name 键属于旧版姓名槽位。
	Name string `json:"-" yaml:"-"`
	Meta Meta   `json:"meta,omitempty" yaml:"meta,omitempty"`

	Unit              Unit   `json:"coord_unit" yaml:"coord_unit"`
	Origin            Origin `json:"y_origin" yaml:"y_origin"`
	BackgroundImage   string `json:"background_image,omitempty" yaml:"background_image,omitempty"`
	BackgroundColor   string `json:"background_color,omitempty" yaml:"background_color,omitempty"`
	UseBackgroundSize bool   `json:"use_background_size,omitempty" yaml:"use_background_size,omitempty"`
	GlobalYOffset     Number `json:"global_y_offset" yaml:"global_y_offset"`
	TextColor         string `json:"text_color,omitempty" yaml:"text_color,omitempty"`

	Texts []TextItem `json:"texts,omitempty" yaml:"texts,omitempty"`

	StampDefaults `yaml:",inline"`
	StampImages   []StampSpec  `json:"stamp_images,omitempty" yaml:"stamp_images,omitempty"`
	StampRepeat   *StampRepeat `json:"stamp_repeat,omitempty" yaml:"stamp_repeat,omitempty"`

	DebugGrid        *GridConfig       `json:"debug_grid,omitempty" yaml:"debug_grid,omitempty"`
	DebugCanvasGrid  *CanvasGridConfig `json:"debug_canvas_grid,omitempty" yaml:"debug_canvas_grid,omitempty"`
	DebugGridOverlay *OverlayConfig    `json:"debug_grid_overlay,omitempty" yaml:"debug_grid_overlay,omitempty"`
	DebugPoints      bool              `json:"debug_points,omitempty" yaml:"debug_points,omitempty"`

	// 旧版固定槽位，仅在 Texts 为空时使用（单位固定为 mm，底部原点）。
	Title   *Slot `json:"title,omitempty" yaml:"title,omitempty"`
	Winner  *Slot `json:"name,omitempty" yaml:"name,omitempty"`
	School  *Slot `json:"school,omitempty" yaml:"school,omitempty"`
	Project *Slot `json:"project,omitempty" yaml:"project,omitempty"`
	Award   *Slot `json:"award,omitempty" yaml:"award,omitempty"`
}

// Meta 写入 PDF 文档信息。
type Meta struct {
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Author   string   `json:"author,omitempty" yaml:"author,omitempty"`
	Subject  string   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Creator  string   `json:"creator,omitempty" yaml:"creator,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// StampDefaults 是模板级印章默认值，同时兼容旧版单印章写法。
type StampDefaults struct {
	StampImage      string  `json:"stamp_image,omitempty" yaml:"stamp_image,omitempty"`
	StampWidth      Number  `json:"stamp_width" yaml:"stamp_width"`
	StampHeight     Number  `json:"stamp_height" yaml:"stamp_height"`
	StampX          Number  `json:"stamp_x" yaml:"stamp_x"`
	StampY          Number  `json:"stamp_y" yaml:"stamp_y"`
	StampCenterX    bool    `json:"stamp_center_x,omitempty" yaml:"stamp_center_x,omitempty"`
	StampYAnchor    VAnchor `json:"stamp_y_anchor,omitempty" yaml:"stamp_y_anchor,omitempty"`
	StampKeepAspect bool    `json:"stamp_keep_aspect,omitempty" yaml:"stamp_keep_aspect,omitempty"`
}

// TextItem 描述一个文本项：固定文本或字段引用。
type TextItem struct {
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	Font  string `json:"font,omitempty" yaml:"font,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`

	// 字号与行高始终按设备像素解释。
	FontSize    Number `json:"font_size" yaml:"font_size"`
	MaxFontSize Number `json:"max_font_size" yaml:"max_font_size"`
	MinFontSize Number `json:"min_font_size" yaml:"min_font_size"`
	AutoSize    bool   `json:"auto_size,omitempty" yaml:"auto_size,omitempty"`

	X       Number `json:"x" yaml:"x"`
	Y       Number `json:"y" yaml:"y"`
	Width   Number `json:"width" yaml:"width"`
	YOffset Number `json:"y_offset" yaml:"y_offset"`
	XAnchor HAlign `json:"x_anchor,omitempty" yaml:"x_anchor,omitempty"`
	Anchor  HAlign `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Align   HAlign `json:"align,omitempty" yaml:"align,omitempty"`

	Wrap       bool      `json:"wrap,omitempty" yaml:"wrap,omitempty"`
	MaxLines   Number    `json:"max_lines" yaml:"max_lines"`
	LineHeight Number    `json:"line_height" yaml:"line_height"`
	Direction  Direction `json:"direction,omitempty" yaml:"direction,omitempty"`

	CharSpace Number            `json:"char_space" yaml:"char_space"`
	GlyphDX   map[string]Number `json:"glyph_dx,omitempty" yaml:"glyph_dx,omitempty"`

	Unit   Unit   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Origin Origin `json:"y_origin,omitempty" yaml:"y_origin,omitempty"`

	DebugPoint     bool   `json:"debug_point,omitempty" yaml:"debug_point,omitempty"`
	DebugBoxHeight Number `json:"debug_box_height" yaml:"debug_box_height"`
	DebugBoxYShift Number `json:"debug_box_y_shift" yaml:"debug_box_y_shift"`
}

// StampSpec 描述单个印章。Image 不存在时按 Fallbacks 顺序取第一个存在的文件。
type StampSpec struct {
	Image          string   `json:"image,omitempty" yaml:"image,omitempty"`
	Path           string   `json:"path,omitempty" yaml:"path,omitempty"`
	FallbackImage  string   `json:"fallback_image,omitempty" yaml:"fallback_image,omitempty"`
	FallbackImages []string `json:"fallback_images,omitempty" yaml:"fallback_images,omitempty"`

	Width      Number  `json:"width" yaml:"width"`
	Height     Number  `json:"height" yaml:"height"`
	X          Number  `json:"x" yaml:"x"`
	Y          Number  `json:"y" yaml:"y"`
	CenterX    *bool   `json:"center_x,omitempty" yaml:"center_x,omitempty"`
	YAnchor    VAnchor `json:"y_anchor,omitempty" yaml:"y_anchor,omitempty"`
	KeepAspect bool    `json:"keep_aspect,omitempty" yaml:"keep_aspect,omitempty"`

	Unit   Unit   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Origin Origin `json:"y_origin,omitempty" yaml:"y_origin,omitempty"`
}

// Source 返回主图片路径（image 优先于 path）。
func (s StampSpec) Source() string {
	if s.Image != "" {
		return s.Image
	}
	return s.Path
}

// Fallbacks 返回有序的备选图片列表。
func (s StampSpec) Fallbacks() []string {
	if s.FallbackImage != "" {
		return []string{s.FallbackImage}
	}
	return s.FallbackImages
}

// StampRepeat 生成一组以页面水平中心对称分布的印章。
type StampRepeat struct {
	Kind           StampKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Image          string    `json:"image,omitempty" yaml:"image,omitempty"`
	FallbackImages []string  `json:"fallback_images,omitempty" yaml:"fallback_images,omitempty"`

	Count    int     `json:"count,omitempty" yaml:"count,omitempty"`
	Width    Number  `json:"width" yaml:"width"`
	Height   Number  `json:"height" yaml:"height"`
	Gap      Number  `json:"gap" yaml:"gap"`
	DX       Number  `json:"dx" yaml:"dx"`
	Y        Number  `json:"y" yaml:"y"`
	Margin   Number  `json:"margin" yaml:"margin"`
	MinWidth Number  `json:"min_width" yaml:"min_width"`
	YAnchor  VAnchor `json:"y_anchor,omitempty" yaml:"y_anchor,omitempty"`

	KeepAspect bool   `json:"keep_aspect,omitempty" yaml:"keep_aspect,omitempty"`
	Unit       Unit   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Origin     Origin `json:"y_origin,omitempty" yaml:"y_origin,omitempty"`
}

// GridConfig 是像素网格（debug_grid）。
type GridConfig struct {
	StepPx        Number `json:"step_px" yaml:"step_px"`
	Alpha         Number `json:"alpha" yaml:"alpha"`
	LineWidth     Number `json:"line_width" yaml:"line_width"`
	Label         *bool  `json:"label,omitempty" yaml:"label,omitempty"`
	LabelFontSize Number `json:"label_font_size" yaml:"label_font_size"`
}

// CanvasGridConfig 是毫米网格（debug_canvas_grid）。
type CanvasGridConfig struct {
	Step      Number `json:"step" yaml:"step"`
	Alpha     Number `json:"alpha" yaml:"alpha"`
	LineWidth Number `json:"line_width" yaml:"line_width"`
}

// OverlayConfig 是文字之后绘制的双层网格（debug_grid_overlay），JSON 中可写 true 或对象。
type OverlayConfig struct {
	Enabled       bool   `json:"-" yaml:"-"`
	FineStepPx    Number `json:"fine_step_px" yaml:"fine_step_px"`
	MainStepPx    Number `json:"main_step_px" yaml:"main_step_px"`
	FineAlpha     Number `json:"fine_alpha" yaml:"fine_alpha"`
	MainAlpha     Number `json:"main_alpha" yaml:"main_alpha"`
	FineLineWidth Number `json:"fine_line_width" yaml:"fine_line_width"`
	MainLineWidth Number `json:"main_line_width" yaml:"main_line_width"`
	LabelFontSize Number `json:"label_font_size" yaml:"label_font_size"`
}

// Slot 是旧版固定槽位（mm，自动字号，居中）。
type Slot struct {
	Text        string `json:"text,omitempty" yaml:"text,omitempty"`
	Font        string `json:"font,omitempty" yaml:"font,omitempty"`
	X           Number `json:"x" yaml:"x"`
	Y           Number `json:"y" yaml:"y"`
	Width       Number `json:"width" yaml:"width"`
	MaxFontSize Number `json:"max_font_size" yaml:"max_font_size"`
	MinFontSize Number `json:"min_font_size" yaml:"min_font_size"`
}

package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownUnit 表示模板级 coord_unit 不是 mm 或 px。
	ErrUnknownUnit = errors.New("template: 未知坐标单位")
	// ErrUnknownOrigin 表示模板级 y_origin 不是 top 或 bottom。
	ErrUnknownOrigin = errors.New("template: 未知 Y 轴原点")
	// ErrEmptyTemplate 表示模板既没有文本、槽位、印章，也没有背景。
	ErrEmptyTemplate = errors.New("template: 模板为空")
)

// MaxRepeatCount 是 stamp_repeat 允许的最大印章数量。
const MaxRepeatCount = 20

// Normalize 统一大小写、补全默认值并把模板级默认值下沉到各项，然后校验模板形状。
// 项级的非法枚举回退为默认值；只有模板级单位/原点非法或模板为空时返回错误。
func (t *Template) Normalize() error {
	t.Unit = Unit(lower(string(t.Unit)))
	switch t.Unit {
	case "":
		t.Unit = UnitMM
	case UnitMM, UnitPX:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownUnit, t.Unit)
	}
	t.Origin = Origin(lower(string(t.Origin)))
	switch t.Origin {
	case "":
		t.Origin = OriginBottom
	case OriginBottom, OriginTop:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOrigin, t.Origin)
	}

	t.BackgroundImage = strings.TrimSpace(t.BackgroundImage)
	t.StampImage = strings.TrimSpace(t.StampImage)
	t.StampYAnchor = normalizeVAnchor(t.StampYAnchor, AnchorBottom)

	for i := range t.Texts {
		t.Texts[i].normalize(t)
	}
	for i := range t.StampImages {
		t.StampImages[i].normalize(t)
	}
	if t.StampRepeat != nil {
		t.StampRepeat.normalize(t)
	}
	return t.Validate()
}

// Validate 检查模板是否至少声明了一种可绘制内容。
func (t *Template) Validate() error {
	if t == nil {
		return ErrEmptyTemplate
	}
	if len(t.Texts) > 0 || t.HasSlots() || len(t.StampImages) > 0 || t.StampRepeat != nil ||
		t.StampImage != "" || t.BackgroundImage != "" || t.BackgroundColor != "" {
		return nil
	}
	return ErrEmptyTemplate
}

// HasSlots 表示模板声明了任一旧版固定槽位。
func (t *Template) HasSlots() bool {
	return t.Title != nil || t.Winner != nil || t.School != nil || t.Project != nil || t.Award != nil
}

func (it *TextItem) normalize(t *Template) {
	it.Unit = Unit(lower(string(it.Unit)))
	if it.Unit != UnitMM && it.Unit != UnitPX {
		it.Unit = t.Unit
	}
	it.Origin = Origin(lower(string(it.Origin)))
	if it.Origin != OriginTop && it.Origin != OriginBottom {
		it.Origin = t.Origin
	}
	if it.XAnchor == "" {
		it.XAnchor = it.Anchor
	}
	it.XAnchor = normalizeHAlign(it.XAnchor, AlignLeft)
	it.Anchor = ""
	it.Align = normalizeHAlign(it.Align, AlignCenter)
	switch Direction(lower(string(it.Direction))) {
	case DirectionDown:
		it.Direction = DirectionDown
	default:
		it.Direction = DirectionUp
	}
	it.Field = strings.TrimSpace(it.Field)
}

func (s *StampSpec) normalize(t *Template) {
	s.Unit = Unit(lower(string(s.Unit)))
	if s.Unit != UnitMM && s.Unit != UnitPX {
		s.Unit = t.Unit
	}
	s.Origin = Origin(lower(string(s.Origin)))
	if s.Origin != OriginTop && s.Origin != OriginBottom {
		s.Origin = t.Origin
	}
	s.YAnchor = normalizeVAnchor(s.YAnchor, t.StampYAnchor)
	if !s.Width.Set {
		s.Width = t.StampWidth
	}
	if !s.Height.Set {
		s.Height = t.StampHeight
	}
	if !s.Y.Set {
		s.Y = t.StampY
	}
	if s.CenterX == nil {
		c := t.StampCenterX
		s.CenterX = &c
	}
	if !s.X.Set && !*s.CenterX {
		s.X = t.StampX
	}
	s.KeepAspect = s.KeepAspect || t.StampKeepAspect
}

func (r *StampRepeat) normalize(t *Template) {
	r.Kind = StampKind(lower(string(r.Kind)))
	if r.Kind != KindPlayer && r.Kind != KindCoach {
		r.Kind = ""
	}
	r.Unit = Unit(lower(string(r.Unit)))
	if r.Unit != UnitMM && r.Unit != UnitPX {
		r.Unit = t.Unit
	}
	r.Origin = Origin(lower(string(r.Origin)))
	if r.Origin != OriginTop && r.Origin != OriginBottom {
		r.Origin = t.Origin
	}
	r.YAnchor = normalizeVAnchor(r.YAnchor, t.StampYAnchor)
	switch {
	case r.Count < 1:
		r.Count = 1
	case r.Count > MaxRepeatCount:
		r.Count = MaxRepeatCount
	}
	if !r.Width.Set {
		r.Width = t.StampWidth
	}
	if !r.Height.Set {
		r.Height = t.StampHeight
	}
	if !r.Y.Set {
		r.Y = t.StampY
	}
	r.KeepAspect = r.KeepAspect || t.StampKeepAspect
}

func normalizeHAlign(a HAlign, def HAlign) HAlign {
	switch HAlign(lower(string(a))) {
	case AlignLeft:
		return AlignLeft
	case AlignCenter:
		return AlignCenter
	case AlignRight:
		return AlignRight
	default:
		return def
	}
}

func normalizeVAnchor(a VAnchor, def VAnchor) VAnchor {
	switch VAnchor(lower(string(a))) {
	case AnchorBottom:
		return AnchorBottom
	case AnchorCenter:
		return AnchorCenter
	default:
		return def
	}
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Clone 返回深拷贝，调用方可以在副本上注入印章等配置而不影响共享模板。
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	c := *t
	c.Meta.Keywords = append([]string(nil), t.Meta.Keywords...)
	if t.Texts != nil {
		c.Texts = make([]TextItem, len(t.Texts))
		for i, it := range t.Texts {
			if it.GlyphDX != nil {
				m := make(map[string]Number, len(it.GlyphDX))
				for k, v := range it.GlyphDX {
					m[k] = v
				}
				it.GlyphDX = m
			}
			c.Texts[i] = it
		}
	}
	if t.StampImages != nil {
		c.StampImages = make([]StampSpec, len(t.StampImages))
		for i, s := range t.StampImages {
			s.FallbackImages = append([]string(nil), s.FallbackImages...)
			if s.CenterX != nil {
				v := *s.CenterX
				s.CenterX = &v
			}
			c.StampImages[i] = s
		}
	}
	c.StampRepeat = clonePtr(t.StampRepeat)
	if c.StampRepeat != nil {
		c.StampRepeat.FallbackImages = append([]string(nil), t.StampRepeat.FallbackImages...)
	}
	c.DebugGrid = clonePtr(t.DebugGrid)
	c.DebugCanvasGrid = clonePtr(t.DebugCanvasGrid)
	c.DebugGridOverlay = clonePtr(t.DebugGridOverlay)
	c.Title = clonePtr(t.Title)
	c.Winner = clonePtr(t.Winner)
	c.School = clonePtr(t.School)
	c.Project = clonePtr(t.Project)
	c.Award = clonePtr(t.Award)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// UnmarshalJSON 接受 true/false 或对象。
func (o *OverlayConfig) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*o = OverlayConfig{Enabled: b}
		return nil
	}
	type plain OverlayConfig
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("debug_grid_overlay 需要布尔值或对象: %w", err)
	}
	*o = OverlayConfig(p)
	o.Enabled = true
	return nil
}

// UnmarshalYAML 与 UnmarshalJSON 语义一致。
func (o *OverlayConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var b bool
	if err := unmarshal(&b); err == nil {
		*o = OverlayConfig{Enabled: b}
		return nil
	}
	type plain OverlayConfig
	var p plain
	if err := unmarshal(&p); err != nil {
		return fmt.Errorf("debug_grid_overlay 需要布尔值或对象: %w", err)
	}
	*o = OverlayConfig(p)
	o.Enabled = true
	return nil
}

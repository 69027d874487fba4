package template

import (
	"fmt"
	"math"
)

// DefaultTemplate 返回没有配置模板时使用的旧版槽位模板（mm，底部原点，A4）。
func DefaultTemplate() *Template {
	slot := func(text string, y, maxSize, minSize float64, font string) *Slot {
		return &Slot{
			Text:        text,
			Font:        font,
			X:           Num(50),
			Y:           Num(y),
			Width:       Num(100),
			MaxFontSize: Num(maxSize),
			MinFontSize: Num(minSize),
		}
	}
	t := &Template{
		Name:    "default",
		Unit:    UnitMM,
		Origin:  OriginBottom,
		Title:   slot("获奖证书", 200, 32, 16, "黑体"),
		Winner:  slot("", 160, 24, 12, "宋体"),
		School:  slot("", 130, 20, 10, "宋体"),
		Project: slot("", 100, 18, 10, "宋体"),
		Award:   slot("", 70, 22, 12, "华文楷体"),
	}
	if err := t.Normalize(); err != nil {
		panic(fmt.Sprintf("template: 内置默认模板无效: %v", err))
	}
	return t
}

// DefaultRepeat 返回选手/辅导员证书底部的六枚对称印章配置。
// 宽度不写死，由背景图像素宽度推算。
func DefaultRepeat(kind StampKind) *StampRepeat {
	r := &StampRepeat{
		Kind:       kind,
		Count:      6,
		Margin:     Num(80),
		Unit:       UnitPX,
		Origin:     OriginBottom,
		YAnchor:    AnchorCenter,
		KeepAspect: true,
	}
	switch kind {
	case KindCoach:
		r.Gap, r.Y, r.DX, r.MinWidth = Num(20), Num(170), Num(70), Num(50)
	default:
		r.Kind = KindPlayer
		r.Gap, r.Y, r.DX, r.MinWidth = Num(30), Num(140), Num(68), Num(60)
	}
	return r
}

// WithRepeat 返回替换了印章配置的副本：按 kind 生成的印章组取代 stamp_images。
// 模板已声明 stamp_repeat 时保持原样。
func (t *Template) WithRepeat(kind StampKind) *Template {
	c := t.Clone()
	if c.StampRepeat != nil {
		return c
	}
	c.StampImages = nil
	c.StampRepeat = DefaultRepeat(kind)
	c.StampRepeat.normalize(c)
	return c
}

// CoachAwardText 是辅导员证书固定显示的获奖级别。
const CoachAwardText = "优秀辅导员"

// WithCoachAward 返回副本，其中第一个获奖级别文本项（field 为 award_level 或文本为“优秀辅导员”）
// 改为辅导员证书的排版：字号加 24px、y 加 35、字间距 -1.2，并对个别字做水平微调。
func (t *Template) WithCoachAward() *Template {
	c := t.Clone()
	for i := range c.Texts {
		it := &c.Texts[i]
		if it.Field != "award_level" && it.Text != CoachAwardText {
			continue
		}
		if it.FontSize.Malformed() {
			it.FontSize = Num(140)
		} else {
			it.FontSize = Num(math.Trunc(it.FontSize.Or(0)) + 24)
		}
		if !it.Y.Malformed() {
			it.Y = Num(it.Y.Or(0) + 35)
		}
		it.GlyphDX = map[string]Number{"优": Num(20), "秀": Num(10), "导": Num(-10), "员": Num(-20)}
		it.CharSpace = Num(-1.2)
		break
	}
	return c
}

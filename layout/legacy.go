package layout

import (
	"github.com/ByLCY/certkit/binding"
	"github.com/ByLCY/certkit/template"
)

// legacySlot 描述一个旧版固定槽位：文本来源与默认字号范围（像素）。
type legacySlot struct {
	name     string
	slot     *template.Slot
	field    string // 为空表示只使用槽位自身的 text
	max, min float64
}

func (b *builder) legacySlots() []legacySlot {
	t := b.tpl
	return []legacySlot{
		{name: "title", slot: t.Title, max: 32, min: 16},
		{name: "name", slot: t.Winner, field: "participants_names", max: 24, min: 12},
		{name: "school", slot: t.School, field: "school_name", max: 20, min: 10},
		{name: "project", slot: t.Project, field: "category_task", max: 18, min: 10},
		{name: "award", slot: t.Award, field: "award_level", max: 22, min: 12},
	}
}

// placeSlots 绘制旧版槽位：mm 坐标、底部原点、自动字号并在框内居中。
func (b *builder) placeSlots() {
	fr := b.frame(template.UnitMM, template.OriginBottom)
	for i, ls := range b.legacySlots() {
		if ls.slot == nil {
			continue
		}
		b.guard(KindSlot, i, ls.name, func() { b.placeSlot(i, ls, fr) })
	}
}

func (b *builder) placeSlot(idx int, ls legacySlot, fr Frame) {
	s := ls.slot
	text := binding.Text(binding.Interpolate(s.Text, b.rec))
	if text == "" && ls.field != "" {
		text = binding.Resolve(b.rec, ls.field)
	}
	if IsBlank(text) {
		b.skip(KindSlot, idx, ls.name, "文本为空")
		return
	}
	degraded := b.checkNumbers(KindSlot, idx, ls.name, map[string]template.Number{
		"x": s.X, "y": s.Y, "width": s.Width, "max_font_size": s.MaxFontSize, "min_font_size": s.MinFontSize,
	})
	x, y, width := fr.Len(s.X.Or(0)), fr.Y(s.Y.Or(0)), fr.Len(s.Width.Or(0))
	ms := measure{m: b.opts.Measurer, font: b.opts.Fonts.ResolveFor(s.Font, text)}
	maxPt := positive(s.MaxFontSize, ls.max) * PxToPt
	minPt := positive(s.MinFontSize, ls.min) * PxToPt
	ms.size = AutoSize(text, width, maxPt, minPt, func(size float64, str string) float64 {
		return TextWidth(ms.m, ms.font, size, 0, str)
	})
	b.page.Texts = append(b.page.Texts, lineRun(ms, glyphRun{}, text, x, y, width, template.AlignCenter, b.textColor))
	b.record(KindSlot, idx, ls.name, degraded)
}

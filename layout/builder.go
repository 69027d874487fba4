package layout

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/certkit/assets"
	"github.com/ByLCY/certkit/binding"
	"github.com/ByLCY/certkit/template"
)

// 文本默认值（像素）。
const (
	defaultFontSizePx   = 16.0
	defaultAutoMinPx    = 12.0
	lineHeightFactor    = 1.25
	defaultDebugBoxHigh = 10.0 // pt
)

// Build 根据模板与记录生成单页布局：底色、背景、印章、网格、文本与叠加网格。
// 单个元素的问题只记录在 Result.Outcomes 中；只有模板为空、缺少依赖或页面尺寸无效时返回错误。
func Build(tpl *template.Template, rec binding.Record, opts BuildOptions) (*Result, error) {
	if tpl == nil {
		return nil, ErrNilTemplate
	}
	if opts.Measurer == nil {
		return nil, ErrNoMeasurer
	}
	if opts.Fonts == nil {
		return nil, ErrNoFonts
	}

	b := &builder{tpl: tpl, rec: rec, opts: opts, log: OrNop(opts.Logger)}
	if err := b.resolvePage(); err != nil {
		return nil, err
	}
	b.placeFill()
	b.placeBackground()
	b.placeStamps()
	b.placeGuides()
	if len(tpl.Texts) > 0 {
		b.placeTexts()
	} else {
		b.placeSlots()
	}
	b.placeOverlay()

	return &Result{
		Page:     b.page,
		Outcomes: b.outcomes,
		Meta:     collectMeta(tpl),
	}, nil
}

type builder struct {
	tpl  *template.Template
	rec  binding.Record
	opts BuildOptions
	log  *slog.Logger

	page      Page
	outcomes  []Outcome
	bgPath    string  // 已解析的背景路径，不存在时为空
	bgWidthPx float64 // 背景像素宽度，未知时为 0
	textColor Color
	yOffset   float64 // global_y_offset（pt）
}

func (b *builder) frame(unit template.Unit, origin template.Origin) Frame {
	return Frame{Unit: unit, Origin: origin, PageHeight: b.page.Height}
}

// resolvePage 确定页面尺寸。必须先于其他坐标换算完成，因为 top 原点的翻转依赖页面高度。
func (b *builder) resolvePage() error {
	b.page.Width, b.page.Height = A4Width, A4Height
	if bg := b.tpl.BackgroundImage; bg != "" {
		if p, ok := b.opts.Assets.FirstExisting(bg); ok {
			b.bgPath = p
			if w, h, err := b.imageSize(p); err == nil {
				b.bgWidthPx = float64(w)
				if b.tpl.UseBackgroundSize {
					b.page.Width, b.page.Height = float64(w)*PxToPt, float64(h)*PxToPt
				}
			} else {
				b.log.Warn("读取背景尺寸失败，使用 A4", "path", p, "err", err)
			}
		}
	}
	if b.page.Width <= 0 || b.page.Height <= 0 {
		return fmt.Errorf("%w: %.2fx%.2f", ErrInvalidPage, b.page.Width, b.page.Height)
	}

	b.textColor = Black
	if c := strings.TrimSpace(b.tpl.TextColor); c != "" {
		if parsed, err := ParseColor(c); err == nil {
			b.textColor = parsed
		} else {
			b.degrade(KindText, -1, "text_color", err.Error())
		}
	}
	if g := b.tpl.GlobalYOffset; g.Malformed() {
		b.degrade(KindText, -1, "global_y_offset", fmt.Sprintf("非数字 %q，按 0 处理", g.Raw))
	}
	b.yOffset = ToPoints(b.tpl.GlobalYOffset.Or(0), b.tpl.Unit)
	return nil
}

func (b *builder) placeFill() {
	c := strings.TrimSpace(b.tpl.BackgroundColor)
	if c == "" {
		return
	}
	fill, err := ParseColor(c)
	if err != nil {
		b.skip(KindBackground, 0, "background_color", err.Error())
		return
	}
	b.page.Fill = &fill
}

func (b *builder) placeBackground() {
	bg := b.tpl.BackgroundImage
	if bg == "" {
		return
	}
	if b.bgPath == "" {
		b.skip(KindBackground, 1, bg, "图片不存在")
		return
	}
	b.page.Background = &ImageBox{Path: b.bgPath, Width: b.page.Width, Height: b.page.Height}
	b.record(KindBackground, 1, bg, nil)
}

func (b *builder) placeTexts() {
	for i := range b.tpl.Texts {
		it := &b.tpl.Texts[i]
		name := it.Field
		if name == "" {
			name = it.Text
		}
		b.guard(KindText, i, name, func() { b.placeText(i, it, name) })
	}
}

func (b *builder) placeText(idx int, it *template.TextItem, name string) {
	fr := b.frame(it.Unit, it.Origin)
	degraded := b.checkNumbers(KindText, idx, name, map[string]template.Number{
		"x": it.X, "y": it.Y, "width": it.Width, "y_offset": it.YOffset,
		"font_size": it.FontSize, "max_font_size": it.MaxFontSize, "min_font_size": it.MinFontSize,
		"line_height": it.LineHeight, "max_lines": it.MaxLines, "char_space": it.CharSpace,
		"debug_box_height": it.DebugBoxHeight, "debug_box_y_shift": it.DebugBoxYShift,
	})

	width := fr.Len(it.Width.Or(0))
	x := AnchorX(fr.Len(it.X.Or(0)), width, it.XAnchor)
	y := fr.Y(it.Y.Or(0)) + fr.Len(it.YOffset.Or(0)) + b.yOffset

	if b.tpl.DebugPoints || it.DebugPoint {
		b.markBox(x, y, width, it.DebugBoxHeight.Or(defaultDebugBoxHigh), it.DebugBoxYShift.Or(0))
	}

	var text string
	if it.Field != "" {
		text = binding.Resolve(b.rec, it.Field)
	} else {
		text = binding.Text(binding.Interpolate(it.Text, b.rec))
	}
	if IsBlank(text) {
		b.skip(KindText, idx, name, "文本为空")
		return
	}

	color := b.textColor
	if c := strings.TrimSpace(it.Color); c != "" {
		if parsed, err := ParseColor(c); err == nil {
			color = parsed
		} else {
			degraded = append(degraded, "color")
		}
	}

	dx, bad := glyphOffsets(it.GlyphDX, fr)
	degraded = append(degraded, bad...)
	g := glyphRun{tracking: fr.Len(it.CharSpace.Or(0)), dx: dx}
	ms := measure{m: b.opts.Measurer, font: b.opts.Fonts.ResolveFor(it.Font, text), tracking: g.tracking}

	switch {
	case it.Wrap:
		ms.size = positive(it.FontSize, positive(it.MaxFontSize, defaultFontSizePx)) * PxToPt
		lh := positive(it.LineHeight, 0) * PxToPt
		if lh == 0 {
			lh = ms.size * lineHeightFactor
		}
		runs := wrapRuns(ms, g, text, x, y, width, lh, int(it.MaxLines.Or(0)), it.Direction, it.Align, color)
		if len(runs) == 0 {
			b.skip(KindText, idx, name, "文本为空")
			return
		}
		b.page.Texts = append(b.page.Texts, runs...)
	case it.AutoSize:
		maxPt := positive(it.MaxFontSize, defaultFontSizePx) * PxToPt
		minPt := positive(it.MinFontSize, defaultAutoMinPx) * PxToPt
		ms.size = AutoSize(text, width, maxPt, minPt, func(size float64, s string) float64 {
			return TextWidth(ms.m, ms.font, size, ms.tracking, s)
		})
		b.page.Texts = append(b.page.Texts, lineRun(ms, g, text, x, y, width, it.Align, color))
	default:
		ms.size = positive(it.FontSize, positive(it.MaxFontSize, defaultFontSizePx)) * PxToPt
		b.page.Texts = append(b.page.Texts, lineRun(ms, g, text, x, y, width, it.Align, color))
	}
	b.record(KindText, idx, name, degraded)
}

// glyphOffsets 把逐字偏移换算为 pt。键按 NFC 规范化后必须是单个字符，其他键被忽略；
// 非数字的值按 0 处理并返回对应键名。
func glyphOffsets(raw map[string]template.Number, fr Frame) (map[rune]float64, []string) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[rune]float64, len(raw))
	var bad []string
	for k, v := range raw {
		runes := []rune(norm.NFC.String(k))
		if len(runes) != 1 {
			continue
		}
		if v.Malformed() {
			bad = append(bad, "glyph_dx["+k+"]")
		}
		out[runes[0]] = fr.Len(v.Or(0))
	}
	sort.Strings(bad)
	return out, bad
}

// checkNumbers 返回出现但无法解析的数值字段名，并逐个记录日志。
func (b *builder) checkNumbers(kind Kind, idx int, name string, fields map[string]template.Number) []string {
	var bad []string
	for k, n := range fields {
		if n.Malformed() {
			bad = append(bad, k)
		}
	}
	sort.Strings(bad)
	for _, k := range bad {
		b.log.Warn("数值字段无法解析，使用默认值", "kind", kind, "index", idx, "name", name, "field", k, "raw", fields[k].Raw)
	}
	return bad
}

func (b *builder) imageSize(resolved string) (int, int, error) {
	return assets.ImageSize(resolved)
}

// guard 在元素边界恢复 panic，使单个元素的异常不会中断整页布局。
func (b *builder) guard(kind Kind, idx int, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn("元素处理失败", "kind", kind, "index", idx, "reason", r)
			b.outcomes = append(b.outcomes, Outcome{Kind: kind, Index: idx, Name: name, Status: StatusFailed, Reason: fmt.Sprint(r)})
		}
	}()
	fn()
}

func (b *builder) skip(kind Kind, idx int, name, reason string) {
	b.log.Warn("跳过元素", "kind", kind, "index", idx, "name", name, "reason", reason)
	b.outcomes = append(b.outcomes, Outcome{Kind: kind, Index: idx, Name: name, Status: StatusSkipped, Reason: reason})
}

func (b *builder) degrade(kind Kind, idx int, name, reason string) {
	b.log.Warn("配置回退为默认值", "kind", kind, "index", idx, "name", name, "reason", reason)
	b.outcomes = append(b.outcomes, Outcome{Kind: kind, Index: idx, Name: name, Status: StatusDegraded, Reason: reason})
}

// record 记录已绘制的元素；degraded 非空时状态为 degraded。
func (b *builder) record(kind Kind, idx int, name string, degraded []string) {
	if len(degraded) > 0 {
		b.outcomes = append(b.outcomes, Outcome{
			Kind: kind, Index: idx, Name: name, Status: StatusDegraded,
			Reason: "以下字段使用默认值: " + strings.Join(degraded, ", "),
		})
		return
	}
	b.outcomes = append(b.outcomes, Outcome{Kind: kind, Index: idx, Name: name, Status: StatusDrawn})
}

func collectMeta(tpl *template.Template) DocumentMeta {
	meta := DocumentMeta{
		Title:    tpl.Meta.Title,
		Author:   tpl.Meta.Author,
		Subject:  tpl.Meta.Subject,
		Creator:  tpl.Meta.Creator,
		Keywords: append([]string(nil), tpl.Meta.Keywords...),
	}
	if meta.Title == "" {
		meta.Title = tpl.Name
	}
	if meta.Creator == "" {
		meta.Creator = "certkit"
	}
	return meta
}

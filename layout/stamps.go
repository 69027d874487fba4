package layout

import (
	"fmt"
	"math"
	"path"
	"strconv"

	"github.com/ByLCY/certkit/template"
)

const (
	defaultRepeatMargin   = 80.0  // px
	defaultRepeatMinWidth = 60.0  // px
	unknownRepeatWidth    = 120.0 // px，背景宽度未知时使用
)

// RepeatOffsets 返回一组印章相对页面水平中心的左边界偏移：
// 起点为 -总宽/2 再加 dx，第 i 枚位于 起点 + i*(width+gap)。
func RepeatOffsets(count int, width, gap, dx float64) []float64 {
	if count < 1 {
		return nil
	}
	total := float64(count)*width + float64(count-1)*gap
	start := -total/2 + dx
	out := make([]float64, count)
	for i := range out {
		out[i] = start + float64(i)*(width+gap)
	}
	return out
}

// RepeatWidth 由背景像素宽度推算单枚印章宽度（px）：
// max(minWidth, floor((bgWidth - 2*margin - gap*(count-1)) / count))。bgWidth 未知时返回 120。
func RepeatWidth(bgWidthPx, margin, gap, minWidth float64, count int) float64 {
	if bgWidthPx <= 0 || count < 1 {
		return unknownRepeatWidth
	}
	w := math.Floor((bgWidthPx - 2*margin - gap*float64(count-1)) / float64(count))
	return math.Max(minWidth, w)
}

// stampBox 是已定位的印章外框（pt），尚未应用等比缩放。
type stampBox struct {
	x, y, w, h float64
	explicitW  bool
	explicitH  bool
	centerX    bool // 为 true 时 x 是相对页面水平居中位置的偏移
}

// fit 按锚点与等比规则计算最终绘制区域。nativeW/nativeH 为图片像素尺寸。
func fit(b stampBox, pageW float64, nativeW, nativeH int, anchor template.VAnchor, keepAspect bool) ImageBox {
	iw := float64(nativeW) * PxToPt
	ih := float64(nativeH) * PxToPt
	w, h := b.w, b.h
	if !b.explicitW {
		w = iw
	}
	if !b.explicitH {
		h = ih
	}
	if b.centerX {
		b.x += (pageW - w) / 2
	}
	bottom := b.y
	if anchor == template.AnchorCenter {
		bottom -= h / 2
	}
	if keepAspect && b.explicitW && b.explicitH && iw > 0 && ih > 0 && w > 0 && h > 0 {
		s := math.Min(w/iw, h/ih)
		dw, dh := iw*s, ih*s
		return ImageBox{
			X:      b.x + (w-dw)/2,
			Y:      bottom + (h-dh)/2,
			Width:  dw,
			Height: dh,
		}
	}
	return ImageBox{X: b.x, Y: bottom, Width: w, Height: h}
}

func (b *builder) placeStamps() {
	idx := 0
	if r := b.tpl.StampRepeat; r != nil {
		b.placeRepeat(r, &idx)
	}
	for i := range b.tpl.StampImages {
		s := &b.tpl.StampImages[i]
		b.placeStampSpec(s, idx)
		idx++
	}
	if b.tpl.StampImage != "" {
		legacy := template.StampSpec{
			Image:      b.tpl.StampImage,
			Width:      b.tpl.StampWidth,
			Height:     b.tpl.StampHeight,
			X:          b.tpl.StampX,
			Y:          b.tpl.StampY,
			CenterX:    &b.tpl.StampCenterX,
			YAnchor:    b.tpl.StampYAnchor,
			KeepAspect: b.tpl.StampKeepAspect,
			Unit:       b.tpl.Unit,
			Origin:     b.tpl.Origin,
		}
		b.placeStampSpec(&legacy, idx)
	}
}

func (b *builder) placeStampSpec(s *template.StampSpec, idx int) {
	name := s.Source()
	p, ok := b.opts.Assets.FirstExisting(name, s.Fallbacks()...)
	if !ok {
		b.skip(KindStamp, idx, name, "图片不存在")
		return
	}
	fr := b.frame(s.Unit, s.Origin)
	degraded := b.checkNumbers(KindStamp, idx, name, map[string]template.Number{
		"width": s.Width, "height": s.Height, "x": s.X, "y": s.Y,
	})
	box := stampBox{
		w:         fr.Len(s.Width.Or(0)),
		h:         fr.Len(s.Height.Or(0)),
		explicitW: s.Width.Present(),
		explicitH: s.Height.Present(),
		y:         fr.Y(s.Y.Or(0)),
	}
	box.x = fr.Len(s.X.Or(0))
	box.centerX = s.CenterX != nil && *s.CenterX
	b.addStamp(p, box, s.YAnchor, s.KeepAspect, idx, name, degraded)
}

func (b *builder) placeRepeat(r *template.StampRepeat, idx *int) {
	fr := b.frame(r.Unit, r.Origin)
	degraded := b.checkNumbers(KindStamp, *idx, "stamp_repeat", map[string]template.Number{
		"width": r.Width, "height": r.Height, "gap": r.Gap, "dx": r.DX, "y": r.Y,
		"margin": r.Margin, "min_width": r.MinWidth,
	})
	gap := r.Gap.Or(0)
	widthRaw := r.Width.Or(0)
	if !r.Width.Present() {
		widthRaw = RepeatWidth(b.bgWidthPx, r.Margin.Or(defaultRepeatMargin), gap, r.MinWidth.Or(defaultRepeatMinWidth), r.Count)
		if fr.Unit == template.UnitMM {
			// 推算值为像素，换算到 mm 后再按项单位处理。
			widthRaw = widthRaw * PxToPt / MmToPt
		}
	}
	heightRaw := r.Height.Or(widthRaw)
	w := fr.Len(widthRaw)
	box := stampBox{
		w: w, h: fr.Len(heightRaw),
		explicitW: true, explicitH: true,
		y: fr.Y(r.Y.Or(0)),
	}
	offsets := RepeatOffsets(r.Count, w, fr.Len(gap), fr.Len(r.DX.Or(0)))
	for i, off := range offsets {
		primary, fallbacks := b.repeatSource(r, i)
		name := primary
		if name == "" && len(fallbacks) > 0 {
			name = fallbacks[0]
		}
		p, ok := b.opts.Assets.FirstExisting(primary, fallbacks...)
		if !ok {
			b.skip(KindStamp, *idx, name, "图片不存在")
			*idx++
			continue
		}
		bx := box
		bx.x = b.page.Width/2 + off
		b.addStamp(p, bx, r.YAnchor, r.KeepAspect, *idx, name, degraded)
		*idx++
	}
}

// repeatSource 返回第 i 枚印章的主图与备选图。按 kind 时主图为 <stampsDir>/<kind>/<i+1>.png，
// 模板中的 image 与 fallback_images 依次作为备选。
func (b *builder) repeatSource(r *template.StampRepeat, i int) (string, []string) {
	if r.Kind == "" {
		return r.Image, r.FallbackImages
	}
	dir := b.opts.StampsDir
	if dir == "" {
		dir = DefaultStampsDir
	}
	primary := path.Join(dir, string(r.Kind), strconv.Itoa(i+1)+".png")
	var fallbacks []string
	if r.Image != "" {
		fallbacks = append(fallbacks, r.Image)
	}
	return primary, append(fallbacks, r.FallbackImages...)
}

func (b *builder) addStamp(resolved string, box stampBox, anchor template.VAnchor, keepAspect bool, idx int, name string, degraded []string) {
	iw, ih := 0, 0
	if !box.explicitW || !box.explicitH || keepAspect {
		w, h, err := b.imageSize(resolved)
		if err != nil {
			b.skip(KindStamp, idx, name, err.Error())
			return
		}
		iw, ih = w, h
	}
	img := fit(box, b.page.Width, iw, ih, anchor, keepAspect)
	if img.Width <= 0 || img.Height <= 0 {
		b.skip(KindStamp, idx, name, fmt.Sprintf("尺寸无效 %.2fx%.2f", img.Width, img.Height))
		return
	}
	img.Path = resolved
	b.page.Stamps = append(b.page.Stamps, img)
	b.record(KindStamp, idx, name, degraded)
}

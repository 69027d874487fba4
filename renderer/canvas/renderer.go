package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/certkit/assets"
	"github.com/ByLCY/certkit/fonts"
	"github.com/ByLCY/certkit/layout"
	"github.com/ByLCY/certkit/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas.
// 布局结果使用 pt、左下角原点；canvas 使用 mm，同为左下角原点，绘制时只做 pt→mm 换算。
type Renderer struct {
	fonts *fonts.Registry
	log   *slog.Logger

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
	faces        map[faceKey]*canvas.FontFace // 仅用于测量
}

var (
	_ renderer.ImageRenderer = (*Renderer)(nil)
	_ layout.Measurer        = (*Renderer)(nil)
)

type faceKey struct {
	font string
	size float64
}

// Options configures the canvas renderer.
type Options struct {
	Fonts  *fonts.Registry // nil 时只使用内置字体
	Logger *slog.Logger    // nil 时不输出日志
}

// NewRenderer creates a renderer that loads font bytes from reg.
func NewRenderer(reg *fonts.Registry) *Renderer { return NewRendererWithOptions(Options{Fonts: reg}) }

// NewRendererWithOptions creates a renderer with the given options.
func NewRendererWithOptions(opts Options) *Renderer {
	reg := opts.Fonts
	if reg == nil {
		reg = fonts.NewRegistry(fonts.Options{Logger: opts.Logger})
	}
	return &Renderer{
		fonts:        reg,
		log:          layout.OrNop(opts.Logger),
		fontFamilies: map[string]*canvas.FontFamily{},
		faces:        map[faceKey]*canvas.FontFace{},
	}
}

// Fonts 返回渲染器使用的字体注册表，布局阶段应使用同一个注册表。
func (r *Renderer) Fonts() *fonts.Registry { return r.fonts }

// Advance 实现 layout.Measurer：返回单个字符在给定字体与字号（pt）下的前进宽度（pt）。
func (r *Renderer) Advance(font string, size float64, ch rune) float64 {
	if size <= 0 {
		return 0
	}
	key := faceKey{font: font, size: size}
	r.fontMu.Lock()
	face, ok := r.faces[key]
	if !ok {
		face = r.familyLocked(font).Face(size, canvas.Black, canvas.FontRegular, canvas.FontNormal)
		r.faces[key] = face
	}
	r.fontMu.Unlock()
	return toPt(face.TextWidth(string(ch)))
}

// Render renders the result into a single-page PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	c, err := r.draw(result)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writer := pdf.New(&buf, c.W, c.H, nil)
	r.applyMeta(writer, result.Meta)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderImage 把页面栅格化为 PNG，dpi 不大于 0 时使用 96。
func (r *Renderer) RenderImage(result *layout.Result, dpi float64) ([]byte, error) {
	c, err := r.draw(result)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 96
	}
	img := rasterizer.Draw(c, canvas.DPI(dpi), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// draw 按固定顺序绘制页面：底色、背景、印章、网格、调试框、文本、叠加网格。
func (r *Renderer) draw(result *layout.Result) (*canvas.Canvas, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	page := result.Page
	if page.Width <= 0 || page.Height <= 0 {
		return nil, fmt.Errorf("%w: %.2fx%.2f", layout.ErrInvalidPage, page.Width, page.Height)
	}
	c := canvas.New(toMm(page.Width), toMm(page.Height))
	ctx := canvas.NewContext(c)

	if page.Fill != nil {
		ctx.SetFillColor(colorFromLayout(*page.Fill))
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.DrawPath(0, 0, canvas.Rectangle(c.W, c.H))
	}

	images := map[string]image.Image{}
	if bg := page.Background; bg != nil {
		r.guard("background", 0, func() error { return r.drawImage(ctx, images, *bg) })
	}
	for i, s := range page.Stamps {
		r.guard("stamp", i, func() error { return r.drawImage(ctx, images, s) })
	}
	r.drawLayer(ctx, page.Guides)
	r.drawLayer(ctx, page.Marks)
	for i, tr := range page.Texts {
		r.guard("text", i, func() error { return r.drawText(ctx, tr) })
	}
	r.drawLayer(ctx, page.Overlay)
	return c, nil
}

// guard 在元素边界恢复错误与 panic，单个元素失败不影响整页输出。
func (r *Renderer) guard(kind string, idx int, fn func() error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("绘制失败", "kind", kind, "index", idx, "reason", rec)
		}
	}()
	if err := fn(); err != nil {
		r.log.Warn("绘制失败", "kind", kind, "index", idx, "reason", err)
	}
}

func (r *Renderer) drawImage(ctx *canvas.Context, cache map[string]image.Image, box layout.ImageBox) error {
	if box.Path == "" || box.Width <= 0 || box.Height <= 0 {
		return nil
	}
	img, ok := cache[box.Path]
	if !ok {
		decoded, err := assets.Decode(box.Path)
		if err != nil {
			return err
		}
		img = decoded
		cache[box.Path] = img
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("图片 %s 尺寸为 0", box.Path)
	}
	// 以 1px = 1mm 绘制，再通过视图变换拉伸到目标区域。
	sx := toMm(box.Width) / float64(b.Dx())
	sy := toMm(box.Height) / float64(b.Dy())
	ctx.Push()
	ctx.Translate(toMm(box.X), toMm(box.Y))
	ctx.Scale(sx, sy)
	ctx.DrawImage(0, 0, img, canvas.DPMM(1))
	ctx.Pop()
	return nil
}

func (r *Renderer) drawText(ctx *canvas.Context, tr layout.TextRun) error {
	if tr.FontSize <= 0 || tr.Content == "" {
		return nil
	}
	face := r.family(tr.Font).Face(tr.FontSize, colorFromLayout(tr.Color), canvas.FontRegular, canvas.FontNormal)
	y := toMm(tr.Y)
	if len(tr.Glyphs) == 0 {
		ctx.DrawText(toMm(tr.X), y, canvas.NewTextLine(face, tr.Content, canvas.Left))
		return nil
	}
	for _, g := range tr.Glyphs {
		ctx.DrawText(toMm(g.X), y, canvas.NewTextLine(face, g.Text, canvas.Left))
	}
	return nil
}

// drawLayer 绘制调试图形；标签使用内置通用字体。
func (r *Renderer) drawLayer(ctx *canvas.Context, layer layout.Layer) {
	if layer.Empty() {
		return
	}
	ctx.SetFillColor(canvas.Transparent)
	for _, ln := range layer.Lines {
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(toMm(ln.Width))
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(toMm(ln.X2-ln.X1), toMm(ln.Y2-ln.Y1))
		ctx.DrawPath(toMm(ln.X1), toMm(ln.Y1), p)
	}
	for _, rc := range layer.Rects {
		ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		ctx.SetStrokeWidth(toMm(rc.StrokeWidth))
		ctx.DrawPath(toMm(rc.X), toMm(rc.Y), canvas.Rectangle(toMm(rc.Width), toMm(rc.Height)))
	}
	for _, ci := range layer.Circles {
		ctx.SetStrokeColor(colorFromLayout(ci.StrokeColor))
		ctx.SetStrokeWidth(toMm(ci.StrokeWidth))
		ctx.DrawPath(toMm(ci.CX), toMm(ci.CY), canvas.Circle(toMm(ci.R)))
	}
	ctx.SetStrokeColor(canvas.Transparent)
	family := r.family(fonts.Universal)
	for _, lb := range layer.Labels {
		face := family.Face(lb.Size, colorFromLayout(lb.Color), canvas.FontRegular, canvas.FontNormal)
		ctx.DrawText(toMm(lb.X), toMm(lb.Y), canvas.NewTextLine(face, lb.Text, canvas.Left))
	}
}

func (r *Renderer) family(name string) *canvas.FontFamily {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	return r.familyLocked(name)
}

// familyLocked 返回已加载的字体族；字体不存在或加载失败时退到内置通用字体。调用方需持有 fontMu。
func (r *Renderer) familyLocked(name string) *canvas.FontFamily {
	if family, ok := r.fontFamilies[name]; ok {
		return family
	}
	family, err := r.loadFamily(name)
	if err != nil {
		r.log.Warn("加载字体失败，使用内置字体", "font", name, "err", err)
		family = r.fallbackLocked()
	}
	r.fontFamilies[name] = family
	return family
}

func (r *Renderer) loadFamily(name string) (*canvas.FontFamily, error) {
	font, ok := r.fonts.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("字体 %s 未注册", name)
	}
	family := canvas.NewFontFamily(font.Name)
	if err := family.LoadFont(font.Data, font.Index, canvas.FontRegular); err != nil {
		return nil, err
	}
	return family, nil
}

func (r *Renderer) fallbackLocked() *canvas.FontFamily {
	const key = "builtin:" + fonts.Universal
	if family, ok := r.fontFamilies[key]; ok {
		return family
	}
	data, err := fonts.Load(fonts.Universal)
	if err != nil {
		panic(err)
	}
	family := canvas.NewFontFamily(fonts.Universal)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		panic(fmt.Sprintf("内置字体无法加载: %v", err))
	}
	r.fontFamilies[key] = family
	return family
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, c.A)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }

package certificate

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ByLCY/certkit/assets"
	"github.com/ByLCY/certkit/binding"
	"github.com/ByLCY/certkit/fonts"
	"github.com/ByLCY/certkit/layout"
	canvasrenderer "github.com/ByLCY/certkit/renderer/canvas"
	"github.com/ByLCY/certkit/template"
)

// Generator 持有只读的字体注册表与渲染器，可被多个 goroutine 并发使用。
type Generator struct {
	cfg      Config
	assets   assets.Dir
	fonts    *fonts.Registry
	renderer *canvasrenderer.Renderer
	log      *slog.Logger
}

// New 按配置扫描字体目录并创建生成器。字体缺失不会报错，会回退到内置字体。
func New(cfg Config, opts Options) *Generator {
	log := layout.OrNop(opts.Logger)
	dir := assets.Dir{Root: cfg.AssetsRoot}
	fontsDir := ""
	if cfg.FontsDir != "" {
		fontsDir = dir.Resolve(cfg.FontsDir)
	}
	reg := fonts.NewRegistry(fonts.Options{Dir: fontsDir, Logger: log})
	return &Generator{
		cfg:      cfg,
		assets:   dir,
		fonts:    reg,
		renderer: canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Fonts: reg, Logger: log}),
		log:      log,
	}
}

// Fonts 返回生成器使用的字体注册表。
func (g *Generator) Fonts() *fonts.Registry { return g.fonts }

// Layout 计算页面布局，不进行渲染。
func (g *Generator) Layout(rec binding.Record, tpl *template.Template) (*layout.Result, error) {
	res, err := layout.Build(tpl, rec, layout.BuildOptions{
		Measurer:  g.renderer,
		Fonts:     g.fonts,
		Assets:    g.assets,
		StampsDir: g.cfg.StampsDir,
		Logger:    g.log,
	})
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}
	g.log.Debug("布局完成",
		"width", res.Page.Width, "height", res.Page.Height,
		"texts", len(res.Page.Texts), "stamps", len(res.Page.Stamps), "skipped", len(res.Skipped()))
	return res, nil
}

// Generate 生成单页 PDF。开启校验时，输出必须能被 pdfcpu 解析且恰好一页。
func (g *Generator) Generate(rec binding.Record, tpl *template.Template) ([]byte, error) {
	res, err := g.Layout(rec, tpl)
	if err != nil {
		return nil, err
	}
	data, err := g.renderer.Render(res)
	if err != nil {
		return nil, fmt.Errorf("渲染失败: %w", err)
	}
	if g.cfg.Verify {
		if err := Verify(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// Preview 生成 PNG 预览。
func (g *Generator) Preview(rec binding.Record, tpl *template.Template) ([]byte, error) {
	res, err := g.Layout(rec, tpl)
	if err != nil {
		return nil, err
	}
	data, err := g.renderer.RenderImage(res, g.cfg.PreviewDPI)
	if err != nil {
		return nil, fmt.Errorf("渲染预览失败: %w", err)
	}
	return data, nil
}

// GenerateTo 生成 PDF 并通过 store 原子写入 dir 下的 name，返回最终路径。
func (g *Generator) GenerateTo(store *Store, dir, name string, rec binding.Record, tpl *template.Template) (string, error) {
	path := filepath.Join(dir, name)
	err := store.Render(path, path, func() ([]byte, error) { return g.Generate(rec, tpl) })
	if err != nil {
		return "", err
	}
	return path, nil
}

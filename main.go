package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/certkit/binding"
	"github.com/ByLCY/certkit/certificate"
	"github.com/ByLCY/certkit/layout"
	"github.com/ByLCY/certkit/template"
)

func main() {
	tplPath := flag.String("template", "", "模板文件路径（.json/.yaml/.cert），为空时使用默认模板")
	recPath := flag.String("record", "", "获奖记录 JSON 文件路径")
	output := flag.String("out", "output", "PDF 输出路径；不以 .pdf 结尾时视为目录并按记录生成文件名")
	pngPath := flag.String("png", "", "PNG 预览输出路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	assetsRoot := flag.String("assets", ".", "资源根目录")
	fontsDir := flag.String("fonts", "assets/fonts", "字体目录，相对资源根目录")
	kind := flag.String("kind", "", "按序号印章组：player 或 coach")
	noVerify := flag.Bool("no-verify", false, "跳过 PDF 校验")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := certificate.DefaultConfig()
	cfg.AssetsRoot = *assetsRoot
	cfg.FontsDir = *fontsDir
	cfg.Verify = !*noVerify

	opts := runOptions{
		templatePath: *tplPath,
		recordPath:   *recPath,
		outputPath:   *output,
		pngPath:      *pngPath,
		debugPath:    *debug,
		kind:         template.StampKind(strings.ToLower(strings.TrimSpace(*kind))),
	}
	out, err := run(certificate.New(cfg, certificate.Options{Logger: logger}), opts)
	if err != nil {
		log.Fatalf("生成证书失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s\n", out)
}

type runOptions struct {
	templatePath string
	recordPath   string
	outputPath   string
	pngPath      string
	debugPath    string
	kind         template.StampKind
}

// run 串联模板加载、记录解析、布局与渲染，返回写入的 PDF 路径。
func run(g *certificate.Generator, o runOptions) (string, error) {
	if o.kind != "" && o.kind != template.KindPlayer && o.kind != template.KindCoach {
		return "", fmt.Errorf("未知的证书类型 %q", o.kind)
	}
	tpl := template.DefaultTemplate()
	if o.templatePath != "" {
		loaded, err := template.LoadFile(o.templatePath)
		if err != nil {
			return "", err
		}
		tpl = loaded
	}
	if o.kind != "" {
		tpl = tpl.WithRepeat(o.kind)
	}
	if o.kind == template.KindCoach {
		tpl = tpl.WithCoachAward()
	}

	app, err := loadRecord(o.recordPath)
	if err != nil {
		return "", err
	}
	if o.kind == template.KindCoach {
		app = certificate.PrepareCoach(app)
	}

	if o.debugPath != "" {
		result, err := g.Layout(app, tpl)
		if err != nil {
			return "", err
		}
		if err := writeDebug(result, o.debugPath); err != nil {
			return "", err
		}
	}

	dir, name := filepath.Split(o.outputPath)
	if !strings.EqualFold(filepath.Ext(o.outputPath), ".pdf") {
		dir, name = o.outputPath, certificate.ArtifactName(app, o.kind)
	}
	var store certificate.Store
	out, err := g.GenerateTo(&store, dir, name, app, tpl)
	if err != nil {
		return "", err
	}

	if o.pngPath != "" {
		img, err := g.Preview(app, tpl)
		if err != nil {
			return "", err
		}
		if err := store.Render(o.pngPath, o.pngPath, func() ([]byte, error) { return img, nil }); err != nil {
			return "", fmt.Errorf("写入 PNG 失败: %w", err)
		}
	}
	return out, nil
}

func loadRecord(path string) (*binding.Application, error) {
	app := &binding.Application{}
	if path == "" {
		return app, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取记录文件 %s: %w", path, err)
	}
	if err := json.Unmarshal(data, app); err != nil {
		return nil, fmt.Errorf("解析记录 JSON 失败: %w", err)
	}
	return app, nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

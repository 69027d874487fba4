// Package fonts 管理证书渲染可用的字体：别名表、字体目录扫描、内置通用字体以及按字形覆盖的回退链。
// Registry 在启动时构建一次，之后只读，可被多个渲染调用并发使用。
package fonts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// Candidate 描述一个逻辑字体及其候选文件名，按顺序取第一个能解析的文件。
type Candidate struct {
	Name  string
	Files []string
}

// Options 配置字体注册表。
type Options struct {
	Dir        string            // 字体目录，缺失时只使用内置字体
	Aliases    map[string]string // 逻辑名 -> 具体字体名，nil 表示 DefaultAliases()
	Candidates []Candidate       // nil 表示 DefaultCandidates()
	// Primary 是未指定字体时的首选字体，不可用时退到 Universal。
	Primary string
	// CJKFallback 是请求的字体不可用时共享的中文回退字体，不可用时退到首选字体。
	CJKFallback string
	Logger      *slog.Logger
}

// DefaultAliases 返回中文字体名到具体字体的映射。
func DefaultAliases() map[string]string {
	return map[string]string{
		"黑体":      "SimHei",
		"宋体":      "SimSun",
		"幼圆":      "YouYuan",
		"华文楷体":    "STKaiti",
		"CJK":     "STSong",
		"SimHei":  "SimHei",
		"SimSun":  "SimSun",
		"YouYuan": "YouYuan",
		"STKaiti": "STKaiti",
		"STSong":  "STSong",
	}
}

// DefaultCandidates 返回各逻辑字体的候选文件名，顺序即优先级。
func DefaultCandidates() []Candidate {
	return []Candidate{
		{Name: "SimHei", Files: []string{"simhei.ttf", "SimHei.ttf", "SimHei.TTF"}},
		{Name: "SimSun", Files: []string{"simsun.ttc", "SimSun.ttc", "simsun.ttf", "SimSun.ttf", "simsunb.ttf", "SimSunB.ttf", "SIMSUNB.TTF"}},
		{Name: "YouYuan", Files: []string{"youyuan.ttf", "YouYuan.ttf", "youyuan.ttc", "YouYuan.ttc", "SIMYOU.TTF", "SimYou.ttf", "simyou.ttf"}},
		{Name: "STKaiti", Files: []string{"stkaiti.ttf", "STKaiti.ttf", "stkaiti.ttc", "STKaiti.ttc", "STKAITI.TTF"}},
		{Name: "STSong", Files: []string{"stsong.ttf", "STSong.ttf", "STSONG.TTF", "stsong.ttc", "STSong.ttc"}},
	}
}

// Font 是一个已注册的具体字体。
type Font struct {
	Name  string
	Path  string // 内置字体为 "builtin:<name>"
	Data  []byte
	Index int // TTC 子字体序号，目前固定为 0

	face *sfnt.Font
}

// Covers 报告字体是否包含 r 的字形。
func (f *Font) Covers(r rune) bool {
	if f == nil || f.face == nil {
		return false
	}
	var buf sfnt.Buffer
	idx, err := f.face.GlyphIndex(&buf, r)
	return err == nil && idx != 0
}

// Registry 是只读的字体注册表。
type Registry struct {
	aliases  map[string]string
	fonts    map[string]*Font
	order    []string // 注册顺序，决定回退链
	primary  string
	fallback string
}

// NewRegistry 扫描字体目录并注册内置字体。目录或文件缺失不会报错，只记录日志；
// 内置通用字体保证至少有一个可用字体。
func NewRegistry(opts Options) *Registry {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	aliases := opts.Aliases
	if aliases == nil {
		aliases = DefaultAliases()
	}
	candidates := opts.Candidates
	if candidates == nil {
		candidates = DefaultCandidates()
	}

	r := &Registry{aliases: make(map[string]string, len(aliases)), fonts: map[string]*Font{}}
	for k, v := range aliases {
		r.aliases[k] = v
	}

	if opts.Dir != "" {
		for _, c := range candidates {
			for _, fn := range c.Files {
				path := filepath.Join(opts.Dir, fn)
				data, err := os.ReadFile(path)
				if err != nil {
					continue
				}
				if err := r.add(c.Name, path, data); err != nil {
					log.Warn("字体文件无法解析", "font", c.Name, "path", path, "err", err)
					continue
				}
				log.Debug("注册字体", "font", c.Name, "path", path)
				break
			}
		}
	}

	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.add(name, "builtin:"+name, builtin[name]); err != nil {
			// 内置字体解析失败说明依赖损坏
			panic(fmt.Sprintf("fonts: 内置字体 %s 无法解析: %v", name, err))
		}
	}

	primary := opts.Primary
	if primary == "" {
		primary = "SimHei"
	}
	r.primary = r.canonical(primary)
	if _, ok := r.fonts[r.primary]; !ok {
		r.primary = Universal
	}
	fallback := opts.CJKFallback
	if fallback == "" {
		fallback = "STSong"
	}
	r.fallback = r.canonical(fallback)
	if _, ok := r.fonts[r.fallback]; !ok {
		r.fallback = r.primary
	}
	return r
}

func (r *Registry) add(name, path string, data []byte) error {
	if _, ok := r.fonts[name]; ok {
		return nil
	}
	face, index, err := parse(data)
	if err != nil {
		return err
	}
	r.fonts[name] = &Font{Name: name, Path: path, Data: data, Index: index, face: face}
	r.order = append(r.order, name)
	return nil
}

// parse 解析 TTF/OTF，TTC 取第 0 个子字体。
func parse(data []byte) (*sfnt.Font, int, error) {
	if len(data) >= 4 && string(data[:4]) == "ttcf" {
		coll, err := sfnt.ParseCollection(data)
		if err != nil {
			return nil, 0, err
		}
		f, err := coll.Font(0)
		return f, 0, err
	}
	f, err := sfnt.Parse(data)
	return f, 0, err
}

func (r *Registry) canonical(name string) string {
	name = strings.TrimSpace(name)
	if v, ok := r.aliases[name]; ok {
		return v
	}
	return name
}

// Resolve 把别名或字体名解析为已注册的具体字体名：
// 空名返回首选字体；别名/字体名可用时返回它；否则返回共享的中文回退字体（其本身不可用时为首选字体）。
func (r *Registry) Resolve(name string) string {
	if strings.TrimSpace(name) == "" {
		return r.primary
	}
	resolved := r.canonical(name)
	if _, ok := r.fonts[resolved]; ok {
		return resolved
	}
	return r.fallback
}

// ResolveFor 在 Resolve 的基础上检查字形覆盖：解析结果缺字时依次尝试
// 中文回退字体、首选字体以及按注册顺序的其余字体，返回第一个覆盖全部字符的字体。
// 没有任何字体能覆盖时返回 Resolve 的结果。
func (r *Registry) ResolveFor(name, text string) string {
	first := r.Resolve(name)
	if r.coversAll(first, text) {
		return first
	}
	chain := append([]string{r.fallback, r.primary}, r.order...)
	for _, candidate := range chain {
		if candidate != first && r.coversAll(candidate, text) {
			return candidate
		}
	}
	return first
}

func (r *Registry) coversAll(name, text string) bool {
	f := r.fonts[name]
	if f == nil {
		return false
	}
	for _, ch := range text {
		if ch == ' ' || ch == '\t' || ch == '\n' {
			continue
		}
		if !f.Covers(ch) {
			return false
		}
	}
	return true
}

// Lookup 返回已注册字体。
func (r *Registry) Lookup(name string) (*Font, bool) {
	f, ok := r.fonts[name]
	return f, ok
}

// Primary 返回未指定字体时使用的字体名。
func (r *Registry) Primary() string { return r.primary }

// Fallback 返回共享的中文回退字体名。
func (r *Registry) Fallback() string { return r.fallback }

// Available 按注册顺序返回全部可用字体名。
func (r *Registry) Available() []string {
	return append([]string(nil), r.order...)
}

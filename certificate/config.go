// Package certificate 把模板、记录、布局与渲染串成一次完整的证书生成：
// Build -> Render -> Verify，并提供输出文件的命名与原子写入。
package certificate

import (
	"log/slog"

	"github.com/ByLCY/certkit/layout"
)

// Config 是生成器配置。路径均可为相对路径，相对 AssetsRoot 解析。
type Config struct {
	AssetsRoot string  // 资源根目录
	FontsDir   string  // 字体目录
	StampsDir  string  // 按序号命名的印章目录
	Verify     bool    // 是否用 pdfcpu 校验输出
	PreviewDPI float64 // PNG 预览分辨率
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		AssetsRoot: ".",
		FontsDir:   "assets/fonts",
		StampsDir:  layout.DefaultStampsDir,
		Verify:     true,
		PreviewDPI: 96,
	}
}

// Options 是生成器的可选依赖。
type Options struct {
	Logger *slog.Logger // nil 时不输出日志
}

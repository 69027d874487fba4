package layout

import (
	"log/slog"

	"github.com/ByLCY/certkit/assets"
	"github.com/ByLCY/certkit/fonts"
)

// DefaultStampsDir 是按序号命名的印章图片目录（相对资源根目录）。
const DefaultStampsDir = "assets/cert/stamps"

// BuildOptions 配置布局阶段所需的依赖，例如测量后端与字体注册表。
type BuildOptions struct {
	Measurer  Measurer
	Fonts     *fonts.Registry
	Assets    assets.Dir
	StampsDir string       // 为空时使用 DefaultStampsDir
	Logger    *slog.Logger // 为空时不输出日志
}

// Measurer 提供单个字符在给定字体与字号（pt）下的前进宽度（pt）。
type Measurer interface {
	Advance(font string, size float64, r rune) float64
}

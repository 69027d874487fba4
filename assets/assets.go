// Package assets 解析证书使用的图片与字体路径：相对路径基于资源根目录，绝对路径原样使用。
package assets

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Dir 是资源根目录。零值表示当前工作目录。
type Dir struct {
	Root string
}

// Resolve 返回资源的实际路径，空路径返回空串。
func (d Dir) Resolve(p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(d.Root, p)
}

// Exists 报告资源是否为存在的普通文件。
func (d Dir) Exists(p string) bool {
	if p == "" {
		return false
	}
	fi, err := os.Stat(d.Resolve(p))
	return err == nil && fi.Mode().IsRegular()
}

// FirstExisting 返回 primary 与 fallbacks 中第一个存在的资源（已解析路径），都不存在时 ok=false。
func (d Dir) FirstExisting(primary string, fallbacks ...string) (string, bool) {
	for _, p := range append([]string{primary}, fallbacks...) {
		if d.Exists(p) {
			return d.Resolve(p), true
		}
	}
	return "", false
}

// ImageSize 只读取图片头部，返回像素尺寸。
func (d Dir) ImageSize(p string) (width, height int, err error) {
	return ImageSize(d.Resolve(p))
}

// Decode 解码整张图片，支持 PNG/JPEG/GIF/BMP/WebP。
func (d Dir) Decode(p string) (image.Image, error) {
	return Decode(d.Resolve(p))
}

// ImageSize 读取已解析路径处图片的像素尺寸。
func ImageSize(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("读取图片尺寸失败 %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Decode 解码已解析路径处的图片。
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("解码图片失败 %s: %w", path, err)
	}
	return img, nil
}

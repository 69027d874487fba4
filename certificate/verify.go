package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrInvalidOutput 表示渲染结果不是合法的单页 PDF。
var ErrInvalidOutput = errors.New("certificate: 输出不是合法的单页 PDF")

var disableConfigDir sync.Once

func pdfConfig() *model.Configuration {
	// pdfcpu 默认会在用户目录下创建配置文件，这里只做内存校验。
	disableConfigDir.Do(func() { model.ConfigPath = "disable" })
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Verify 用 pdfcpu 校验 PDF 字节并要求恰好一页。
func Verify(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: 内容为空", ErrInvalidOutput)
	}
	conf := pdfConfig()
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if n != 1 {
		return fmt.Errorf("%w: 页数为 %d", ErrInvalidOutput, n)
	}
	return nil
}

package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Universal 是内置的通用默认字体，始终可用。
const Universal = "GoRegular"

var builtin = map[string][]byte{
	Universal: goregular.TTF,
	"GoBold":  gobold.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:GoRegular" 或直接 "GoRegular"。
func Load(name string) ([]byte, error) {
	key := strings.TrimPrefix(name, "builtin:")
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("内置字体 %s 不存在", key)
	}
	return data, nil
}

package certificate

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"
)

// Store 保证同一 key 同时只有一次渲染在进行，并以“临时文件 + 重命名”的方式写入，
// 读者不会看到写了一半的文件。
type Store struct {
	group singleflight.Group
}

// Render 对 key 执行 fn 并把结果写入 path。并发的同 key 调用共享同一次执行与结果。
func (s *Store) Render(key, path string, fn func() ([]byte, error)) error {
	_, err, _ := s.group.Do(key, func() (any, error) {
		data, err := fn()
		if err != nil {
			return nil, err
		}
		return nil, writeAtomic(path, data)
	})
	return err
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("重命名输出文件失败: %w", err)
	}
	return nil
}

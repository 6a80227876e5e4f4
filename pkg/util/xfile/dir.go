package xfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirPerm 默认目录权限（0750，符合 gosec G301）
const DefaultDirPerm = 0750

// EnsureDir 确保文件的父目录存在，使用默认权限 0750。
// 目录已存在时不报错。
func EnsureDir(filename string) error {
	return EnsureDirWithPerm(filename, DefaultDirPerm)
}

// EnsureDirWithPerm 确保文件的父目录存在，使用指定权限
//
// 参数：
//   - filename: 文件路径（不是目录路径），不能为空，不能包含空字节
//   - perm: 目录权限，必须包含所有者执行位（0100）
//
// 如果目录已存在，不会修改其权限。
func EnsureDirWithPerm(filename string, perm os.FileMode) error {
	if filename == "" {
		return fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	if perm&0100 == 0 {
		return fmt.Errorf("directory permission %04o missing owner execute bit: %w", perm, ErrInvalidPerm)
	}
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, perm)
}

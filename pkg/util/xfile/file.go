package xfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// statFn 用于 Exists/Size，测试中可替换。
var statFn = os.Stat

// renameFn 用于 Move，测试中可替换。
var renameFn = os.Rename

// removeFn 用于 Move 的覆盖路径，测试中可替换。
var removeFn = os.Remove

// Exists 判断路径是否存在。
//
// Stat 失败但不是"不存在"（如权限拒绝）时返回 true：
// 轮转策略据此不会把一个暂时无法 stat 的文件当作被外部删除而清空重建。
func Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := statFn(path)
	if err == nil {
		return true
	}
	return !errors.Is(err, fs.ErrNotExist)
}

// Size 返回文件当前大小，文件不存在时返回 0 和 nil。
func Size(path string) (int64, error) {
	info, err := statFn(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return info.Size(), nil
}

// Move 将 src 重命名为 dst。
//
// overwrite 为 false 且 dst 已存在时返回 [ErrTargetExists]。
// overwrite 为 true 时先删除已存在的 dst 再重命名，
// 在会拒绝覆盖式 rename 的平台（Windows）上行为与 POSIX 一致。
func Move(src, dst string, overwrite bool) error {
	if src == "" || dst == "" {
		return fmt.Errorf("move %q -> %q: %w", src, dst, ErrEmptyPath)
	}
	if Exists(dst) {
		if !overwrite {
			return fmt.Errorf("move %q -> %q: %w", src, dst, ErrTargetExists)
		}
		if err := removeFn(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("move %q -> %q: remove target: %w", src, dst, err)
		}
	}
	if err := renameFn(src, dst); err != nil {
		return fmt.Errorf("move %q -> %q: %w", src, dst, err)
	}
	return nil
}

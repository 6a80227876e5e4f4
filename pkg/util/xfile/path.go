package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// containsNullByte 检测路径是否包含空字节。
// Linux 内核在 VFS 层会在空字节处截断路径。
func containsNullByte(path string) bool {
	return strings.ContainsRune(path, 0)
}

// hasDotDotSegment 检测路径中是否包含 ".." 作为独立路径段。
// 同时将 '/' 和 '\' 视为分隔符。
func hasDotDotSegment(path string) bool {
	i := 0
	for i < len(path) {
		if path[i] == '/' || path[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(path) && path[j] != '/' && path[j] != '\\' {
			j++
		}
		if j-i == 2 && path[i] == '.' && path[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}

// SanitizePath 对日志文件路径进行安全检查和规范化
//
// 功能：
//   - 路径规范化（消除 . 和冗余斜杠）
//   - 阻止相对路径穿越（如 "../etc/passwd"）
//   - 拒绝空路径、空字节和显式目录路径（尾随 "/" 或 "\"）
//
// 绝对路径中的 ".." 会被 filepath.Clean 正常解析，例如 "/var/log/../tmp/a.log" -> "/var/tmp/a.log"。
//
// 轮转器用规范化后的路径作为基础文件名，日期后缀和备份序号都拼接在它后面，
// 因此这里必须拒绝目录路径，否则会生成 "dir/.2024-01-01" 之类的隐藏文件。
func SanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}

	if containsNullByte(filename) {
		return "", fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}

	// 必须在 filepath.Clean 之前检查，Clean 会移除尾部斜杠
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("path is a directory: %w", ErrInvalidPath)
	}

	cleaned := filepath.Clean(filename)

	if hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("path traversal in filename: %w", ErrPathTraversal)
	}

	base := filepath.Base(cleaned)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("no file name specified: %w", ErrInvalidPath)
	}

	return cleaned, nil
}

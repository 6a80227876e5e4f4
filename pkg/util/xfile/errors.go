package xfile

import "errors"

var (
	// ErrEmptyPath 表示必需的路径参数为空。
	ErrEmptyPath = errors.New("xfile: path is required")

	// ErrInvalidPath 表示路径格式无效（如目录路径）。
	ErrInvalidPath = errors.New("xfile: invalid path")

	// ErrPathTraversal 表示检测到路径穿越（".." 路径段）。
	ErrPathTraversal = errors.New("xfile: path traversal detected")

	// ErrNullByte 表示路径中包含空字节（\x00）。
	ErrNullByte = errors.New("xfile: path contains null byte")

	// ErrInvalidPerm 表示目录权限无效（缺少所有者执行位）。
	ErrInvalidPerm = errors.New("xfile: invalid directory permission")

	// ErrTargetExists 表示 Move 的目标已存在且调用方未允许覆盖。
	ErrTargetExists = errors.New("xfile: target already exists")
)

package xrotate

import "errors"

// 配置校验错误
var (
	// ErrEmptyFilename 文件名为空
	ErrEmptyFilename = errors.New("xrotate: filename is required")

	// ErrInvalidMaxSize MaxSizeMB 值无效（必须在 1~10240 范围内）
	ErrInvalidMaxSize = errors.New("xrotate: invalid MaxSizeMB")

	// ErrInvalidMaxBackups 备份数量无效（不能为负数）
	ErrInvalidMaxBackups = errors.New("xrotate: invalid MaxBackups")

	// ErrInvalidMaxAge MaxAgeDays 值无效（必须在 0~3650 范围内）
	ErrInvalidMaxAge = errors.New("xrotate: invalid MaxAgeDays")

	// ErrNoCleanupPolicy MaxBackups 和 MaxAgeDays 不能同时为 0
	ErrNoCleanupPolicy = errors.New("xrotate: no cleanup policy configured")

	// ErrInvalidFileMode FileMode 包含非权限位（仅允许低 9 位 0000~0777）
	ErrInvalidFileMode = errors.New("xrotate: invalid FileMode")

	// ErrInvalidBufferSize 文件缓冲区大小为负数
	ErrInvalidBufferSize = errors.New("xrotate: invalid file buffer size")
)

// 运行期错误
var (
	// ErrClosed 轮转器已关闭
	ErrClosed = errors.New("xrotate: rotator is closed")

	// ErrOpenFailed 无法打开或创建目标日志文件
	ErrOpenFailed = errors.New("xrotate: open log file failed")

	// ErrWriteTruncated 实际写入字节数少于请求字节数
	ErrWriteTruncated = errors.New("xrotate: write truncated")

	// ErrBackupMoveFailed 备份链中的单次重命名失败，只通过 OnError 上报，不中断轮转
	ErrBackupMoveFailed = errors.New("xrotate: backup move failed")
)

package xappender

import (
	"errors"

	"github.com/omeyang/xroll/pkg/observability/xrotate"
)

// 输出端生命周期错误
var (
	// ErrInvalidArgument 配置缺少必填项或取值非法（如文件名为空）
	ErrInvalidArgument = errors.New("xappender: invalid argument")

	// ErrNotInitialized 输出端尚未初始化或已经 Finalize
	ErrNotInitialized = errors.New("xappender: not initialized")

	// ErrAlreadyInitialized 重复初始化（需先 Finalize）
	ErrAlreadyInitialized = errors.New("xappender: already initialized")

	// ErrUnknownType 配置中的输出端类型未知
	ErrUnknownType = errors.New("xappender: unknown appender type")
)

// 写入路径错误，与 xrotate 共用同一哨兵值，errors.Is 对两个包的变量都成立
var (
	// ErrOpenFailed 日志文件无法打开或创建
	ErrOpenFailed = xrotate.ErrOpenFailed

	// ErrWriteTruncated 写入的字节数少于格式化后的记录长度
	ErrWriteTruncated = xrotate.ErrWriteTruncated

	// ErrBackupMoveFailed 备份链中的一次移动失败（仅通过 OnError 上报）
	ErrBackupMoveFailed = xrotate.ErrBackupMoveFailed
)

// 配置加载错误
var (
	// ErrEmptyPath 配置文件路径为空
	ErrEmptyPath = errors.New("xappender: empty config path")

	// ErrUnsupportedFormat 不支持的配置格式
	ErrUnsupportedFormat = errors.New("xappender: unsupported config format")

	// ErrLoadFailed 配置文件读取失败
	ErrLoadFailed = errors.New("xappender: failed to load config")

	// ErrParseFailed 配置内容解析失败
	ErrParseFailed = errors.New("xappender: failed to parse config")

	// ErrUnmarshalFailed 配置反序列化失败
	ErrUnmarshalFailed = errors.New("xappender: failed to unmarshal config")
)

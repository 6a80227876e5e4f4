package xrotate

import (
	"fmt"
	"math"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Unbounded 表示不按大小轮转
const Unbounded int64 = math.MaxInt64

// rollingConfig RollingFile 配置
type rollingConfig struct {
	// DailyRolling 文件名是否携带日期后缀（按天滚动）
	DailyRolling bool

	// MaxFileSize 单个文件最大字节数，<= 0 表示不限制
	MaxFileSize int64

	// MaxBackups 编号备份的最大数量，0 表示不保留备份（轮转时直接截断）
	MaxBackups int

	// FileBufferSize 文件缓冲区字节数，0 表示无缓冲
	FileBufferSize int

	// FileMode 新建日志文件的权限，仅在使用默认 FS 时生效
	FileMode os.FileMode

	// FS 文件系统实现，默认 OSFS
	FS FS

	// Clock 时钟，默认 time.Now
	Clock func() time.Time

	// OnError 内部错误回调（备份移动失败、关闭失败）
	//
	// 回调不得向同一 RollingFile 写入数据。
	OnError func(error)

	// MoveAttempts 备份移动的最大尝试次数（含首次），默认 1
	MoveAttempts int

	// MoveDelay 备份移动重试间隔
	MoveDelay time.Duration

	// MeterProvider OpenTelemetry MeterProvider，默认使用全局 provider
	MeterProvider metric.MeterProvider
}

// Option RollingFile 配置选项函数
type Option func(*rollingConfig)

// WithDailyRolling 设置是否按天滚动（文件名追加 .YYYY-MM-DD）
func WithDailyRolling(daily bool) Option {
	return func(c *rollingConfig) {
		c.DailyRolling = daily
	}
}

// WithMaxFileSize 设置单个文件最大字节数，<= 0 表示不限制
func WithMaxFileSize(size int64) Option {
	return func(c *rollingConfig) {
		c.MaxFileSize = size
	}
}

// WithMaxBackups 设置保留的编号备份数量，0 表示不保留
func WithMaxBackups(n int) Option {
	return func(c *rollingConfig) {
		c.MaxBackups = n
	}
}

// WithFileBufferSize 设置文件缓冲区大小，0 表示无缓冲
func WithFileBufferSize(n int) Option {
	return func(c *rollingConfig) {
		c.FileBufferSize = n
	}
}

// WithFileMode 设置新建日志文件的权限（默认 0644）
func WithFileMode(mode os.FileMode) Option {
	return func(c *rollingConfig) {
		c.FileMode = mode
	}
}

// WithFS 替换文件系统实现，nil 被忽略
func WithFS(fs FS) Option {
	return func(c *rollingConfig) {
		if fs != nil {
			c.FS = fs
		}
	}
}

// WithClock 替换时钟，nil 被忽略
//
// Write 和初始化使用该时钟决定日期后缀和轮转检查时间；WriteAt 使用调用方给出的时间。
func WithClock(now func() time.Time) Option {
	return func(c *rollingConfig) {
		if now != nil {
			c.Clock = now
		}
	}
}

// WithOnError 设置内部错误回调
//
// 回调在写入路径上同步执行，不得再写入同一个 RollingFile。
func WithOnError(fn func(error)) Option {
	return func(c *rollingConfig) {
		c.OnError = fn
	}
}

// WithMoveRetry 设置备份移动的重试策略
//
// attempts 为最大尝试次数（含首次），<= 1 表示不重试。
// 适用于 Windows 等平台上文件被杀毒软件等短暂占用导致 rename 失败的场景。
func WithMoveRetry(attempts int, delay time.Duration) Option {
	return func(c *rollingConfig) {
		c.MoveAttempts = attempts
		c.MoveDelay = delay
	}
}

// WithMeterProvider 设置 OpenTelemetry MeterProvider，nil 被忽略
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *rollingConfig) {
		if mp != nil {
			c.MeterProvider = mp
		}
	}
}

// validateRollingConfig 校验并规范化配置
func validateRollingConfig(cfg *rollingConfig) error {
	if cfg.MaxBackups < 0 {
		return fmt.Errorf("%w: got %d, want >= 0", ErrInvalidMaxBackups, cfg.MaxBackups)
	}
	if cfg.FileBufferSize < 0 {
		return fmt.Errorf("%w: got %d, want >= 0", ErrInvalidBufferSize, cfg.FileBufferSize)
	}
	if cfg.FileMode != 0 && cfg.FileMode&^os.FileMode(0o777) != 0 {
		return fmt.Errorf("%w: got %04o, only permission bits (0000~0777) allowed",
			ErrInvalidFileMode, cfg.FileMode)
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = Unbounded
	}
	if cfg.MoveAttempts < 1 {
		cfg.MoveAttempts = 1
	}
	if cfg.MoveDelay < 0 {
		cfg.MoveDelay = 0
	}
	return nil
}

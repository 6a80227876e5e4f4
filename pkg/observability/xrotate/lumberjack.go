package xrotate

import (
	"fmt"
	"sync/atomic"

	"github.com/omeyang/xroll/pkg/util/xfile"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Lumberjack 默认配置值
const (
	// DefaultMaxSizeMB 默认单个日志文件最大大小（MB）
	DefaultMaxSizeMB = 500

	// DefaultMaxBackups 默认保留的备份文件数量
	DefaultMaxBackups = 7

	// DefaultMaxAgeDays 默认保留备份的天数
	DefaultMaxAgeDays = 30

	// maxSizeMB 单个日志文件大小上限（10 GB）
	maxSizeMB = 10240

	// maxAgeDays 备份保留天数上限（约 10 年）
	maxAgeDays = 3650
)

// lumberjackConfig lumberjack 轮转器配置
//
// 与 RollingFile 的区别：备份以时间戳命名（app-2024-01-01T00-00-00.000.log），
// 支持按天数清理和 gzip 压缩，不支持按天滚动文件名和缓冲。
type lumberjackConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	LocalTime  bool
}

// LumberjackOption lumberjack 配置选项函数
type LumberjackOption func(*lumberjackConfig)

// WithLumberjackMaxSize 设置单个日志文件最大大小（MB）
func WithLumberjackMaxSize(mb int) LumberjackOption {
	return func(c *lumberjackConfig) {
		c.MaxSizeMB = mb
	}
}

// WithLumberjackMaxBackups 设置保留的备份文件数量，0 表示只按天数清理
func WithLumberjackMaxBackups(n int) LumberjackOption {
	return func(c *lumberjackConfig) {
		c.MaxBackups = n
	}
}

// WithLumberjackMaxAge 设置保留备份的天数，0 表示只按数量清理
func WithLumberjackMaxAge(days int) LumberjackOption {
	return func(c *lumberjackConfig) {
		c.MaxAgeDays = days
	}
}

// WithLumberjackCompress 设置是否 gzip 压缩备份文件
func WithLumberjackCompress(compress bool) LumberjackOption {
	return func(c *lumberjackConfig) {
		c.Compress = compress
	}
}

// WithLumberjackLocalTime 设置备份文件名是否使用本地时间（默认 UTC）
func WithLumberjackLocalTime(local bool) LumberjackOption {
	return func(c *lumberjackConfig) {
		c.LocalTime = local
	}
}

// lumberjackRotator 基于 lumberjack 的 Rotator 实现，并发安全
type lumberjackRotator struct {
	logger *lumberjack.Logger
	closed atomic.Bool
}

// NewLumberjack 创建基于 lumberjack 的日志轮转器
//
// 与 RollingFile 不同，lumberjack 延迟到首次写入才创建文件。
func NewLumberjack(filename string, opts ...LumberjackOption) (Rotator, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	cfg := lumberjackConfig{
		MaxSizeMB:  DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAgeDays: DefaultMaxAgeDays,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := validateLumberjackConfig(&cfg); err != nil {
		return nil, err
	}

	safePath, err := xfile.SanitizePath(filename)
	if err != nil {
		return nil, err
	}
	if err := xfile.EnsureDir(safePath); err != nil {
		return nil, err
	}

	return &lumberjackRotator{
		logger: &lumberjack.Logger{
			Filename:   safePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		},
	}, nil
}

func validateLumberjackConfig(cfg *lumberjackConfig) error {
	if cfg.MaxSizeMB <= 0 || cfg.MaxSizeMB > maxSizeMB {
		return fmt.Errorf("%w: got %d, want 1~%d", ErrInvalidMaxSize, cfg.MaxSizeMB, maxSizeMB)
	}
	if cfg.MaxBackups < 0 {
		return fmt.Errorf("%w: got %d, want >= 0", ErrInvalidMaxBackups, cfg.MaxBackups)
	}
	if cfg.MaxAgeDays < 0 || cfg.MaxAgeDays > maxAgeDays {
		return fmt.Errorf("%w: got %d, want 0~%d", ErrInvalidMaxAge, cfg.MaxAgeDays, maxAgeDays)
	}
	// lumberjack 在两者都为 0 时永不清理，备份会无限增长
	if cfg.MaxBackups == 0 && cfg.MaxAgeDays == 0 {
		return fmt.Errorf("%w: MaxBackups and MaxAgeDays cannot both be 0", ErrNoCleanupPolicy)
	}
	return nil
}

// Write 实现 io.Writer 接口
func (r *lumberjackRotator) Write(p []byte) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}
	n, err := r.logger.Write(p)
	// Close 可能在 logger.Write 执行期间完成，后置检查保证调用方拿到 ErrClosed
	if err != nil && r.closed.Load() {
		return n, ErrClosed
	}
	return n, err
}

// Close 实现 io.Closer 接口，重复调用返回 [ErrClosed]
func (r *lumberjackRotator) Close() error {
	if r.closed.Swap(true) {
		return ErrClosed
	}
	return r.logger.Close()
}

// Rotate 手动触发轮转
func (r *lumberjackRotator) Rotate() error {
	if r.closed.Load() {
		return ErrClosed
	}
	if err := r.logger.Rotate(); err != nil {
		if r.closed.Load() {
			return ErrClosed
		}
		return err
	}
	return nil
}

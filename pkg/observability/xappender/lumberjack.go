package xappender

import (
	"fmt"

	"github.com/omeyang/xroll/pkg/observability/xrotate"
)

const bytesPerMB = 1 << 20

// LumberjackAppender 基于 lumberjack 的按大小轮转文件输出端
//
// 与 [RollingFileAppender] 的区别：备份以时间戳命名，支持按天数清理和压缩，
// 不支持按天滚动文件名和缓冲。
type LumberjackAppender struct {
	opts options

	rotator xrotate.Rotator
	buf     []byte
}

// NewLumberjackAppender 创建未初始化的 lumberjack 输出端
func NewLumberjackAppender(opts ...Option) *LumberjackAppender {
	return &LumberjackAppender{opts: applyOptions(opts)}
}

// Type 返回 "lumberjack"
func (a *LumberjackAppender) Type() string { return TypeLumberjack }

// Initialize 创建 lumberjack 轮转器
//
// Lumberjack.MaxSizeMB 为 0 时由 MaxFileSize 向上取整为 MB；MaxBackupIndex 对应备份数量。
func (a *LumberjackAppender) Initialize(cfg Config) error {
	if a.rotator != nil {
		return ErrAlreadyInitialized
	}
	if cfg.File == "" {
		return fmt.Errorf("%w: file is required", ErrInvalidArgument)
	}

	r, err := xrotate.NewLumberjack(cfg.File, lumberjackOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	a.rotator = r
	return nil
}

// derivedSizeMB 返回 lumberjack 使用的单文件 MB 上限
func derivedSizeMB(cfg Config) int {
	if cfg.Lumberjack.MaxSizeMB != 0 {
		return cfg.Lumberjack.MaxSizeMB
	}
	if cfg.MaxFileSize > 0 {
		return int((int64(cfg.MaxFileSize) + bytesPerMB - 1) / bytesPerMB)
	}
	return xrotate.DefaultMaxSizeMB
}

func lumberjackOptions(cfg Config) []xrotate.LumberjackOption {
	sizeMB := derivedSizeMB(cfg)
	ageDays := cfg.Lumberjack.MaxAgeDays
	if ageDays == 0 {
		ageDays = xrotate.DefaultMaxAgeDays
	}

	return []xrotate.LumberjackOption{
		xrotate.WithLumberjackMaxSize(sizeMB),
		xrotate.WithLumberjackMaxBackups(max(0, cfg.MaxBackupIndex)),
		xrotate.WithLumberjackMaxAge(ageDays),
		xrotate.WithLumberjackCompress(cfg.Lumberjack.Compress),
		xrotate.WithLumberjackLocalTime(true),
	}
}

// Output 写入格式化的记录，轮转由 lumberjack 在写入时完成
func (a *LumberjackAppender) Output(rec Record) error {
	if a.rotator == nil {
		return ErrNotInitialized
	}
	if rec.Time.IsZero() {
		rec.Time = a.opts.clock()
	}
	a.buf = a.opts.formatter.Format(a.buf[:0], rec)
	n, err := a.rotator.Write(a.buf)
	if err == nil && n < len(a.buf) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrWriteTruncated, n, len(a.buf))
	}
	return err
}

// Flush lumberjack 不缓冲，空操作
func (a *LumberjackAppender) Flush() error { return nil }

// Finalize 关闭文件并重置为未初始化状态
func (a *LumberjackAppender) Finalize() error {
	if a.rotator == nil {
		return nil
	}
	err := a.rotator.Close()
	a.rotator = nil
	a.buf = nil
	return err
}

// Rotate 手动触发轮转
func (a *LumberjackAppender) Rotate() error {
	if a.rotator == nil {
		return ErrNotInitialized
	}
	return a.rotator.Rotate()
}

package xappender

import (
	"errors"
	"fmt"

	"github.com/omeyang/xroll/pkg/observability/xlog"
	"github.com/omeyang/xroll/pkg/observability/xrotate"
)

// RollingFileAppender 按日期和大小滚动的文件输出端
type RollingFileAppender struct {
	opts options

	cfg  Config
	file *xrotate.RollingFile
	buf  []byte
}

// NewRollingFileAppender 创建未初始化的文件输出端
func NewRollingFileAppender(opts ...Option) *RollingFileAppender {
	return &RollingFileAppender{opts: applyOptions(opts)}
}

// Type 返回 "file"
func (a *RollingFileAppender) Type() string { return TypeFile }

// Initialize 打开当天应写入的文件
//
// 数值配置先做归一化：FileBufferSize 和 MaxBackupIndex 小于 0 按 0 处理，
// MaxFileSize <= 0 表示不限制。文件以追加模式打开，已有内容达到大小上限时立即备份并截断。
func (a *RollingFileAppender) Initialize(cfg Config) error {
	if a.file != nil {
		return ErrAlreadyInitialized
	}
	if cfg.File == "" {
		return fmt.Errorf("%w: file is required", ErrInvalidArgument)
	}

	cfg.FileBufferSize = max(0, cfg.FileBufferSize)
	cfg.MaxBackupIndex = max(0, cfg.MaxBackupIndex)
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = ByteSize(xrotate.Unbounded)
	}

	rotOpts := []xrotate.Option{
		xrotate.WithDailyRolling(cfg.DailyRolling),
		xrotate.WithMaxFileSize(int64(cfg.MaxFileSize)),
		xrotate.WithMaxBackups(cfg.MaxBackupIndex),
		xrotate.WithFileBufferSize(int(cfg.FileBufferSize)),
		xrotate.WithClock(a.opts.clock),
		xrotate.WithOnError(a.opts.onError),
		xrotate.WithMeterProvider(a.opts.meterProvider),
		xrotate.WithFS(a.opts.fs),
		xrotate.WithMoveRetry(a.opts.moveAttempts, a.opts.moveDelay),
	}

	file, err := xrotate.NewRollingFile(cfg.File, rotOpts...)
	if err != nil {
		if errors.Is(err, ErrOpenFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	a.cfg = cfg
	a.file = file
	return nil
}

// Output 执行轮转检查后写入格式化的记录
//
// 轮转检查使用记录时间。启用缓冲时 WARN 及以上级别写入后立即刷新。
func (a *RollingFileAppender) Output(rec Record) error {
	if a.file == nil {
		return ErrNotInitialized
	}
	if rec.Time.IsZero() {
		rec.Time = a.opts.clock()
	}

	a.buf = a.opts.formatter.Format(a.buf[:0], rec)
	_, err := a.file.WriteAt(rec.Time, a.buf)

	if rec.Level >= xlog.LevelWarn && a.file.Buffered() {
		if ferr := a.file.Flush(); ferr != nil {
			err = errors.Join(err, ferr)
		}
	}
	return err
}

// Flush 提交缓冲区，未初始化或无待提交数据时为空操作
func (a *RollingFileAppender) Flush() error {
	if a.file == nil {
		return nil
	}
	return a.file.Flush()
}

// Finalize 关闭文件并重置为未初始化状态
func (a *RollingFileAppender) Finalize() error {
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	a.cfg = Config{}
	a.buf = nil
	return err
}

// Config 返回归一化后的生效配置，未初始化时为零值
func (a *RollingFileAppender) Config() Config { return a.cfg }

// FileName 返回当前写入的文件名，未初始化时为空
func (a *RollingFileAppender) FileName() string {
	if a.file == nil {
		return ""
	}
	return a.file.FileName()
}

// FileSize 返回当前文件的字节数
func (a *RollingFileAppender) FileSize() int64 {
	if a.file == nil {
		return 0
	}
	return a.file.Size()
}

// Pending 返回自上次刷新以来的写入条数
func (a *RollingFileAppender) Pending() int {
	if a.file == nil {
		return 0
	}
	return a.file.Pending()
}

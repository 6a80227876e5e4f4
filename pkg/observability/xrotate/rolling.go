package xrotate

import (
	"errors"
	"fmt"
	"time"

	"github.com/omeyang/xroll/pkg/util/xfile"
)

// RollingFile 按日期和大小滚动的日志文件写入器
//
// 任意时刻最多持有一个打开的文件句柄。每次写入前执行轮转检查（见 [RollingFile.NeedsReopen]），
// 需要时把当前文件移入编号备份链并重开。
//
// RollingFile 不是并发安全的：同一实例只能由一个写者使用，多生产者场景需由调用方串行化。
type RollingFile struct {
	baseName       string
	dailyRolling   bool
	maxFileSize    int64
	maxBackupCount int
	fileBufferSize int

	fs           FS
	now          func() time.Time
	onError      func(error)
	moveAttempts int
	moveDelay    time.Duration
	metrics      *instruments

	file      File
	fileName  string
	fileSize  int64
	pending   int
	lastCheck time.Time
	closed    bool
}

// NewRollingFile 创建 RollingFile 并打开当前应写入的文件
//
// 文件以追加模式打开；若已有文件大小达到 MaxFileSize，立即备份并截断重建。
// 打开失败返回 [ErrOpenFailed]。
//
// 默认配置：不按天滚动、不限制大小、不保留备份、无缓冲。
func NewRollingFile(filename string, opts ...Option) (*RollingFile, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	cfg := rollingConfig{Clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := validateRollingConfig(&cfg); err != nil {
		return nil, err
	}

	safePath, err := xfile.SanitizePath(filename)
	if err != nil {
		return nil, err
	}

	if cfg.FS == nil {
		cfg.FS = OSFS(cfg.FileMode)
	}

	metrics, err := newInstruments(cfg.MeterProvider)
	if err != nil {
		return nil, err
	}

	r := &RollingFile{
		baseName:       safePath,
		dailyRolling:   cfg.DailyRolling,
		maxFileSize:    cfg.MaxFileSize,
		maxBackupCount: cfg.MaxBackups,
		fileBufferSize: cfg.FileBufferSize,
		fs:             cfg.FS,
		now:            cfg.Clock,
		onError:        cfg.OnError,
		moveAttempts:   cfg.MoveAttempts,
		moveDelay:      cfg.MoveDelay,
		metrics:        metrics,
	}

	now := r.now()
	name := r.BuildFileName(now)
	if err := r.ReopenFile(name, false); err != nil {
		return nil, err
	}
	if r.fileSize >= r.maxFileSize {
		r.BackupFiles()
		if err := r.ReopenFile(name, true); err != nil {
			return nil, err
		}
	}
	r.lastCheck = now

	return r, nil
}

// ReopenFile 关闭当前句柄并以指定模式打开 name
//
// clear 为 true 时截断，否则追加。成功后记录文件名、打开时的文件大小并应用缓冲模式；
// 失败时句柄保持关闭，文件名和大小保持不变，由调用方决定是否致命。
func (r *RollingFile) ReopenFile(name string, clear bool) error {
	mode := OpenAppend
	if clear {
		mode = OpenTruncate
	}

	r.closeFile()
	r.pending = 0

	f, err := r.fs.Open(name, mode)
	if err != nil {
		return fmt.Errorf("%w: %s (%s): %w", ErrOpenFailed, name, mode, err)
	}
	if err := f.SetBufferSize(r.fileBufferSize); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %s: set buffer: %w", ErrOpenFailed, name, err)
	}

	r.file = f
	r.fileName = name
	r.fileSize = f.Size()
	return nil
}

// Write 以时钟当前时间执行轮转检查后写入，实现 io.Writer
func (r *RollingFile) Write(p []byte) (int, error) {
	return r.WriteAt(r.now(), p)
}

// WriteAt 以 now 作为记录时间执行轮转检查后写入 p
//
// 写入的字节数总会计入文件大小，即使发生短写。短写返回 [ErrWriteTruncated]；
// 轮转检查中重开失败时丢弃本次写入并返回该重开错误（[ErrOpenFailed]）。
func (r *RollingFile) WriteAt(now time.Time, p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}

	// 没有句柄时检查总会尝试重开，返回 nil 即句柄可用
	if err := r.CheckAndUpdate(now); err != nil {
		return 0, err
	}

	n, err := r.file.Write(p)
	r.fileSize += int64(n)
	r.metrics.wrote(n)
	if r.fileBufferSize > 0 && n > 0 {
		r.pending++
	}

	if n < len(p) {
		r.metrics.truncated()
		terr := fmt.Errorf("%w: wrote %d of %d bytes to %s", ErrWriteTruncated, n, len(p), r.fileName)
		if err != nil {
			return n, errors.Join(terr, err)
		}
		return n, terr
	}
	return n, err
}

// Flush 将缓冲区数据提交到文件并清零待刷新计数
//
// 没有待刷新写入或没有打开的文件时为空操作。
func (r *RollingFile) Flush() error {
	if r.pending == 0 || r.file == nil {
		return nil
	}
	r.pending = 0
	if err := r.file.Flush(); err != nil {
		return fmt.Errorf("xrotate: flush %s: %w", r.fileName, err)
	}
	return nil
}

// Rotate 手动触发轮转：备份当前文件并截断重建
func (r *RollingFile) Rotate() error {
	if r.closed {
		return ErrClosed
	}
	now := r.now()
	r.BackupFiles()
	r.metrics.rotated(ReasonManual)
	err := r.ReopenFile(r.BuildFileName(now), true)
	r.lastCheck = now
	return err
}

// Close 提交缓冲区并关闭文件
//
// 重复调用返回 [ErrClosed]。
func (r *RollingFile) Close() error {
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	r.pending = 0
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// BaseName 返回规范化后的基础文件名
func (r *RollingFile) BaseName() string { return r.baseName }

// FileName 返回当前打开（或最后一次成功打开）的文件名
func (r *RollingFile) FileName() string { return r.fileName }

// Size 返回当前文件的字节数（含打开前已存在的内容）
func (r *RollingFile) Size() int64 { return r.fileSize }

// Pending 返回自上次刷新以来的写入次数，无缓冲时始终为 0
func (r *RollingFile) Pending() int { return r.pending }

// Buffered 返回是否启用了文件缓冲
func (r *RollingFile) Buffered() bool { return r.fileBufferSize > 0 }

// closeFile 关闭当前句柄，错误只上报不返回
func (r *RollingFile) closeFile() {
	if r.file == nil {
		return
	}
	if err := r.file.Close(); err != nil {
		r.reportError(fmt.Errorf("xrotate: close %s: %w", r.fileName, err))
	}
	r.file = nil
}

// reportError 通过回调上报内部错误，回调 panic 被隔离
func (r *RollingFile) reportError(err error) {
	if err != nil && r.onError != nil {
		defer func() { recover() }() //nolint:errcheck // recover 返回值无需检查
		r.onError(err)
	}
}

package xappender

import (
	"fmt"
	"io"
	"strings"
)

// ConsoleAppender 写入标准输出或标准错误的输出端
type ConsoleAppender struct {
	opts options

	w   io.Writer
	buf []byte
}

// NewConsoleAppender 创建未初始化的控制台输出端
func NewConsoleAppender(opts ...Option) *ConsoleAppender {
	return &ConsoleAppender{opts: applyOptions(opts)}
}

// Type 返回 "console"
func (a *ConsoleAppender) Type() string { return TypeConsole }

// Initialize 根据 Console.Stream 选择输出流
func (a *ConsoleAppender) Initialize(cfg Config) error {
	if a.w != nil {
		return ErrAlreadyInitialized
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Console.Stream)) {
	case "", "stdout":
		a.w = a.opts.stdout
	case "stderr":
		a.w = a.opts.stderr
	default:
		return fmt.Errorf("%w: console stream %q", ErrInvalidArgument, cfg.Console.Stream)
	}
	return nil
}

// Output 写入格式化的记录
func (a *ConsoleAppender) Output(rec Record) error {
	if a.w == nil {
		return ErrNotInitialized
	}
	if rec.Time.IsZero() {
		rec.Time = a.opts.clock()
	}
	a.buf = a.opts.formatter.Format(a.buf[:0], rec)
	n, err := a.w.Write(a.buf)
	if err == nil && n < len(a.buf) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrWriteTruncated, n, len(a.buf))
	}
	return err
}

// Flush 无缓冲，空操作
func (a *ConsoleAppender) Flush() error { return nil }

// Finalize 重置为未初始化状态，不关闭标准流
func (a *ConsoleAppender) Finalize() error {
	a.w = nil
	a.buf = nil
	return nil
}

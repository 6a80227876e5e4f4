package xlog

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

// 编译时接口检查
var (
	_ Logger          = (*xlogger)(nil)
	_ LoggerWithLevel = (*xlogger)(nil)
)

// xlogger Logger 接口的实现
type xlogger struct {
	handler        slog.Handler
	levelVar       *slog.LevelVar
	onError        func(error)
	errorCount     *atomic.Uint64 // 内部错误计数器，派生 logger 共享
	addSource      bool
	inErrorHandler *atomic.Bool // 防止 onError 递归调用，派生 logger 共享
}

// log 通用日志方法
//
//go:noinline
func (l *xlogger) log(ctx context.Context, level Level, msg string, attrs []slog.Attr) {
	if !l.handler.Enabled(ctx, slog.Level(level)) {
		return
	}

	// runtime.Callers 开销不可忽略，只在启用 AddSource 时捕获
	var pc uintptr
	if l.addSource {
		var pcs [1]uintptr
		// Callers(0) → log(1) → Info 等(2) → 业务代码(3)
		runtime.Callers(3, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pc)
	r.AddAttrs(attrs...)

	if err := l.handler.Handle(ctx, r); err != nil {
		l.handleError(err)
	}
}

// handleError 处理 Handler.Handle 失败
//
// 回调期间再次出错时跳过回调（递归保护），回调 panic 被隔离。
// errorCount 计入所有错误。
func (l *xlogger) handleError(err error) {
	l.errorCount.Add(1)
	if l.onError == nil {
		return
	}
	if !l.inErrorHandler.CompareAndSwap(false, true) {
		return
	}
	defer l.inErrorHandler.Store(false)
	defer func() {
		if r := recover(); r != nil {
			l.errorCount.Add(1)
		}
	}()
	l.onError(err)
}

// Trace 记录 Trace 级别日志
func (l *xlogger) Trace(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelTrace, msg, attrs)
}

// Debug 记录 Debug 级别日志
func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelDebug, msg, attrs)
}

// Info 记录 Info 级别日志
func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelInfo, msg, attrs)
}

// Warn 记录 Warn 级别日志
func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelWarn, msg, attrs)
}

// Error 记录 Error 级别日志
func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelError, msg, attrs)
}

// Fatal 记录 Fatal 级别日志
func (l *xlogger) Fatal(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelFatal, msg, attrs)
}

// With 返回带额外属性的派生 Logger
func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	child := *l
	child.handler = l.handler.WithAttrs(attrs)
	return &child
}

// WithGroup 返回带分组的派生 Logger
func (l *xlogger) WithGroup(name string) Logger {
	if name == "" {
		return l
	}
	child := *l
	child.handler = l.handler.WithGroup(name)
	return &child
}

// SetLevel 动态设置日志级别
func (l *xlogger) SetLevel(level Level) {
	l.levelVar.Set(slog.Level(level))
}

// GetLevel 获取当前日志级别
func (l *xlogger) GetLevel() Level {
	return Level(l.levelVar.Level())
}

// Enabled 检查指定级别是否启用
func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	return l.handler.Enabled(ctx, slog.Level(level))
}

// ErrorCount 返回内部错误次数
func (l *xlogger) ErrorCount() uint64 {
	return l.errorCount.Load()
}

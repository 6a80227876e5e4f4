package xlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xroll/pkg/observability/xrotate"
)

// Builder 日志配置构建器
type Builder struct {
	output    io.Writer
	levelVar  *slog.LevelVar
	format    string
	addSource bool
	handler   slog.Handler
	closers   []io.Closer
	onError   func(error)
	err       error
}

// New 创建配置构建器，默认输出到 stderr、Info 级别、text 格式
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	return &Builder{
		output:   os.Stderr,
		levelVar: levelVar,
		format:   "text",
	}
}

// SetOutput 设置日志输出目标
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if b.err != nil {
		return b
	}
	b.output = w
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	if b.err != nil {
		return b
	}
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别
func (b *Builder) SetLevelString(s string) *Builder {
	if b.err != nil {
		return b
	}
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json
func (b *Builder) SetFormat(format string) *Builder {
	if b.err != nil {
		return b
	}
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == "" {
		// 空值视为使用默认格式，避免误把“没填”变成配置错误。
		b.format = "text"
		return b
	}
	if normalized != "text" && normalized != "json" {
		b.err = fmt.Errorf("xlog: unknown format %q", format)
		return b
	}
	b.format = normalized
	return b
}

// SetAddSource 是否在日志中添加源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	if b.err != nil {
		return b
	}
	b.addSource = enable
	return b
}

// SetRotation 输出到按日期/大小滚动的日志文件
//
// 文件立即打开，失败时记为构建错误。text/json handler 内部的互斥锁串行化写入，
// 同一个 RollingFile 不会被并发访问。cleanup 负责关闭文件。
func (b *Builder) SetRotation(filename string, opts ...xrotate.Option) *Builder {
	if b.err != nil {
		return b
	}
	if b.onError != nil {
		opts = append([]xrotate.Option{xrotate.WithOnError(b.onError)}, opts...)
	}
	rf, err := xrotate.NewRollingFile(filename, opts...)
	if err != nil {
		b.err = err
		return b
	}
	b.output = rf
	b.closers = append(b.closers, rf)
	return b
}

// SetHandler 使用自定义 slog.Handler，SetOutput/SetFormat/SetRotation 随之失效
//
// handler 实现 io.Closer 时由 cleanup 关闭。级别由 Builder 的级别和 handler 自身的
// Enabled 共同决定。
func (b *Builder) SetHandler(h slog.Handler) *Builder {
	if b.err != nil {
		return b
	}
	if h == nil {
		b.err = errors.New("xlog: nil handler")
		return b
	}
	b.handler = h
	if c, ok := h.(io.Closer); ok {
		b.closers = append(b.closers, c)
	}
	return b
}

// SetOnError 设置内部错误回调
//
// Handler.Handle 失败（磁盘满、权限问题、writer 异常）时调用。之后调用的 SetRotation
// 也把轮转过程中的备份失败交给此回调。
//
// 回调在热路径同步执行，应保持轻量；回调内部再次触发日志错误不会导致递归。
func (b *Builder) SetOnError(fn func(error)) *Builder {
	if b.err != nil {
		return b
	}
	b.onError = fn
	return b
}

// Build 构建 Logger 实例
//
// 返回值：
//   - LoggerWithLevel: 日志实例，同时支持动态级别控制
//   - func() error: 清理函数，用于释放资源（如关闭文件），可重复调用
//   - error: 配置错误（first-error-wins）
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	handler := b.handler
	if handler == nil {
		opts := &slog.HandlerOptions{
			Level:       b.levelVar,
			AddSource:   b.addSource,
			ReplaceAttr: replaceLevelName,
		}
		switch b.format {
		case "json":
			handler = slog.NewJSONHandler(b.output, opts)
		default:
			handler = slog.NewTextHandler(b.output, opts)
		}
	} else {
		handler = &levelHandler{Handler: handler, level: b.levelVar}
	}

	logger := &xlogger{
		handler:        handler,
		levelVar:       b.levelVar,
		onError:        b.onError,
		errorCount:     new(atomic.Uint64),
		addSource:      b.addSource,
		inErrorHandler: new(atomic.Bool),
	}

	return logger, b.createCleanup(), nil
}

// createCleanup 创建清理函数
func (b *Builder) createCleanup() func() error {
	var once sync.Once
	closers := b.closers

	return func() error {
		var err error
		once.Do(func() {
			for _, c := range closers {
				err = errors.Join(err, c.Close())
			}
		})
		return err
	}
}

// replaceLevelName 让 text/json 输出使用 TRACE/FATAL 等具名级别
func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok {
		a.Value = slog.StringValue(Level(lvl).String())
	}
	return a
}

// levelHandler 在自定义 handler 外叠加 Builder 的动态级别
type levelHandler struct {
	slog.Handler
	level *slog.LevelVar
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.Handler.Enabled(ctx, level)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{Handler: h.Handler.WithGroup(name), level: h.level}
}

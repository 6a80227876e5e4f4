package xappender

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/omeyang/xroll/pkg/observability/xlog"
)

// HandlerOptions Handler 配置
type HandlerOptions struct {
	// Level 最低输出级别，nil 表示输出全部级别（含 TRACE）
	Level slog.Leveler

	// Logger 记录中的 logger 名称
	Logger string
}

// Handler 把 slog 记录转换为 [Record] 交给输出端的 slog.Handler
//
// 所有派生的 Handler（WithAttrs/WithGroup）共享同一个输出端和同一把锁，
// 对输出端的调用全部串行化，因此可以被多个 goroutine 同时使用。
type Handler struct {
	shared *handlerShared
	level  slog.Leveler
	logger string
	attrs  []slog.Attr
	groups []string
}

type handlerShared struct {
	mu       sync.Mutex
	appender LogAppender
	closed   bool
}

// NewHandler 创建包装 appender 的 Handler，appender 应已初始化
func NewHandler(appender LogAppender, opts *HandlerOptions) *Handler {
	h := &Handler{
		shared: &handlerShared{appender: appender},
		level:  slog.Level(xlog.LevelTrace),
	}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.logger = opts.Logger
	}
	return h
}

// Enabled 实现 slog.Handler 接口
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle 实现 slog.Handler 接口
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	rec := Record{
		Time:    r.Time,
		Level:   xlog.Level(r.Level),
		Logger:  h.logger,
		Message: r.Message,
		Attrs:   append(slices.Clip(h.attrs), nestAttrs(h.groups, attrs)...),
	}

	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	if h.shared.closed {
		return ErrNotInitialized
	}
	return h.shared.appender.Output(rec)
}

// WithAttrs 实现 slog.Handler 接口
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = append(slices.Clip(h.attrs), nestAttrs(h.groups, attrs)...)
	return &h2
}

// WithGroup 实现 slog.Handler 接口
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(slices.Clip(h.groups), name)
	return &h2
}

// WithLogger 返回使用另一个 logger 名称、共享同一输出端的 Handler
func (h *Handler) WithLogger(name string) *Handler {
	h2 := *h
	h2.logger = name
	return &h2
}

// Flush 提交输出端的缓冲区
func (h *Handler) Flush() error {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	if h.shared.closed {
		return nil
	}
	return h.shared.appender.Flush()
}

// Close 结束输出端（Finalize），之后的写入和 Reload 返回 [ErrNotInitialized]，可重复调用
func (h *Handler) Close() error {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	if h.shared.closed {
		return nil
	}
	h.shared.closed = true
	return h.shared.appender.Finalize()
}

// Reload 按新配置创建输出端并替换当前输出端
//
// 新输出端初始化失败时保留旧输出端并返回错误。替换前先刷新旧输出端，
// 使新输出端打开同一文件时看到完整的已有内容。Close 之后返回 [ErrNotInitialized]，不创建输出端。
func (h *Handler) Reload(cfg Config, opts ...Option) error {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	if h.shared.closed {
		return ErrNotInitialized
	}

	old := h.shared.appender
	flushErr := old.Flush()

	next, err := New(cfg, opts...)
	if err != nil {
		return errors.Join(err, flushErr)
	}
	h.shared.appender = next
	return errors.Join(flushErr, old.Finalize())
}

// Appender 返回当前输出端，仅用于检查状态，不得绕过 Handler 写入
func (h *Handler) Appender() LogAppender {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	return h.shared.appender
}

// nestAttrs 把 attrs 依次包进 groups 表示的嵌套分组
func nestAttrs(groups []string, attrs []slog.Attr) []slog.Attr {
	if len(groups) == 0 || len(attrs) == 0 {
		return attrs
	}
	for i := len(groups) - 1; i >= 0; i-- {
		attrs = []slog.Attr{{Key: groups[i], Value: slog.GroupValue(attrs...)}}
	}
	return attrs
}

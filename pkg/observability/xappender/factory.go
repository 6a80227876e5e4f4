package xappender

import (
	"fmt"
	"strings"
)

// NewAppender 按类型创建未初始化的输出端，空类型视为 file
func NewAppender(typ string, opts ...Option) (LogAppender, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", TypeFile:
		return NewRollingFileAppender(opts...), nil
	case TypeConsole:
		return NewConsoleAppender(opts...), nil
	case TypeLumberjack:
		return NewLumberjackAppender(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

// New 按 cfg.Type 创建输出端并完成初始化
func New(cfg Config, opts ...Option) (LogAppender, error) {
	a, err := NewAppender(cfg.Type, opts...)
	if err != nil {
		return nil, err
	}
	if err := a.Initialize(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

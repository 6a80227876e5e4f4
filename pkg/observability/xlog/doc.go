// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、滚动文件、自定义 handler）
//   - 动态级别调整（运行时热更新）
//   - 内部错误回调，带递归保护和 panic 隔离
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，后续 Set 操作被跳过）。
// Builder 方法：SetLevel、SetLevelString、SetFormat、SetOutput、SetAddSource、
// SetRotation、SetHandler、SetOnError。
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetRotation("/var/log/app.log",
//			xrotate.WithDailyRolling(true),
//			xrotate.WithMaxFileSize(100<<20),
//			xrotate.WithMaxBackups(5)).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// [Builder.SetHandler] 接入任意 slog.Handler，例如 xappender.Handler。
//
// # 日志级别
//
// LevelTrace(-8)、LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)、LevelFatal(12)。
// 可通过 [ParseLevel] 从字符串解析。Level 实现 encoding.TextMarshaler/TextUnmarshaler，
// 支持配置文件直接序列化/反序列化。Fatal 只是级别，不会退出进程。
//
// # 派生 Logger 与级别控制
//
// [Logger.With] 和 [Logger.WithGroup] 返回 [Logger] 接口（不含 [Leveler]）。
// 底层实现同时实现了 [LoggerWithLevel]，可通过类型断言获取级别控制能力。
// 派生 logger 共享父级的 LevelVar，动态级别变更会同步生效。
package xlog

package xappender

import (
	"log/slog"
	"time"

	"github.com/omeyang/xroll/pkg/observability/xlog"
)

// 输出端类型名，与 [Config].Type 对应
const (
	TypeFile       = "file"
	TypeConsole    = "console"
	TypeLumberjack = "lumberjack"
)

// LogAppender 日志输出端
//
// 生命周期：Initialize -> Output/Flush ... -> Finalize，Finalize 之后可以再次 Initialize。
// 实现不保证并发安全，并发场景由 [Handler] 串行化。
type LogAppender interface {
	// Initialize 按配置打开资源。已初始化时返回 [ErrAlreadyInitialized]。
	Initialize(cfg Config) error

	// Output 格式化并写入一条记录。未初始化时返回 [ErrNotInitialized]。
	Output(rec Record) error

	// Flush 提交缓冲区中的数据，没有待提交数据时为空操作。
	Flush() error

	// Finalize 提交缓冲、释放资源并重置为未初始化状态，可重复调用。
	Finalize() error

	// Type 返回输出端类型名。
	Type() string
}

// Record 一条日志记录
type Record struct {
	// Time 记录时间，零值表示使用输出端的时钟
	Time time.Time

	// Level 日志级别
	Level xlog.Level

	// Logger 产生记录的 logger 名称，可为空
	Logger string

	// Message 日志消息
	Message string

	// Attrs 结构化属性
	Attrs []slog.Attr
}

package xappender

import (
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xroll/pkg/observability/xrotate"
)

// options 输出端的运行时依赖（与配置文件无关的部分）
type options struct {
	clock         func() time.Time
	formatter     Formatter
	onError       func(error)
	meterProvider metric.MeterProvider
	fs            xrotate.FS
	moveAttempts  int
	moveDelay     time.Duration
	stdout        io.Writer
	stderr        io.Writer
}

// Option 输出端选项
type Option func(*options)

func defaultOptions() options {
	return options{
		clock:     time.Now,
		formatter: TextFormatter{},
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithClock 替换时钟，nil 被忽略
//
// 用于初始化时确定文件名，以及时间为零值的记录。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithFormatter 替换记录格式，nil 被忽略
func WithFormatter(f Formatter) Option {
	return func(o *options) {
		if f != nil {
			o.formatter = f
		}
	}
}

// WithOnError 设置内部错误回调（备份移动失败等不影响写入的错误）
//
// 回调不得向同一输出端写入。
func WithOnError(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// WithMeterProvider 设置 OpenTelemetry MeterProvider
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithFS 替换文件输出端使用的文件系统
func WithFS(fs xrotate.FS) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithMoveRetry 设置备份移动的重试次数和间隔
func WithMoveRetry(attempts int, delay time.Duration) Option {
	return func(o *options) {
		o.moveAttempts = attempts
		o.moveDelay = delay
	}
}

// WithConsoleWriters 替换控制台输出端的 stdout 和 stderr，nil 被忽略
func WithConsoleWriters(stdout, stderr io.Writer) Option {
	return func(o *options) {
		if stdout != nil {
			o.stdout = stdout
		}
		if stderr != nil {
			o.stderr = stderr
		}
	}
}

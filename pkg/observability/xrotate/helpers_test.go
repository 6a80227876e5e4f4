package xrotate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

// fakeClock 可控时钟
type fakeClock struct {
	t time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// jan1 返回 2024-01-01 的本地时间
func jan1(hour, minute, sec int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, sec, 0, time.Local)
}

// readFile 读取文件内容，不存在时返回空串
func readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// tempLog 返回临时目录下的日志文件路径
func tempLog(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

// newMockedRolling 直接组装一个已打开 file 的 RollingFile，用于 mock 场景
func newMockedRolling(t *testing.T, fs FS, file File, name string, opts ...Option) *RollingFile {
	t.Helper()
	cfg := rollingConfig{Clock: time.Now, FS: fs}
	for _, opt := range opts {
		opt(&cfg)
	}
	require.NoError(t, validateRollingConfig(&cfg))
	metrics, err := newInstruments(noop.NewMeterProvider())
	require.NoError(t, err)

	return &RollingFile{
		baseName:       name,
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
		file:           file,
		fileName:       name,
		lastCheck:      cfg.Clock(),
	}
}

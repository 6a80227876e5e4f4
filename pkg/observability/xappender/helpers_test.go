package xappender

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func jan1(hour, minute, sec int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, sec, 0, time.Local)
}

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

// rawFormatter 只输出消息本身，便于精确控制写入字节数
var rawFormatter = FormatterFunc(func(dst []byte, rec Record) []byte {
	return append(dst, rec.Message...)
})

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

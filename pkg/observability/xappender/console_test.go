package xappender

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xroll/pkg/observability/xlog"
)

// shortWriter 每次只接受一半数据
type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestConsoleAppenderStreams(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		stream     string
		wantStdout string
		wantStderr string
	}{
		{name: "默认 stdout", stream: "", wantStdout: "2024-01-01 00:00:00.000 INFO hi\n"},
		{name: "显式 stdout", stream: "stdout", wantStdout: "2024-01-01 00:00:00.000 INFO hi\n"},
		{name: "stderr 大小写不敏感", stream: " STDERR ", wantStderr: "2024-01-01 00:00:00.000 INFO hi\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			a := NewConsoleAppender(WithConsoleWriters(&stdout, &stderr))
			require.NoError(t, a.Initialize(Config{Type: TypeConsole, Console: ConsoleConfig{Stream: tt.stream}}))
			defer a.Finalize()

			require.NoError(t, a.Output(Record{Time: at, Level: xlog.LevelInfo, Message: "hi"}))
			assert.Equal(t, tt.wantStdout, stdout.String())
			assert.Equal(t, tt.wantStderr, stderr.String())
		})
	}
}

func TestConsoleAppenderLifecycle(t *testing.T) {
	a := NewConsoleAppender(WithConsoleWriters(io.Discard, io.Discard))
	assert.Equal(t, "console", a.Type())
	assert.ErrorIs(t, a.Output(Record{}), ErrNotInitialized)

	assert.ErrorIs(t, a.Initialize(Config{Console: ConsoleConfig{Stream: "tty"}}), ErrInvalidArgument)

	require.NoError(t, a.Initialize(Config{}))
	assert.ErrorIs(t, a.Initialize(Config{}), ErrAlreadyInitialized)
	assert.NoError(t, a.Flush())
	require.NoError(t, a.Finalize())
	assert.ErrorIs(t, a.Output(Record{}), ErrNotInitialized)
}

func TestConsoleAppenderWriteErrors(t *testing.T) {
	a := NewConsoleAppender(WithConsoleWriters(shortWriter{}, nil))
	require.NoError(t, a.Initialize(Config{}))
	assert.ErrorIs(t, a.Output(Record{Message: "truncated"}), ErrWriteTruncated)

	b := NewConsoleAppender(WithConsoleWriters(failWriter{}, nil))
	require.NoError(t, b.Initialize(Config{}))
	assert.EqualError(t, b.Output(Record{Message: "x"}), "broken pipe")
}

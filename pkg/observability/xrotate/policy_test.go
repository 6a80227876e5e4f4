package xrotate

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const mockName = "/logs/app.log"

var errDisk = errors.New("disk failure")

func TestBuildFileName(t *testing.T) {
	at := time.Date(2024, 3, 7, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name  string
		base  string
		daily bool
		want  string
	}{
		{name: "不按天滚动", base: "app.log", daily: false, want: "app.log"},
		{name: "按天滚动", base: "app.log", daily: true, want: "app.log.2024-03-07"},
		{name: "带目录", base: "/var/log/svc.log", daily: true, want: "/var/log/svc.log.2024-03-07"},
		{name: "无扩展名", base: "trace", daily: true, want: "trace.2024-03-07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildFileName(tt.base, tt.daily, at))
		})
	}
}

func TestBuildFileNameUsesTimeLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	at := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC) // 东八区已是 1 月 2 日

	assert.Equal(t, "app.log.2024-01-01", buildFileName("app.log", true, at))
	assert.Equal(t, "app.log.2024-01-02", buildFileName("app.log", true, at.In(loc)))
}

func TestBackupName(t *testing.T) {
	assert.Equal(t, "app.log.1", backupName("app.log", 1))
	assert.Equal(t, "app.log.2024-01-01.12", backupName("app.log.2024-01-01", 12))
}

func TestNeedsReopen(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		noFile    bool
		candidate string
		exists    *bool
		want      Decision
	}{
		{
			name: "大小达到上限", size: 100, candidate: mockName,
			want: Decision{Reopen: true, Clear: true, Backup: true, Reason: ReasonSize},
		},
		{
			name: "大小优先于改名", size: 150, candidate: mockName + ".2024-01-02",
			want: Decision{Reopen: true, Clear: true, Backup: true, Reason: ReasonSize},
		},
		{
			name: "没有打开的句柄", size: 10, noFile: true, candidate: mockName,
			want: Decision{Reopen: true, Reason: ReasonRecover},
		},
		{
			name: "文件名变化", size: 10, candidate: mockName + ".2024-01-02",
			want: Decision{Reopen: true, Reason: ReasonDate},
		},
		{
			name: "文件被删除", size: 10, candidate: mockName, exists: new(bool),
			want: Decision{Reopen: true, Clear: true, Reason: ReasonMissing},
		},
		{
			name: "无需重开", size: 99, candidate: mockName, exists: ptr(true),
			want: Decision{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fs := NewMockFS(ctrl)
			var file File = NewMockFile(ctrl)
			if tt.noFile {
				file = nil
			}
			if tt.exists != nil {
				fs.EXPECT().Exists(tt.candidate).Return(*tt.exists)
			}

			r := newMockedRolling(t, fs, file, mockName, WithMaxFileSize(100))
			r.fileSize = tt.size

			d := r.NeedsReopen(tt.candidate)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.want.Reason.String(), d.Reason.String())
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestReasonString(t *testing.T) {
	assert.Equal(t, "none", ReasonNone.String())
	assert.Equal(t, "size", ReasonSize.String())
	assert.Equal(t, "recover", ReasonRecover.String())
	assert.Equal(t, "date", ReasonDate.String())
	assert.Equal(t, "missing", ReasonMissing.String())
	assert.Equal(t, "manual", ReasonManual.String())
	assert.Equal(t, "none", Reason(99).String())
}

func TestCheckAndUpdateSkipsSameSecond(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl) // 同一秒内不得访问文件系统
	file := NewMockFile(ctrl)
	clock := newFakeClock(jan1(8, 0, 0))

	r := newMockedRolling(t, fs, file, mockName, WithClock(clock.Now), WithMaxFileSize(100))
	r.fileSize = 50

	require.NoError(t, r.CheckAndUpdate(clock.Now().Add(999*time.Millisecond)))
}

func TestCheckAndUpdateSizeIgnoresSameSecond(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl)
	file := NewMockFile(ctrl)
	next := NewMockFile(ctrl)
	clock := newFakeClock(jan1(8, 0, 0))

	r := newMockedRolling(t, fs, file, mockName, WithClock(clock.Now), WithMaxFileSize(100))
	r.fileSize = 100

	gomock.InOrder(
		file.EXPECT().Close().Return(nil),
		fs.EXPECT().Open(mockName, OpenTruncate).Return(next, nil),
		next.EXPECT().SetBufferSize(0).Return(nil),
		next.EXPECT().Size().Return(int64(0)),
	)

	require.NoError(t, r.CheckAndUpdate(clock.Now()))
	assert.Zero(t, r.Size())
}

// =============================================================================
// 备份链
// =============================================================================

func TestBackupFilesShiftOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl)
	file := NewMockFile(ctrl)

	r := newMockedRolling(t, fs, file, mockName, WithMaxBackups(3))

	gomock.InOrder(
		fs.EXPECT().Exists(mockName).Return(true),
		file.EXPECT().Close().Return(nil),
		fs.EXPECT().Exists(mockName+".1").Return(true),
		fs.EXPECT().Exists(mockName+".2").Return(true),
		fs.EXPECT().Exists(mockName+".3").Return(true),
		fs.EXPECT().Move(mockName+".2", mockName+".3", true).Return(nil),
		fs.EXPECT().Move(mockName+".1", mockName+".2", true).Return(nil),
		fs.EXPECT().Move(mockName, mockName+".1", true).Return(nil),
	)

	r.BackupFiles()
	assert.Nil(t, r.file, "备份前关闭句柄")
}

func TestBackupFilesStopsProbingAtGap(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl)
	file := NewMockFile(ctrl)

	r := newMockedRolling(t, fs, file, mockName, WithMaxBackups(5))

	gomock.InOrder(
		fs.EXPECT().Exists(mockName).Return(true),
		file.EXPECT().Close().Return(nil),
		fs.EXPECT().Exists(mockName+".1").Return(true),
		fs.EXPECT().Exists(mockName+".2").Return(false),
		fs.EXPECT().Move(mockName+".1", mockName+".2", true).Return(nil),
		fs.EXPECT().Move(mockName, mockName+".1", true).Return(nil),
	)

	r.BackupFiles()
}

func TestBackupFilesNoop(t *testing.T) {
	t.Run("不保留备份", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := newMockedRolling(t, NewMockFS(ctrl), NewMockFile(ctrl), mockName)
		r.BackupFiles()
		assert.NotNil(t, r.file)
	})

	t.Run("当前文件不存在", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fs := NewMockFS(ctrl)
		fs.EXPECT().Exists(mockName).Return(false)
		r := newMockedRolling(t, fs, NewMockFile(ctrl), mockName, WithMaxBackups(2))
		r.BackupFiles()
		assert.NotNil(t, r.file)
	})
}

func TestBackupMoveFailureContinues(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl)
	file := NewMockFile(ctrl)
	next := NewMockFile(ctrl)

	var reported []error
	r := newMockedRolling(t, fs, file, mockName,
		WithMaxBackups(3), WithMaxFileSize(10),
		WithOnError(func(err error) { reported = append(reported, err) }))
	r.fileSize = 10

	gomock.InOrder(
		fs.EXPECT().Exists(mockName).Return(true),
		file.EXPECT().Close().Return(nil),
		fs.EXPECT().Exists(mockName+".1").Return(true),
		fs.EXPECT().Exists(mockName+".2").Return(false),
		fs.EXPECT().Move(mockName+".1", mockName+".2", true).Return(errDisk),
		fs.EXPECT().Move(mockName, mockName+".1", true).Return(nil),
		fs.EXPECT().Open(mockName, OpenTruncate).Return(next, nil),
		next.EXPECT().SetBufferSize(0).Return(nil),
		next.EXPECT().Size().Return(int64(0)),
	)

	require.NoError(t, r.CheckAndUpdate(time.Now()), "备份失败不影响重开")
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], ErrBackupMoveFailed)
	assert.ErrorIs(t, reported[0], errDisk)
}

func TestBackupMoveRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl)
	file := NewMockFile(ctrl)

	var reported []error
	r := newMockedRolling(t, fs, file, mockName,
		WithMaxBackups(1), WithMoveRetry(3, time.Millisecond),
		WithOnError(func(err error) { reported = append(reported, err) }))

	gomock.InOrder(
		fs.EXPECT().Exists(mockName).Return(true),
		file.EXPECT().Close().Return(nil),
		fs.EXPECT().Exists(mockName+".1").Return(false),
		fs.EXPECT().Move(mockName, mockName+".1", true).Return(errDisk).Times(2),
		fs.EXPECT().Move(mockName, mockName+".1", true).Return(nil),
	)

	r.BackupFiles()
	assert.Empty(t, reported, "重试成功后不上报")
}

func TestBackupMoveRetryExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl)
	file := NewMockFile(ctrl)

	var reported []error
	r := newMockedRolling(t, fs, file, mockName,
		WithMaxBackups(1), WithMoveRetry(2, 0),
		WithOnError(func(err error) { reported = append(reported, err) }))

	gomock.InOrder(
		fs.EXPECT().Exists(mockName).Return(true),
		file.EXPECT().Close().Return(nil),
		fs.EXPECT().Exists(mockName+".1").Return(false),
		fs.EXPECT().Move(mockName, mockName+".1", true).Return(errDisk).Times(2),
	)

	r.BackupFiles()
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], errDisk)
}

// =============================================================================
// 文件句柄
// =============================================================================

func TestReopenFailureThenRecover(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl)
	file := NewMockFile(ctrl)
	next := NewMockFile(ctrl)
	clock := newFakeClock(jan1(10, 0, 0))

	r := newMockedRolling(t, fs, file, mockName, WithClock(clock.Now))
	r.fileSize = 5

	gomock.InOrder(
		fs.EXPECT().Exists(mockName).Return(false),
		file.EXPECT().Close().Return(nil),
		fs.EXPECT().Open(mockName, OpenTruncate).Return(nil, errDisk),
		fs.EXPECT().Open(mockName, OpenAppend).Return(next, nil),
		next.EXPECT().SetBufferSize(0).Return(nil),
		next.EXPECT().Size().Return(int64(0)),
		next.EXPECT().Write([]byte("line\n")).Return(5, nil),
	)

	clock.Advance(time.Second)
	_, err := r.Write([]byte("line\n"))
	require.ErrorIs(t, err, ErrOpenFailed)
	assert.ErrorIs(t, err, errDisk)
	assert.Nil(t, r.file)

	// 同一秒内也会重试：没有句柄时不跳过检查
	n, err := r.Write([]byte("line\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.EqualValues(t, 5, r.Size())
}

func TestReopenSetBufferFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl)
	next := NewMockFile(ctrl)

	r := newMockedRolling(t, fs, nil, mockName, WithFileBufferSize(64))

	gomock.InOrder(
		fs.EXPECT().Open(mockName, OpenAppend).Return(next, nil),
		next.EXPECT().SetBufferSize(64).Return(errDisk),
		next.EXPECT().Close().Return(nil),
	)

	err := r.ReopenFile(mockName, false)
	require.ErrorIs(t, err, ErrOpenFailed)
	assert.Nil(t, r.file)
}

func TestReopenReportsCloseError(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl)
	file := NewMockFile(ctrl)
	next := NewMockFile(ctrl)

	var reported error
	r := newMockedRolling(t, fs, file, mockName, WithOnError(func(err error) { reported = err }))

	gomock.InOrder(
		file.EXPECT().Close().Return(errDisk),
		fs.EXPECT().Open(mockName, OpenAppend).Return(next, nil),
		next.EXPECT().SetBufferSize(0).Return(nil),
		next.EXPECT().Size().Return(int64(42)),
	)

	require.NoError(t, r.ReopenFile(mockName, false))
	assert.ErrorIs(t, reported, errDisk)
	assert.EqualValues(t, 42, r.Size())
}

func TestWriteTruncated(t *testing.T) {
	ctrl := gomock.NewController(t)
	file := NewMockFile(ctrl)
	clock := newFakeClock(jan1(10, 0, 0))

	r := newMockedRolling(t, NewMockFS(ctrl), file, mockName, WithClock(clock.Now))
	file.EXPECT().Write([]byte("hello")).Return(3, io.ErrShortWrite)

	n, err := r.Write([]byte("hello"))
	assert.Equal(t, 3, n)
	require.ErrorIs(t, err, ErrWriteTruncated)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.EqualValues(t, 3, r.Size(), "短写的字节同样计入大小")
}

func TestWriteTruncatedWithoutError(t *testing.T) {
	ctrl := gomock.NewController(t)
	file := NewMockFile(ctrl)
	clock := newFakeClock(jan1(10, 0, 0))

	r := newMockedRolling(t, NewMockFS(ctrl), file, mockName, WithClock(clock.Now))
	file.EXPECT().Write([]byte("hello")).Return(0, nil)

	_, err := r.Write([]byte("hello"))
	require.ErrorIs(t, err, ErrWriteTruncated)
}

func TestWriteWithoutHandle(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl)
	clock := newFakeClock(jan1(10, 0, 0))

	r := newMockedRolling(t, fs, nil, mockName, WithClock(clock.Now))
	fs.EXPECT().Open(mockName, OpenAppend).Return(nil, errDisk)

	_, err := r.Write([]byte("x"))
	require.ErrorIs(t, err, ErrOpenFailed)
}

func TestFlushError(t *testing.T) {
	ctrl := gomock.NewController(t)
	file := NewMockFile(ctrl)
	clock := newFakeClock(jan1(10, 0, 0))

	r := newMockedRolling(t, NewMockFS(ctrl), file, mockName,
		WithClock(clock.Now), WithFileBufferSize(128))

	file.EXPECT().Write(gomock.Any()).Return(1, nil)
	file.EXPECT().Flush().Return(errDisk)

	_, err := r.Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Pending())

	err = r.Flush()
	require.ErrorIs(t, err, errDisk)
	assert.Zero(t, r.Pending(), "刷新失败也清零待刷新计数")
}

func TestReportErrorCallbackPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFS(ctrl)
	file := NewMockFile(ctrl)
	next := NewMockFile(ctrl)

	r := newMockedRolling(t, fs, file, mockName, WithOnError(func(error) { panic("boom") }))

	gomock.InOrder(
		file.EXPECT().Close().Return(errDisk),
		fs.EXPECT().Open(mockName, OpenAppend).Return(next, nil),
		next.EXPECT().SetBufferSize(0).Return(nil),
		next.EXPECT().Size().Return(int64(0)),
	)

	assert.NotPanics(t, func() {
		require.NoError(t, r.ReopenFile(mockName, false))
	})
}

func TestExportedNameHelpers(t *testing.T) {
	day := time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "app.log", FileNameFor("app.log", false, day))
	assert.Equal(t, "app.log.2024-01-01", FileNameFor("app.log", true, day))
	assert.Equal(t, "app.log.2024-01-01.3", BackupFileName("app.log.2024-01-01", 3))
}

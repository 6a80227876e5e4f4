package xrotate

//go:generate mockgen -source=fs.go -destination=fs_mock_test.go -package=xrotate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/omeyang/xroll/pkg/util/xfile"
)

// DefaultFileMode 日志文件默认权限
const DefaultFileMode os.FileMode = 0o644

// OpenMode 日志文件打开方式
type OpenMode int

const (
	// OpenAppend 追加写入，保留已有内容
	OpenAppend OpenMode = iota
	// OpenTruncate 截断后写入
	OpenTruncate
)

// String 返回打开方式名称
func (m OpenMode) String() string {
	switch m {
	case OpenAppend:
		return "append"
	case OpenTruncate:
		return "truncate"
	default:
		return fmt.Sprintf("OpenMode(%d)", int(m))
	}
}

// FS 轮转器依赖的文件系统操作
//
// 默认实现为 [OSFS]，测试中可替换为 mock 以覆盖打开失败、重命名失败等路径。
type FS interface {
	// Exists 判断文件是否存在
	Exists(name string) bool

	// Move 将 src 重命名为 dst，overwrite 为 true 时覆盖已存在的 dst
	Move(src, dst string, overwrite bool) error

	// Open 以指定方式打开（必要时创建）文件
	Open(name string, mode OpenMode) (File, error)
}

// File 轮转器持有的单个文件句柄
type File interface {
	io.Writer

	// Flush 将缓冲区数据提交到操作系统，无缓冲时为空操作
	Flush() error

	// Close 提交缓冲区并关闭文件
	Close() error

	// Size 返回打开时的文件大小加上此后接受的字节数
	Size() int64

	// SetBufferSize 设置缓冲模式：0 表示无缓冲，n > 0 表示 n 字节全缓冲
	SetBufferSize(n int) error
}

// OSFS 返回基于本地文件系统的 FS 实现，新建文件使用 perm，0 表示 [DefaultFileMode]。
func OSFS(perm os.FileMode) FS {
	if perm == 0 {
		perm = DefaultFileMode
	}
	return osFS{perm: perm}
}

type osFS struct {
	perm os.FileMode
}

func (osFS) Exists(name string) bool {
	return xfile.Exists(name)
}

func (osFS) Move(src, dst string, overwrite bool) error {
	return xfile.Move(src, dst, overwrite)
}

func (o osFS) Open(name string, mode OpenMode) (File, error) {
	if err := xfile.EnsureDir(name); err != nil {
		return nil, err
	}

	flag := os.O_CREATE | os.O_WRONLY
	switch mode {
	case OpenTruncate:
		flag |= os.O_TRUNC
	case OpenAppend:
		flag |= os.O_APPEND
	default:
		return nil, fmt.Errorf("unknown open mode %v", mode)
	}

	perm := o.perm
	if perm == 0 {
		perm = DefaultFileMode
	}
	//#nosec G304 -- 路径已经过 xfile.SanitizePath 规范化
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &osFile{f: f, size: info.Size()}, nil
}

// osFile 基于 *os.File 的 File 实现，缓冲由 bufio.Writer 提供
type osFile struct {
	f    *os.File
	w    *bufio.Writer // nil 表示无缓冲
	size int64
}

func (o *osFile) Write(p []byte) (int, error) {
	var (
		n   int
		err error
	)
	if o.w != nil {
		n, err = o.w.Write(p)
	} else {
		n, err = o.f.Write(p)
	}
	o.size += int64(n)
	return n, err
}

func (o *osFile) Flush() error {
	if o.w == nil {
		return nil
	}
	return o.w.Flush()
}

func (o *osFile) Close() error {
	return errors.Join(o.Flush(), o.f.Close())
}

func (o *osFile) Size() int64 {
	return o.size
}

func (o *osFile) SetBufferSize(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBufferSize, n)
	}
	if err := o.Flush(); err != nil {
		return err
	}
	if n == 0 {
		o.w = nil
		return nil
	}
	o.w = bufio.NewWriterSize(o.f, n)
	return nil
}

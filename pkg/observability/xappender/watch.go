package xappender

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 配置文件变更的默认防抖时间
const DefaultDebounce = 100 * time.Millisecond

// WatchCallback 配置变更回调，err 非 nil 表示重新加载失败或监视出错
type WatchCallback func(cfg Config, err error)

// WatchOption 监视选项
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce   time.Duration
	configOpts []ConfigOption
}

// WithDebounce 设置防抖时间，时间窗内的多次变更只触发一次重新加载
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithWatchConfigOptions 设置重新加载时使用的配置加载选项
func WithWatchConfigOptions(opts ...ConfigOption) WatchOption {
	return func(o *watchOptions) {
		o.configOpts = append(o.configOpts, opts...)
	}
}

// Watcher 配置文件监视器
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	callback WatchCallback
	opts     watchOptions
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}

	mu      sync.Mutex
	running bool
	timer   *time.Timer

	// inflight 计数已排定但尚未结束的 reload
	inflight sync.WaitGroup
}

// WatchConfig 创建配置文件监视器
//
// 监视的是配置文件所在目录而非文件本身：编辑器保存时常先删除再创建，
// 或写临时文件后 rename，直接监视文件会丢失事件。
// 返回的 Watcher 需要调用 Start 或 StartAsync 开始监视，Stop 停止。
func WatchConfig(path string, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if _, err := detectFormat(path); err != nil {
		return nil, err
	}

	options := watchOptions{debounce: DefaultDebounce}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xappender: create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		closeErr := fsWatcher.Close()
		return nil, errors.Join(
			fmt.Errorf("xappender: watch directory %s: %w", dir, err),
			closeErr,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     path,
		watcher:  fsWatcher,
		callback: callback,
		opts:     options,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start 阻塞运行监视循环，直到 Stop
func (w *Watcher) Start() {
	if !w.markRunning() {
		return
	}
	w.run()
}

// StartAsync 在后台 goroutine 中运行监视循环
func (w *Watcher) StartAsync() {
	if !w.markRunning() {
		return
	}
	go w.run()
}

func (w *Watcher) markRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.ctx.Err() != nil {
		return false
	}
	w.running = true
	return true
}

// Stop 停止监视并等待监视循环和进行中的回调退出，可重复调用
//
// Stop 返回后回调不会再被调用，因此不能在回调内部调用 Stop。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.ctx.Err() != nil {
		w.mu.Unlock()
		return nil
	}
	w.cancelTimerLocked()
	w.cancel()
	running := w.running
	w.mu.Unlock()

	err := w.watcher.Close()
	if running {
		<-w.done
	}
	w.inflight.Wait()
	return err
}

// cancelTimerLocked 取消尚未触发的 reload，调用方持有 mu
func (w *Watcher) cancelTimerLocked() {
	if w.timer == nil {
		return
	}
	if w.timer.Stop() {
		w.inflight.Done()
	}
	w.timer = nil
}

func (w *Watcher) run() {
	defer close(w.done)
	filename := filepath.Base(w.path)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, filename)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.callback != nil {
				w.callback(Config{}, fmt.Errorf("xappender: watch error: %w", err))
			}
		}
	}
}

// handleEvent 处理目标文件的 Write/Create/Rename 事件，防抖后重新加载
func (w *Watcher) handleEvent(event fsnotify.Event, filename string) {
	if filepath.Base(event.Name) != filename {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil {
		return
	}
	w.cancelTimerLocked()
	w.inflight.Add(1)
	w.timer = time.AfterFunc(w.opts.debounce, w.reload)
}

func (w *Watcher) reload() {
	defer w.inflight.Done()
	if w.ctx.Err() != nil {
		return
	}
	cfg, err := LoadConfig(w.path, w.opts.configOpts...)
	if w.callback != nil {
		w.callback(cfg, err)
	}
}

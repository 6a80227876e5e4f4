package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xroll/pkg/observability/xappender"
	"github.com/omeyang/xroll/pkg/observability/xlog"
	"github.com/omeyang/xroll/pkg/observability/xrotate"
	"github.com/omeyang/xroll/pkg/util/xfile"
)

// maxLineSize 单行输入上限
const maxLineSize = 1 << 20

// exitError 表示需要非零退出码但已完成输出的场景。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func newUsageError(format string, args ...any) *usageError {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// isCLIUsageError 判断错误是否来自 CLI 框架的参数解析。
func isCLIUsageError(err error) bool {
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{
		"flag provided but not defined",
		"flag needs an argument",
		"Required flag",
		"invalid value",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createPipeCommand(),
		createInspectCommand(),
	}
}

// createPipeCommand 创建 pipe 子命令。
func createPipeCommand() *cli.Command {
	return &cli.Command{
		Name:    "pipe",
		Aliases: []string{"p"},
		Usage:   "从标准输入逐行读取并写入输出端",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "输出端配置文件（.yaml/.yml/.json）",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "key",
				Usage: "配置所在的键路径，如 log.appender",
			},
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "每行记录的级别 (trace/debug/info/warn/error/fatal)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "min-level",
				Usage: "最低输出级别，低于该级别的行被丢弃",
				Value: "trace",
			},
			&cli.BoolFlag{
				Name:  "detect-level",
				Usage: "行首为级别名（如 WARN、[error]）时使用该级别并去掉前缀",
			},
			&cli.StringFlag{
				Name:  "logger",
				Usage: "记录中的 logger 名称",
			},
			&cli.StringFlag{
				Name:  "flush",
				Usage: "周期刷新缓冲的 cron 表达式，如 \"@every 1s\"",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "配置文件变更时重建输出端",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root := cmd.Root()
			return cmdPipe(ctx, pipeOptions{
				configPath:  cmd.String("config"),
				keyPath:     cmd.String("key"),
				level:       cmd.String("level"),
				minLevel:    cmd.String("min-level"),
				detectLevel: cmd.Bool("detect-level"),
				logger:      cmd.String("logger"),
				flushSpec:   cmd.String("flush"),
				watch:       cmd.Bool("watch"),
			}, root.Reader, root.ErrWriter)
		},
	}
}

// createInspectCommand 创建 inspect 子命令。
func createInspectCommand() *cli.Command {
	return &cli.Command{
		Name:    "inspect",
		Aliases: []string{"i"},
		Usage:   "查看活动日志文件及其备份链",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "基础日志文件名",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "daily",
				Aliases: []string{"d"},
				Usage:   "文件按天滚动",
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "按天滚动时查看的日期 (YYYY-MM-DD)，默认今天",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdInspect(cmd.Root().Writer, inspectOptions{
				file:  cmd.String("file"),
				daily: cmd.Bool("daily"),
				date:  cmd.String("date"),
				now:   time.Now,
			})
		},
	}
}

// pipeOptions pipe 命令参数。
type pipeOptions struct {
	configPath  string
	keyPath     string
	level       string
	minLevel    string
	detectLevel bool
	logger      string
	flushSpec   string
	watch       bool
}

// cmdPipe 执行 pipe 命令。
//
// 资源按 输出端 → 定时刷新 → 配置监视 的顺序创建，按相反顺序释放，
// 最后由 cleanup 关闭 Handler，刷新并关闭输出端。
func cmdPipe(ctx context.Context, opts pipeOptions, in io.Reader, errOut io.Writer) (retErr error) {
	level, err := xlog.ParseLevel(opts.level)
	if err != nil {
		return newUsageError("无效的 --level: %v", err)
	}
	if _, err := xlog.ParseLevel(opts.minLevel); err != nil {
		return newUsageError("无效的 --min-level: %v", err)
	}

	diag, diagCleanup, err := xlog.New().SetOutput(errOut).Build()
	if err != nil {
		return err
	}
	defer func() { retErr = errors.Join(retErr, diagCleanup()) }()

	onError := func(err error) {
		diag.Warn(ctx, "appender error", slog.Any("error", err))
	}

	var cfgOpts []xappender.ConfigOption
	if opts.keyPath != "" {
		cfgOpts = append(cfgOpts, xappender.WithKeyPath(opts.keyPath))
	}
	cfg, err := xappender.LoadConfig(opts.configPath, cfgOpts...)
	if err != nil {
		return err
	}
	appender, err := xappender.New(cfg, xappender.WithOnError(onError))
	if err != nil {
		return err
	}

	handler := xappender.NewHandler(appender, &xappender.HandlerOptions{Logger: opts.logger})
	logger, cleanup, err := xlog.New().
		SetLevelString(opts.minLevel).
		SetOnError(onError).
		SetHandler(handler).
		Build()
	if err != nil {
		return errors.Join(err, appender.Finalize())
	}
	defer func() { retErr = errors.Join(retErr, cleanup()) }()

	if opts.flushSpec != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(opts.flushSpec, func() {
			if err := handler.Flush(); err != nil {
				onError(err)
			}
		}); err != nil {
			return newUsageError("无效的 --flush: %v", err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
	}

	if opts.watch {
		watcher, err := xappender.WatchConfig(opts.configPath, func(cfg xappender.Config, err error) {
			if err != nil {
				onError(err)
				return
			}
			if err := handler.Reload(cfg, xappender.WithOnError(onError)); err != nil {
				onError(err)
				return
			}
			diag.Info(ctx, "appender reloaded",
				slog.String("type", cfg.Type), slog.String("file", cfg.File))
		}, xappender.WithWatchConfigOptions(cfgOpts...))
		if err != nil {
			return err
		}
		watcher.StartAsync()
		defer func() { retErr = errors.Join(retErr, watcher.Stop()) }()
	}

	lines, err := pumpLines(ctx, logger, in, level, opts.detectLevel)
	diag.Info(ctx, "pipe finished", slog.Int("lines", lines))
	return err
}

// pumpLines 逐行读取 in 并写入 logger，返回已写入的行数。
//
// 读取在独立 goroutine 中进行，ctx 取消时立即返回 ctx.Err()。
// in 实现 io.Closer 时随之关闭，解除阻塞中的读取并等待读取 goroutine 退出。
func pumpLines(ctx context.Context, logger xlog.Logger, in io.Reader, level xlog.Level, detect bool) (int, error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				scanErr <- nil
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, stopReading(in, lines, err)
		}
		select {
		case <-ctx.Done():
			return count, stopReading(in, lines, ctx.Err())
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return count, fmt.Errorf("read input: %w", err)
				}
				return count, nil
			}
			lvl := level
			if detect {
				if parsed, rest, ok := splitLevel(line); ok {
					lvl, line = parsed, rest
				}
			}
			logAt(ctx, logger, lvl, line)
			count++
		}
	}
}

// stopReading 关闭可关闭的输入并排空 lines，直到读取 goroutine 退出，返回 cause。
func stopReading(in io.Reader, lines <-chan string, cause error) error {
	c, ok := in.(io.Closer)
	if !ok {
		return cause
	}
	_ = c.Close()
	for range lines {
	}
	return cause
}

// splitLevel 识别行首的级别名，支持 "WARN msg"、"[warn] msg"、"WARN: msg"。
func splitLevel(line string) (xlog.Level, string, bool) {
	token, rest, found := strings.Cut(line, " ")
	token = strings.TrimSuffix(token, ":")
	token = strings.TrimSuffix(strings.TrimPrefix(token, "["), "]")
	if token == "" {
		return 0, line, false
	}
	level, err := xlog.ParseLevel(token)
	if err != nil {
		return 0, line, false
	}
	if !found {
		return level, "", true
	}
	return level, strings.TrimLeft(rest, " "), true
}

// logAt 按级别分派到 Logger 对应方法。
func logAt(ctx context.Context, logger xlog.Logger, level xlog.Level, msg string) {
	switch {
	case level >= xlog.LevelFatal:
		logger.Fatal(ctx, msg)
	case level >= xlog.LevelError:
		logger.Error(ctx, msg)
	case level >= xlog.LevelWarn:
		logger.Warn(ctx, msg)
	case level >= xlog.LevelInfo:
		logger.Info(ctx, msg)
	case level >= xlog.LevelDebug:
		logger.Debug(ctx, msg)
	default:
		logger.Trace(ctx, msg)
	}
}

// inspectOptions inspect 命令参数。
type inspectOptions struct {
	file  string
	daily bool
	date  string
	now   func() time.Time
}

// cmdInspect 输出活动文件及其 .1、.2 … 备份链，遇到第一个缺失的序号停止。
// 活动文件不存在时返回退出码 1。
func cmdInspect(w io.Writer, opts inspectOptions) error {
	base, err := xfile.SanitizePath(opts.file)
	if err != nil {
		return newUsageError("无效的 --file: %v", err)
	}

	day := opts.now()
	if opts.date != "" {
		if !opts.daily {
			return newUsageError("--date 需要同时指定 --daily")
		}
		day, err = time.ParseInLocation(time.DateOnly, opts.date, time.Local)
		if err != nil {
			return newUsageError("无效的 --date: %v", err)
		}
	}

	active := xrotate.FileNameFor(base, opts.daily, day)
	if !xfile.Exists(active) {
		fmt.Fprintf(w, "%s\t(不存在)\n", active)
		return &exitError{code: 1}
	}

	total := int64(0)
	backups := 0
	for i := 0; ; i++ {
		name := active
		if i > 0 {
			name = xrotate.BackupFileName(active, i)
			if !xfile.Exists(name) {
				break
			}
			backups++
		}
		size, err := xfile.Size(name)
		if err != nil {
			return fmt.Errorf("stat %s: %w", name, err)
		}
		total += size
		fmt.Fprintf(w, "%s\t%s\n", name, humanize.IBytes(uint64(size)))
	}
	fmt.Fprintf(w, "备份数: %d, 总大小: %s\n", backups, humanize.IBytes(uint64(total)))
	return nil
}

// setupSignalHandler 设置信号处理。
// 第一次信号优雅取消，第二次信号强制退出（退出码 130 = 128 + SIGINT）。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}

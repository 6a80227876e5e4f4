// xroll 是滚动日志输出端的命令行工具。
//
// 用法:
//
//	xroll <命令> [命令参数]
//
// 命令:
//
//	pipe           从标准输入逐行读取，按配置写入输出端
//	inspect        查看活动日志文件及其备份链
//	help           显示帮助信息
//
// pipe 命令说明:
//
//	每行输入成为一条日志记录。--flush 接受 cron 表达式（如 "@every 1s"），
//	按周期刷新缓冲；--watch 在配置文件变更时重建输出端，失败时保留原输出端。
//	输出端自身的错误（备份失败、写入截断）输出到标准错误。
//
// 退出码:
//
//	0: 命令执行成功
//	1: 运行时失败（打开文件失败、活动文件不存在等）
//	2: 参数错误（缺少必需参数、无效级别、无效 cron 表达式等）
//
// 示例:
//
//	tail -f app.out | xroll pipe --config xroll.yaml
//	xroll pipe -c xroll.yaml --logger gateway --flush "@every 5s" --watch
//	xroll inspect --file /var/log/app.log --daily --date 2024-01-01
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xroll",
		Usage:     "滚动日志输出端工具",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Commands:  createCommands(),
		Authors: []any{
			"XRoll Team",
		},
		// 禁止 urfave/cli 直接调用 os.Exit，由 runArgs 统一映射退出码。
		ExitErrHandler: func(_ context.Context, cmd *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(cmd.Root().ErrWriter, err)
			}
		},
		Description: `xroll 把标准输入写入按日期/大小滚动的日志文件，并可查看备份链。

配置文件（YAML/JSON）示例:
  type: file
  file: /var/log/app.log
  dailyRolling: true
  maxFileSize: 10MB
  maxBackupIndex: 5
  fileBufferSize: 4096`,
	}
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(cancel)

	return runArgs(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
}

// runArgs 执行命令并把错误映射为退出码。
func runArgs(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := createApp(stdin, stdout, stderr)

	if err := app.Run(ctx, args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if isCLIUsageError(err) {
			fmt.Fprintf(stderr, "参数错误: %v\n", err)
			return 2
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}

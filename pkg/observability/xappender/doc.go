// Package xappender 提供日志输出端（appender）及其生命周期管理。
//
// # 概述
//
// [LogAppender] 是所有输出端的能力接口：Initialize 打开资源，Output 写入一条记录，
// Flush 提交缓冲，Finalize 释放资源并回到未初始化状态。提供三种实现：
//
//   - [RollingFileAppender]：按日期/大小滚动的日志文件（基于 xrotate.RollingFile）
//   - [ConsoleAppender]：标准输出或标准错误
//   - [LumberjackAppender]：基于 lumberjack 的按大小轮转文件，支持压缩和按天数清理
//
// [New] 根据 [Config].Type 选择实现并完成初始化。
//
// # 文件输出端
//
// 每条记录写入前执行一次轮转检查：
//
//   - 文件大小达到 MaxFileSize：当前文件移入编号备份链（name.1 最新），截断重建
//   - 按天滚动且日期变化：切换到新日期的文件（追加），前一天的文件原样保留
//   - 文件被外部删除：截断重建，不备份
//
// 启用缓冲（FileBufferSize > 0）时，WARN 及以上级别的记录写入后立即刷新。
//
// # 并发
//
// 输出端本身不是并发安全的。多 goroutine 写入时使用 [Handler]：它实现 slog.Handler，
// 用互斥锁串行化对输出端的所有调用。
//
// # 配置
//
// [LoadConfig] 读取 YAML/JSON 配置文件，[WatchConfig] 监视文件变更并重新加载：
//
//	type: file
//	file: /var/log/app/app.log
//	dailyRolling: true
//	maxFileSize: 100MB
//	maxBackupIndex: 5
//	fileBufferSize: 64KiB
package xappender

// Package xrotate 提供日志文件轮转功能。
//
// Rotator 接口定义了轮转器的核心行为（Write/Close/Rotate）。
//
// # 当前实现
//
//   - [NewRollingFile]: 按日期和大小滚动的单文件写入器，带编号备份链（app.log.1、app.log.2 …）
//   - [NewLumberjack]: 基于 lumberjack v2 的按大小轮转（时间戳命名备份，可压缩）
//
// # RollingFile 轮转规则
//
// 每次写入前执行一次轮转检查，按以下顺序取第一条命中的规则：
//
//  1. 当前文件大小 >= MaxFileSize：备份当前文件并截断重建
//  2. 当前没有打开的文件句柄（此前重开失败）：以追加模式重新打开
//  3. 目标文件名与当前文件名不同（跨天）：以追加模式打开新文件，旧文件不备份
//  4. 目标文件已被外部删除：截断模式重建，不备份
//
// 大小未超限且与上次检查处于同一秒时直接跳过检查。
//
// # 并发
//
// RollingFile 为单写者设计，不做任何内部加锁；多生产者场景由调用方串行化
// （例如 xappender.Handler）。lumberjack 实现是并发安全的。
//
// # 内部错误
//
// 轮转器可能作为日志输出目标，因此内部错误（备份移动失败、关闭失败）不写日志，
// 而是通过 WithOnError / WithLumberjackOnError 回调上报。
package xrotate

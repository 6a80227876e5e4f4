// Package observability 提供日志输出相关的子包。
//
// 子包列表：
//   - xrotate: 日志文件轮转，按日期/大小重开文件、编号备份链、缓冲刷新
//   - xappender: 输出端生命周期（初始化/输出/刷新/终结）、配置加载与监视、slog 桥接
//   - xlog: 结构化日志，基于 log/slog 扩展
//
// 设计原则：
//   - 轮转内部不经由 slog 记录自身错误，通过 OnError 回调上报，避免递归
//   - 轮转指标通过 OpenTelemetry metric 输出
package observability

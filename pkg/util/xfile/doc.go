// Package xfile 提供日志文件轮转所需的文件系统操作。
//
// 本包只覆盖轮转器真正用到的几类操作：
//
//   - [SanitizePath]: 规范化日志文件路径，拒绝空路径、空字节、相对路径穿越和目录路径
//   - [EnsureDir]、[EnsureDirWithPerm]: 确保日志文件的父目录存在
//   - [Exists]: 判断文件是否存在（轮转策略和备份链探测使用）
//   - [Move]: 重命名文件，可选择是否覆盖已存在的目标（备份链移动使用）
//   - [Size]: 读取文件当前大小
//
// # 路径穿越检测
//
// 只有 ".." 作为独立路径段时才被视为穿越，"app..2024.log" 之类的合法文件名不会被误判。
//
// # 错误处理
//
// 预定义错误变量支持 [errors.Is] 判断：
//
//	if err := xfile.Move(src, dst, false); errors.Is(err, xfile.ErrTargetExists) {
//	    // 目标已存在且未允许覆盖
//	}
package xfile

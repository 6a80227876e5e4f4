package xrotate

import (
	"fmt"

	retry "github.com/avast/retry-go/v5"
)

// BackupFiles 将当前文件移入编号备份链
//
// 仅在轮转策略要求备份时调用。MaxBackups 为 0 或当前文件不存在时为空操作。
// 执行前先关闭当前句柄（部分平台无法重命名已打开的文件）。
//
// 先从 1 开始向上探测第一个不存在的 "<name>.i"（最多探测到 MaxBackups），
// 再自高向低依次移动：<name>.(i-1) -> <name>.i，最后 <name> -> <name>.1。
// 超出 MaxBackups 的最旧备份被覆盖丢弃。
//
// 单次移动失败只上报 [ErrBackupMoveFailed]，不中断后续移动，也不阻止随后的重开。
func (r *RollingFile) BackupFiles() {
	if r.maxBackupCount == 0 || r.fileName == "" {
		return
	}
	if !r.fs.Exists(r.fileName) {
		return
	}

	r.closeFile()

	available := 0
	for available < r.maxBackupCount {
		available++
		if !r.fs.Exists(backupName(r.fileName, available)) {
			break
		}
	}

	for i := available; i >= 1; i-- {
		src := r.fileName
		if i > 1 {
			src = backupName(r.fileName, i-1)
		}
		dst := backupName(r.fileName, i)
		if err := r.move(src, dst); err != nil {
			r.metrics.backupFailed()
			r.reportError(fmt.Errorf("%w: %w", ErrBackupMoveFailed, err))
		}
	}
}

// move 带重试地执行一次备份移动
func (r *RollingFile) move(src, dst string) error {
	return retry.New(
		retry.Attempts(uint(r.moveAttempts)),
		retry.Delay(r.moveDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	).Do(func() error {
		return r.fs.Move(src, dst, true)
	})
}

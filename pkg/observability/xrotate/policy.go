package xrotate

import "time"

// Reason 重开文件的触发原因
type Reason int

const (
	// ReasonNone 无需重开
	ReasonNone Reason = iota
	// ReasonSize 文件大小达到上限
	ReasonSize
	// ReasonRecover 当前没有打开的句柄（此前重开失败）
	ReasonRecover
	// ReasonDate 日期变化导致文件名变化
	ReasonDate
	// ReasonMissing 目标文件被外部删除
	ReasonMissing
	// ReasonManual 调用 Rotate 手动触发
	ReasonManual
)

// String 返回触发原因名称，用作指标属性
func (r Reason) String() string {
	switch r {
	case ReasonSize:
		return "size"
	case ReasonRecover:
		return "recover"
	case ReasonDate:
		return "date"
	case ReasonMissing:
		return "missing"
	case ReasonManual:
		return "manual"
	default:
		return "none"
	}
}

// Decision 轮转策略的判定结果
type Decision struct {
	// Reopen 是否需要重开文件
	Reopen bool
	// Clear 是否以截断模式打开
	Clear bool
	// Backup 重开前是否先把当前文件移入备份链
	Backup bool
	// Reason 触发原因
	Reason Reason
}

// NeedsReopen 判断写入 candidate 之前是否需要重开文件
//
// 规则按顺序取第一条命中：
//  1. 当前大小 >= 上限：重开、截断、备份
//  2. 没有打开的句柄：重开、追加
//  3. candidate 与当前文件名不同（跨天）：重开、追加、不备份
//  4. candidate 在磁盘上不存在：重开、截断、不备份
//
// 跨天时不备份前一天的文件：按天命名的文件本身就是保留下来的历史。
func (r *RollingFile) NeedsReopen(candidate string) Decision {
	switch {
	case r.fileSize >= r.maxFileSize:
		return Decision{Reopen: true, Clear: true, Backup: true, Reason: ReasonSize}
	case r.file == nil:
		return Decision{Reopen: true, Reason: ReasonRecover}
	case candidate != r.fileName:
		return Decision{Reopen: true, Reason: ReasonDate}
	case !r.fs.Exists(candidate):
		return Decision{Reopen: true, Clear: true, Reason: ReasonMissing}
	default:
		return Decision{}
	}
}

// CheckAndUpdate 以 now 为当前时间执行一次轮转检查，必要时备份并重开文件
//
// 大小未超限、句柄正常且与上次检查处于同一秒时跳过。
// 返回值只反映重开失败（[ErrOpenFailed]），备份失败通过 OnError 上报。
func (r *RollingFile) CheckAndUpdate(now time.Time) error {
	if r.file != nil && r.fileSize < r.maxFileSize && sameSecond(r.lastCheck, now) {
		return nil
	}

	name := r.BuildFileName(now)
	d := r.NeedsReopen(name)
	r.lastCheck = now
	if !d.Reopen {
		return nil
	}

	if d.Backup {
		r.BackupFiles()
	}
	r.metrics.rotated(d.Reason)
	return r.ReopenFile(name, d.Clear)
}

func sameSecond(a, b time.Time) bool {
	return a.Unix() == b.Unix()
}

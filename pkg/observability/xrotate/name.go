package xrotate

import (
	"strconv"
	"time"
)

// dateLayout 按天滚动时追加在文件名后的日期格式
const dateLayout = "2006-01-02"

// BuildFileName 返回 t 时刻应写入的文件名
//
// 未开启按天滚动时原样返回基础文件名；开启时返回 "<base>.YYYY-MM-DD"，
// 日期取 t 自身的时区。纯函数，轮转检查和重开文件共用。
func (r *RollingFile) BuildFileName(t time.Time) string {
	return buildFileName(r.baseName, r.dailyRolling, t)
}

// FileNameFor 返回基础文件名 base 在 t 时刻对应的活动文件名，规则同 BuildFileName
func FileNameFor(base string, daily bool, t time.Time) string {
	return buildFileName(base, daily, t)
}

// BackupFileName 返回活动文件 name 的第 i 个备份文件名
func BackupFileName(name string, i int) string {
	return backupName(name, i)
}

func buildFileName(base string, daily bool, t time.Time) string {
	if !daily {
		return base
	}
	return base + "." + t.Format(dateLayout)
}

// backupName 返回 name 的第 i 个备份文件名（"<name>.i"）
func backupName(name string, i int) string {
	return name + "." + strconv.Itoa(i)
}

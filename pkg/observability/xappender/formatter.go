package xappender

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// timeLayout 文本格式的时间布局（毫秒精度）
const timeLayout = "2006-01-02 15:04:05.000"

// Formatter 把记录追加格式化到 dst 并返回扩展后的切片
//
// 输出端在多次调用间复用 dst，实现不得持有 dst。
type Formatter interface {
	Format(dst []byte, rec Record) []byte
}

// FormatterFunc 函数形式的 Formatter
type FormatterFunc func(dst []byte, rec Record) []byte

// Format 实现 Formatter 接口
func (f FormatterFunc) Format(dst []byte, rec Record) []byte {
	return f(dst, rec)
}

// TextFormatter 默认单行文本格式：
//
//	2024-01-01 12:00:00.000 INFO [logger] message key=value
//
// logger 为空时省略方括号部分；logger 和 message 中的控制字符按 Go 转义形式输出（如 \n），
// 保证一条记录只占一行；分组属性以 "." 连接键名；
// 含空白、引号或等号的值使用 Go 字符串字面量形式加引号。
type TextFormatter struct{}

// Format 实现 Formatter 接口
func (TextFormatter) Format(dst []byte, rec Record) []byte {
	dst = rec.Time.AppendFormat(dst, timeLayout)
	dst = append(dst, ' ')
	dst = append(dst, rec.Level.String()...)
	dst = append(dst, ' ')
	if rec.Logger != "" {
		dst = append(dst, '[')
		dst = appendEscaped(dst, rec.Logger)
		dst = append(dst, "] "...)
	}
	dst = appendEscaped(dst, rec.Message)
	for _, a := range rec.Attrs {
		dst = appendAttr(dst, "", a)
	}
	return append(dst, '\n')
}

func appendAttr(dst []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		// 匿名分组的属性直接展开到上一层
		if a.Key == "" {
			key = prefix
		}
		for _, ga := range a.Value.Group() {
			dst = appendAttr(dst, key, ga)
		}
		return dst
	}

	dst = append(dst, ' ')
	dst = append(dst, key...)
	dst = append(dst, '=')
	return appendValue(dst, a.Value.String())
}

func appendValue(dst []byte, s string) []byte {
	if needsQuote(s) {
		return strconv.AppendQuote(dst, s)
	}
	return append(dst, s...)
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	if !utf8.ValidString(s) {
		return true
	}
	return strings.ContainsAny(s, " \t\r\n\"=")
}

// appendEscaped 原样追加 s，控制字符改写为 Go 转义序列
func appendEscaped(dst []byte, s string) []byte {
	if !hasControl(s) {
		return append(dst, s...)
	}
	for _, r := range s {
		switch {
		case r == '\n':
			dst = append(dst, `\n`...)
		case r == '\r':
			dst = append(dst, `\r`...)
		case r == '\t':
			dst = append(dst, `\t`...)
		case r < 0x20 || r == 0x7f:
			dst = append(dst, `\x`...)
			dst = append(dst, hexDigits[r>>4], hexDigits[r&0xf])
		default:
			dst = utf8.AppendRune(dst, r)
		}
	}
	return dst
}

const hexDigits = "0123456789abcdef"

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c == 0x7f {
			return true
		}
	}
	return false
}

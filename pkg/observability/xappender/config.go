package xappender

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	units "github.com/docker/go-units"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config 输出端配置
//
// 字段与 YAML/JSON 键名一一对应（koanf 标签）。
type Config struct {
	// Type 输出端类型：file（默认）、console、lumberjack
	Type string `koanf:"type"`

	// File 日志文件基础路径，file 和 lumberjack 类型必填
	File string `koanf:"file"`

	// DailyRolling 文件名是否追加 ".YYYY-MM-DD" 并按天切换
	DailyRolling bool `koanf:"dailyRolling"`

	// MaxFileSize 单个文件最大字节数，<= 0 表示不限制
	MaxFileSize ByteSize `koanf:"maxFileSize"`

	// MaxBackupIndex 保留的编号备份数量，< 0 视为 0
	MaxBackupIndex int `koanf:"maxBackupIndex"`

	// FileBufferSize 文件缓冲区字节数，<= 0 表示无缓冲
	FileBufferSize ByteSize `koanf:"fileBufferSize"`

	// Console console 类型专用配置
	Console ConsoleConfig `koanf:"console"`

	// Lumberjack lumberjack 类型专用配置
	Lumberjack LumberjackConfig `koanf:"lumberjack"`
}

// ConsoleConfig 控制台输出配置
type ConsoleConfig struct {
	// Stream 输出流：stdout（默认）或 stderr
	Stream string `koanf:"stream"`
}

// LumberjackConfig lumberjack 输出配置
type LumberjackConfig struct {
	// MaxSizeMB 单个文件最大 MB 数，0 时由 MaxFileSize 向上取整换算，两者都未设置时使用默认值
	MaxSizeMB int `koanf:"maxSizeMB"`

	// MaxAgeDays 备份保留天数，0 使用默认值
	MaxAgeDays int `koanf:"maxAgeDays"`

	// Compress 是否 gzip 压缩备份
	Compress bool `koanf:"compress"`
}

// ByteSize 字节数，配置中既可写整数也可写带单位的字符串
//
// 单位按 1024 进制解析："10MB"、"10MiB"、"10m" 都是 10*1024*1024。
type ByteSize int64

// UnmarshalText 实现 encoding.TextUnmarshaler 接口
func (b *ByteSize) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*b = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*b = ByteSize(n)
		return nil
	}
	n, err := units.RAMInBytes(s)
	if err != nil {
		return fmt.Errorf("%w: size %q: %w", ErrInvalidArgument, s, err)
	}
	*b = ByteSize(n)
	return nil
}

// MarshalText 实现 encoding.TextMarshaler 接口
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(b), 10)), nil
}

// Format 配置文件格式
type Format string

// 支持的配置格式
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ConfigOption 配置加载选项
type ConfigOption func(*configOptions)

type configOptions struct {
	keyPath string
}

// WithKeyPath 只反序列化指定路径下的配置，如 "log.appender"
func WithKeyPath(path string) ConfigOption {
	return func(o *configOptions) {
		o.keyPath = path
	}
}

// LoadConfig 从文件加载配置，根据扩展名识别 YAML（.yaml/.yml）或 JSON（.json）
func LoadConfig(path string, opts ...ConfigOption) (Config, error) {
	if path == "" {
		return Config{}, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return ParseConfig(data, format, opts...)
}

// ParseConfig 从字节数据解析配置
//
// 空数据返回零值配置。
func ParseConfig(data []byte, format Format, opts ...ConfigOption) (Config, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	options := configOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	k := koanf.New(".")
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf(options.keyPath, &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return cfg, nil
}

// detectFormat 根据文件扩展名识别配置格式
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

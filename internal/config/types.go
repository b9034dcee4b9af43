package config

import (
	"strings"
	"time"
)

// Config 是 tradebook 的主配置载体。
type Config struct {
	App     AppConfig     `toml:"app"`
	Mapping MappingConfig `toml:"mapping"`
	Booking BookingConfig `toml:"booking"`
	Output  OutputConfig  `toml:"output"`
	Store   StoreConfig   `toml:"store"`
	Queue   QueueConfig   `toml:"queue"`
	HTTP    HTTPConfig    `toml:"http"`
	Inbox   InboxConfig   `toml:"inbox"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogPath   string `toml:"log_path"`
	// MessageLog 不为空时，每条组装好的报文都会写入该文件（"-" 表示 stdout）。
	MessageLog string `toml:"message_log"`
}

type MappingConfig struct {
	Path string `toml:"path"`
}

type BookingConfig struct {
	MessageType        string         `toml:"message_type"`
	Sender             string         `toml:"sender"`
	Target             string         `toml:"target"`
	ClassificationMode string         `toml:"classification_mode"`
	Workers            int            `toml:"workers"`
	PlaceholderPeriods []PeriodConfig `toml:"placeholder_periods"`
}

type PeriodConfig struct {
	Effective   string `toml:"effective"`
	Termination string `toml:"termination"`
}

type OutputConfig struct {
	Enabled     bool   `toml:"enabled"`
	Dir         string `toml:"dir"`
	FilePattern string `toml:"file_pattern"`
}

type StoreConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type QueueConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Topic    string `toml:"topic"`
	// BreakerThreshold 连续失败多少次后暂停推送，0 表示不熔断。
	BreakerThreshold int           `toml:"breaker_threshold"`
	BreakerCooldown  time.Duration `toml:"breaker_cooldown"`
}

type HTTPConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type InboxConfig struct {
	Enabled      bool   `toml:"enabled"`
	Dir          string `toml:"dir"`
	ProcessedDir string `toml:"processed_dir"`
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

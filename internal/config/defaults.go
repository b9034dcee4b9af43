package config

import (
	"strings"
	"time"
)

// 默认值常量
const (
	defaultAppEnv         = "dev"
	defaultAppLogLevel    = "info"
	defaultAppLogFormat   = "text"
	defaultMessageType    = "newTrade"
	defaultSender         = "DefaultSender"
	defaultTarget         = "DefaultTarget"
	defaultClassification = "pricing"
	defaultWorkers        = 4
	defaultOutputDir      = "out"
	defaultFilePattern    = "{trade_id}-{unit}.json"
	defaultStorePath      = "data/tradebook.db"
	defaultQueueAddr      = "127.0.0.1:6379"
	defaultQueueTopic     = "tradebook:messages"
	defaultBreakerLimit   = 3
	defaultBreakerCool    = 30 * time.Second
	defaultHTTPAddr       = ":9992"
	defaultInboxDir       = "inbox"
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Booking.applyDefaults(keys)
	c.Output.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.Queue.applyDefaults(keys)
	c.HTTP.applyDefaults(keys)
	c.Inbox.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
	)
	a.LogLevel = strings.ToLower(strings.TrimSpace(a.LogLevel))
	a.LogFormat = strings.ToLower(strings.TrimSpace(a.LogFormat))
}

func (b *BookingConfig) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("booking.message_type", &b.MessageType, defaultMessageType),
		stringFieldDefault("booking.sender", &b.Sender, defaultSender),
		stringFieldDefault("booking.target", &b.Target, defaultTarget),
		stringFieldDefault("booking.classification_mode", &b.ClassificationMode, defaultClassification),
		fieldDefault{
			key:   "booking.workers",
			need:  func() bool { return b.Workers <= 0 },
			apply: func() { b.Workers = defaultWorkers },
		},
	)
	b.ClassificationMode = strings.ToLower(strings.TrimSpace(b.ClassificationMode))
}

func (o *OutputConfig) applyDefaults(keys keySet) {
	if o == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("output.enabled", &o.Enabled, true),
		stringFieldDefault("output.dir", &o.Dir, defaultOutputDir),
		stringFieldDefault("output.file_pattern", &o.FilePattern, defaultFilePattern),
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys, stringFieldDefault("store.path", &s.Path, defaultStorePath))
}

func (q *QueueConfig) applyDefaults(keys keySet) {
	if q == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("queue.addr", &q.Addr, defaultQueueAddr),
		stringFieldDefault("queue.topic", &q.Topic, defaultQueueTopic),
		fieldDefault{
			key:   "queue.breaker_threshold",
			apply: func() { q.BreakerThreshold = defaultBreakerLimit },
		},
		fieldDefault{
			key:   "queue.breaker_cooldown",
			need:  func() bool { return q.BreakerCooldown <= 0 },
			apply: func() { q.BreakerCooldown = defaultBreakerCool },
		},
	)
}

func (h *HTTPConfig) applyDefaults(keys keySet) {
	if h == nil {
		return
	}
	applyFieldDefaults(keys, stringFieldDefault("http.addr", &h.Addr, defaultHTTPAddr))
}

func (i *InboxConfig) applyDefaults(keys keySet) {
	if i == nil {
		return
	}
	applyFieldDefaults(keys, stringFieldDefault("inbox.dir", &i.Dir, defaultInboxDir))
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

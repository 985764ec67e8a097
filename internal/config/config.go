package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/leshachaplin/tracklog/internal/collector"
	"github.com/leshachaplin/tracklog/internal/exception"
	"github.com/leshachaplin/tracklog/internal/sink/redpanda"
	"github.com/leshachaplin/tracklog/internal/storage/kv"
	"github.com/leshachaplin/tracklog/internal/worker"
)

const envPrefix = "TRACKLOG"

// Config is the main config for the application
type Config struct {
	LogLevel      string                  `mapstructure:"log_level"`
	Addr          string                  `mapstructure:"addr"`
	Storage       kv.Config               `mapstructure:"storage"`
	Collector     collector.Config        `mapstructure:"collector"`
	Delivery      worker.Config           `mapstructure:"delivery"`
	Exception     exception.Config        `mapstructure:"exception"`
	ExceptionSink redpanda.ConsumerConfig `mapstructure:"exception_sink"`
}

var defaults = map[string]any{
	"log_level":                           "INFO",
	"addr":                                ":8080",
	"storage.driver":                      kv.DriverMemory,
	"storage.sqlite.path":                 "",
	"collector.url":                       "",
	"collector.editor_version":            "",
	"collector.flush_interval":            time.Second,
	"collector.timeout":                   30 * time.Second,
	"collector.retry_max":                 0,
	"collector.cookie_name":               "ai_user",
	"delivery.num_workers":                2,
	"delivery.queue_size":                 16,
	"exception.target":                    "",
	"exception.version":                   "",
	"exception_sink.brokers":              []string{},
	"exception_sink.topic":                "",
	"exception_sink.retry_attempts":       3,
	"exception_sink.retry_delay":          time.Second,
	"exception_sink.consumer_group":       "",
	"exception_sink.poll_fetches_timeout": 15 * time.Second,
}

// Load reads path (if given) and overlays TRACKLOG_* environment variables,
// e.g. TRACKLOG_COLLECTOR_URL for collector.url.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

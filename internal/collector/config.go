package collector

import "time"

const (
	defaultFlushInterval = time.Second
	defaultTimeout       = 30 * time.Second
)

type Config struct {
	URL           string        `mapstructure:"url"`
	EditorVersion string        `mapstructure:"editor_version"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	// RetryMax is the number of extra attempts per POST. Zero keeps the
	// fixed cadence: a failed batch is not retried within its tick.
	RetryMax   int    `mapstructure:"retry_max"`
	CookieName string `mapstructure:"cookie_name"`
}

func (c Config) withDefaults() Config {
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RetryMax < 0 {
		c.RetryMax = 0
	}
	return c
}

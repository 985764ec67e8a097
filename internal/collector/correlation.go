package collector

import (
	"regexp"
	"sync"
)

// correlation extracts a client id from a cookie header once and keeps it.
type correlation struct {
	mu      sync.RWMutex
	pattern *regexp.Regexp
	id      string
}

func newCorrelation(cookieName string) *correlation {
	c := &correlation{}
	if cookieName != "" {
		c.pattern = regexp.MustCompile(`(?:^|;\s*)` + regexp.QuoteMeta(cookieName) + `=([^;]*)`)
	}
	return c
}

func (c *correlation) resolve(cookieHeader string) {
	if c.pattern == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id != "" {
		return
	}
	if m := c.pattern.FindStringSubmatch(cookieHeader); m != nil {
		c.id = m[1]
	}
}

func (c *correlation) get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	"github.com/leshachaplin/tracklog/internal/domain"
)

const maxLoggedBody = 4 << 10

// HTTPSender POSTs batches to the collector endpoint. Cookies set by the
// collector are kept in a jar and sent back with every batch.
type HTTPSender struct {
	url    *url.URL
	client *retryablehttp.Client
	jar    http.CookieJar
	logger zerolog.Logger
}

func NewHTTPSender(cfg Config, logger zerolog.Logger) (*HTTPSender, error) {
	cfg = cfg.withDefaults()

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse collector url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("collector url %q must be absolute", cfg.URL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.HTTPClient.Timeout = cfg.Timeout
	client.HTTPClient.Jar = jar
	client.Logger = leveledLogger{logger: logger}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &HTTPSender{
		url:    u,
		client: client,
		jar:    jar,
		logger: logger,
	}, nil
}

func (s *HTTPSender) Send(ctx context.Context, batch domain.Batch) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.url.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", batch.ID)

	res, err := s.client.Do(req)
	if err != nil {
		if res != nil && res.Body != nil {
			_ = res.Body.Close()
		}
		return fmt.Errorf("could not send request: %w", err)
	}
	defer res.Body.Close()

	resBody, _ := io.ReadAll(io.LimitReader(res.Body, maxLoggedBody))
	s.logger.Debug().
		Str("BATCH_ID", batch.ID).
		Str("namespace", batch.Namespace).
		Int("status", res.StatusCode).
		Str("body", string(resBody)).
		Msg("collector response")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}
	return nil
}

// CookieHeader renders the cookies held for the collector URL as a
// Cookie header value.
func (s *HTTPSender) CookieHeader() string {
	cookies := s.jar.Cookies(s.url)
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

type leveledLogger struct {
	logger zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

package app

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLogLevelToZero(t *testing.T) {
	cases := map[Level]zerolog.Level{
		TRACE:     zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		INFO:      zerolog.InfoLevel,
		"Warn":    zerolog.WarnLevel,
		ERROR:     zerolog.ErrorLevel,
		PANIC:     zerolog.PanicLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, logLevelToZero(in), string(in))
	}
}

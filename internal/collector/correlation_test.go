package collector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCorrelation_Resolve(t *testing.T) {
	cases := map[string]struct {
		name   string
		header string
		want   string
	}{
		"single":          {name: "ai_user", header: "ai_user=abc123", want: "abc123"},
		"among others":    {name: "ai_user", header: "theme=dark; ai_user=u-42; lang=en", want: "u-42"},
		"suffix no match": {name: "user", header: "ai_user=u-42", want: ""},
		"missing":         {name: "ai_user", header: "theme=dark", want: ""},
		"disabled":        {name: "", header: "ai_user=u-42", want: ""},
		"quoted name":     {name: "a.b", header: "axb=1; a.b=2", want: "2"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := newCorrelation(tc.name)
			c.resolve(tc.header)
			require.Equal(t, tc.want, c.get())
		})
	}
}

func TestCorrelation_NeverReResolved(t *testing.T) {
	c := newCorrelation("ai_user")
	c.resolve("")
	require.Empty(t, c.get())

	c.resolve("ai_user=first")
	c.resolve("ai_user=second")
	require.Equal(t, "first", c.get())
}

package apierror

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	base := BadRequest("invalid JSON body")
	err := base.WithDetail("reason", "unexpected EOF")

	require.Equal(t, http.StatusBadRequest, err.StatusCode())
	require.Equal(t, "invalid JSON body", err.Error())
	require.Nil(t, base.Details)

	b, mErr := json.Marshal(err)
	require.NoError(t, mErr)
	require.JSONEq(t, `{
		"message": "invalid JSON body",
		"details": {"reason": "unexpected EOF"},
		"http": {"code": 400, "message": "Bad Request"}
	}`, string(b))
}

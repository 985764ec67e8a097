package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/leshachaplin/tracklog/internal/apierror"
)

const maxRequestBody = 8 << 20

func encodeJSONResponse[T any](w http.ResponseWriter, code int, data T) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if code == http.StatusNoContent {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

func decodeJSONRequest[T any](r *http.Request) (T, error) {
	var v T
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return v, err
	}
	if err = json.Unmarshal(data, &v); err != nil {
		return v, apierror.BadRequest("invalid JSON body").WithDetail("reason", err.Error())
	}
	return v, nil
}

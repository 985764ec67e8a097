package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/leshachaplin/tracklog/internal/domain"
)

type ingressStub struct {
	mu        sync.Mutex
	pointer   []domain.PointerNotification
	clicks    []domain.PointerNotification
	resizes   []domain.ResizeNotification
	messages  []domain.HostMessage
	mutations []domain.Mutation
	document  string
	blocks    map[string]string
}

func (s *ingressStub) PointerMove(n domain.PointerNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = append(s.pointer, n)
}

func (s *ingressStub) Click(n domain.PointerNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks = append(s.clicks, n)
}

func (s *ingressStub) Resize(n domain.ResizeNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resizes = append(s.resizes, n)
}

func (s *ingressStub) Message(m domain.HostMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
}

func (s *ingressStub) Mutation(m domain.Mutation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations = append(s.mutations, m)
}

func (s *ingressStub) SetState(document string, blocks map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document, s.blocks = document, blocks
}

type statusStub struct{}

func (statusStub) Streams() []string     { return []string{"window", "blockly"} }
func (statusStub) CorrelationID() string { return "u-42" }

type reporterStub struct {
	exceptions []string
	errors     []string
}

func (r *reporterStub) ReportException(err error, _ map[string]string) {
	r.exceptions = append(r.exceptions, err.Error())
}

func (r *reporterStub) ReportError(category, message string, _ map[string]string) {
	r.errors = append(r.errors, category+":"+message)
}

func newTestServer(t *testing.T) (*httptest.Server, *ingressStub, *reporterStub) {
	t.Helper()
	ingress := &ingressStub{}
	reporter := &reporterStub{}
	srv := New(NewHandler(ingress, statusStub{}, reporter, zerolog.Nop()))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, ingress, reporter
}

func do(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, b
}

func TestServer_Ready(t *testing.T) {
	ts, _, _ := newTestServer(t)
	code, body := do(t, http.MethodGet, ts.URL+"/_/ready", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "OK", string(body))
}

func TestServer_Notifications(t *testing.T) {
	ts, ingress, _ := newTestServer(t)

	cases := map[string]struct {
		method string
		path   string
		body   string
	}{
		"pointer move": {method: http.MethodPost, path: "/v1/window/pointermove", body: `{"x":1,"y":2}`},
		"click": {method: http.MethodPost, path: "/v1/window/click",
			body: `{"x":3,"y":4,"srcId":"run","path":[{"tag":"BUTTON","id":"run"}]}`},
		"resize":   {method: http.MethodPost, path: "/v1/window/resize", body: `{"width":800,"height":600}`},
		"message":  {method: http.MethodPost, path: "/v1/message", body: `{"type":"analytics","data":{"a":1}}`},
		"mutation": {method: http.MethodPost, path: "/v1/workspace/mutation", body: `{"type":"create","blockId":"A1","ids":["A1"]}`},
		"state":    {method: http.MethodPut, path: "/v1/workspace/state", body: `{"xml":"<xml/>","blocks":{"A1":"controls_if"}}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			code, _ := do(t, tc.method, ts.URL+tc.path, tc.body)
			require.Equal(t, http.StatusAccepted, code)
		})
	}

	ingress.mu.Lock()
	defer ingress.mu.Unlock()
	require.Equal(t, []domain.PointerNotification{{X: 1, Y: 2}}, ingress.pointer)
	require.Len(t, ingress.clicks, 1)
	require.Equal(t, "run", ingress.clicks[0].SrcID)
	require.Equal(t, []domain.Frame{{Tag: "BUTTON", ID: "run"}}, ingress.clicks[0].Path)
	require.Equal(t, []domain.ResizeNotification{{Width: 800, Height: 600}}, ingress.resizes)
	require.Equal(t, "analytics", ingress.messages[0].Type)
	require.Equal(t, []string{"A1"}, ingress.mutations[0].IDs)
	require.Equal(t, "<xml/>", ingress.document)
	require.Equal(t, map[string]string{"A1": "controls_if"}, ingress.blocks)
}

func TestServer_BadJSON(t *testing.T) {
	ts, ingress, _ := newTestServer(t)

	code, body := do(t, http.MethodPost, ts.URL+"/v1/workspace/mutation", `{"type":`)
	require.Equal(t, http.StatusBadRequest, code)

	var apiErr struct {
		Message string `json:"message"`
		HTTP    struct {
			Code int `json:"code"`
		} `json:"http"`
	}
	require.NoError(t, json.Unmarshal(body, &apiErr))
	require.Equal(t, "invalid JSON body", apiErr.Message)
	require.Equal(t, http.StatusBadRequest, apiErr.HTTP.Code)
	require.Empty(t, ingress.mutations)
}

func TestServer_Report(t *testing.T) {
	ts, _, reporter := newTestServer(t)

	code, _ := do(t, http.MethodPost, ts.URL+"/v1/report", `{"message":"null deref"}`)
	require.Equal(t, http.StatusAccepted, code)
	code, _ = do(t, http.MethodPost, ts.URL+"/v1/report", `{"category":"compile","message":"bad token"}`)
	require.Equal(t, http.StatusAccepted, code)

	require.Equal(t, []string{"null deref"}, reporter.exceptions)
	require.Equal(t, []string{"compile:bad token"}, reporter.errors)
}

func TestServer_Status(t *testing.T) {
	ts, _, _ := newTestServer(t)

	code, body := do(t, http.MethodGet, ts.URL+"/v1/streams", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"streams":["window","blockly"],"correlationId":"u-42"}`, string(body))
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts, _, _ := newTestServer(t)
	code, _ := do(t, http.MethodGet, ts.URL+"/v1/window/click", "")
	require.Equal(t, http.StatusMethodNotAllowed, code)
}

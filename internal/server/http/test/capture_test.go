package http

import (
	"context"
	"net/http"
	"time"
)

func (i *IntegrationTestSuite) TestCapture_ShipsStreams() {
	ctx, cancel := context.WithTimeout(i.ctx, 30*time.Second)
	defer cancel()

	i.Require().NoError(i.client.Send(ctx, http.MethodPut, "/v1/workspace/state", map[string]any{
		"xml":    `<xml><block id="A1" type="controls_if"/></xml>`,
		"blocks": map[string]string{"A1": "controls_if"},
	}, http.StatusAccepted))

	i.Require().NoError(i.client.Send(ctx, http.MethodPost, "/v1/window/click", map[string]any{
		"x": 10, "y": 20, "srcId": "run", "srcNodeName": "BUTTON",
		"path": []map[string]string{{"tag": "BUTTON", "id": "run"}, {"tag": "BODY"}, {"tag": "HTML"}, {"tag": "#document"}, {"tag": "window"}},
	}, http.StatusAccepted))

	i.Require().NoError(i.client.Send(ctx, http.MethodPost, "/v1/workspace/mutation", map[string]any{
		"type": "create", "workspaceId": "ws", "blockId": "A1", "ids": []string{"A1"}, "xml": `<block type="controls_if"/>`,
	}, http.StatusAccepted))

	i.Require().NoError(i.client.Send(ctx, http.MethodPost, "/v1/message", map[string]any{
		"type": "analytics", "data": map[string]any{"score": 3},
	}, http.StatusAccepted))

	i.Require().NoError(i.client.Send(ctx, http.MethodPost, "/v1/report", map[string]any{
		"category": "compile", "message": "unexpected token",
	}, http.StatusAccepted))

	i.Require().Eventually(func() bool {
		return len(i.collector.records("window")) == 1 &&
			len(i.collector.records("blockly")) == 1 &&
			len(i.collector.records("program")) == 1 &&
			len(i.collector.records("simulator")) == 1 &&
			len(i.collector.records("exception")) == 1
	}, 10*time.Second, 20*time.Millisecond)

	click := i.collector.records("window")[0]
	i.Equal("click", click["kind"])
	i.Equal("body/button#run", click["path"])

	create := i.collector.records("blockly")[0]
	i.Equal("create", create["kind"])
	i.Equal("controls_if", create["blockKind"])

	program := i.collector.records("program")[0]
	i.Equal(`<xml><block id="A1" type="controls_if"/></xml>`, program["payload"])

	i.collector.mu.Lock()
	for _, b := range i.collector.batches {
		i.Equal(editorVersion, b.EditorVersion)
	}
	i.collector.mu.Unlock()

	i.Require().Eventually(func() bool {
		st, err := i.client.Streams(ctx)
		return err == nil && st.CorrelationID == "e2e-user"
	}, 5*time.Second, 20*time.Millisecond)
}

func (i *IntegrationTestSuite) TestCapture_RejectsBadJSON() {
	ctx, cancel := context.WithTimeout(i.ctx, 10*time.Second)
	defer cancel()

	req, err := i.client.newRequest(ctx, http.MethodPost, "/v1/workspace/mutation", nil)
	i.Require().NoError(err)
	res, err := i.client.http.Do(req)
	i.Require().NoError(err)
	defer res.Body.Close()
	i.Equal(http.StatusBadRequest, res.StatusCode)
}

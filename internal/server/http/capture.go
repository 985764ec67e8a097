package http

import (
	"errors"
	"net/http"
)

type workspaceState struct {
	XML    string            `json:"xml"`
	Blocks map[string]string `json:"blocks"`
}

type report struct {
	Category string            `json:"category"`
	Message  string            `json:"message"`
	Data     map[string]string `json:"data"`
}

type status struct {
	Streams       []string `json:"streams"`
	CorrelationID string   `json:"correlationId"`
}

func (h *Handler) PointerMove(w http.ResponseWriter, r *http.Request) {
	accept(h, w, r, h.ingress.PointerMove)
}

func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	accept(h, w, r, h.ingress.Click)
}

func (h *Handler) Resize(w http.ResponseWriter, r *http.Request) {
	accept(h, w, r, h.ingress.Resize)
}

func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	accept(h, w, r, h.ingress.Message)
}

func (h *Handler) Mutation(w http.ResponseWriter, r *http.Request) {
	accept(h, w, r, h.ingress.Mutation)
}

func (h *Handler) WorkspaceState(w http.ResponseWriter, r *http.Request) {
	accept(h, w, r, func(s workspaceState) {
		h.ingress.SetState(s.XML, s.Blocks)
	})
}

// Report feeds an application error into the exception bridge. A report
// with a category is an error, one without is an exception.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	accept(h, w, r, func(rep report) {
		if rep.Category != "" {
			h.reporter.ReportError(rep.Category, rep.Message, rep.Data)
			return
		}
		h.reporter.ReportException(errors.New(rep.Message), rep.Data)
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	err := encodeJSONResponse(w, http.StatusOK, status{
		Streams:       h.status.Streams(),
		CorrelationID: h.status.CorrelationID(),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("could not encode status")
	}
}

func accept[T any](h *Handler, w http.ResponseWriter, r *http.Request, fn func(T)) {
	v, err := decodeJSONRequest[T](r)
	if err != nil {
		h.error(err, w)
		return
	}
	fn(v)
	w.WriteHeader(http.StatusAccepted)
}

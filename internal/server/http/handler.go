package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/tracklog/internal/apierror"
	"github.com/leshachaplin/tracklog/internal/domain"
	"github.com/leshachaplin/tracklog/internal/exception"
)

// Ingress receives host notifications.
type Ingress interface {
	PointerMove(n domain.PointerNotification)
	Click(n domain.PointerNotification)
	Resize(n domain.ResizeNotification)
	Message(m domain.HostMessage)
	Mutation(m domain.Mutation)
	SetState(document string, blocks map[string]string)
}

type Status interface {
	Streams() []string
	CorrelationID() string
}

type Handler struct {
	ingress  Ingress
	status   Status
	reporter exception.Reporter
	logger   zerolog.Logger
}

func NewHandler(ingress Ingress, status Status, reporter exception.Reporter, logger zerolog.Logger) *Handler {
	return &Handler{
		ingress:  ingress,
		status:   status,
		reporter: reporter,
		logger:   logger,
	}
}

func (h *Handler) error(err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	var apiErr apierror.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierror.NewAPIError(err.Error(), http.StatusInternalServerError)
	}

	w.WriteHeader(apiErr.StatusCode())
	if err = json.NewEncoder(w).Encode(apiErr); err != nil {
		h.logger.Error().Err(err).Msg("could not encode api error")
	}
}

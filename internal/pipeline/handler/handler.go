package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"faultline/internal/upstream"
	"faultline/pkg/platform/httputil"
	"faultline/pkg/requestcontext"
)

// Service defines the read operation the handler exposes.
type Service interface {
	Read(ctx context.Context) (upstream.Record, error)
}

// Handler wires the read endpoint to the pipeline service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a read handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the read and health endpoints on the router. Unmatched
// paths and methods answer with the normalized error envelope.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", httputil.Handle(h.HandleRead))
	r.Get("/healthz", h.HandleHealth)
	r.NotFound(httputil.NotFound)
	r.MethodNotAllowed(httputil.MethodNotAllowed)
}

// HandleRead handles GET / requests. The record is rendered as is; any error
// is rendered by the boundary.
func (h *Handler) HandleRead(r *http.Request) (any, error) {
	ctx := r.Context()

	record, err := h.service.Read(ctx)
	if err != nil {
		h.logger.DebugContext(ctx, "read returned error",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, err
	}
	return record, nil
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package api

import (
	"errors"
	"net/http"

	"feynman_tutor/internal/services"
	"feynman_tutor/pkg"
	"feynman_tutor/src/graph"
	"feynman_tutor/src/logger"
	"feynman_tutor/src/memory"
	"feynman_tutor/src/storage"

	"github.com/cloudwego/hertz/pkg/app"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, memory.ErrInvalidInput), errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, memory.ErrConceptNotFound), errors.Is(err, graph.ErrConceptNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, storage.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx *app.RequestContext, err error) {
	status := statusFor(err)
	message := err.Error()

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
		// backend details stay in the log
		message = http.StatusText(status)
	}
	event.Err(err).
		Str("request_id", requestID(ctx)).
		Int("status", status).
		Str("path", string(ctx.Path())).
		Msg("request failed")

	writeStatus(ctx, status, message)
}

// writeStatus sends a client-facing error body with the request id
func writeStatus(ctx *app.RequestContext, status int, message string) {
	ctx.JSON(status, pkg.ErrorResponse{Error: message, RequestID: requestID(ctx)})
}

func writeBadRequest(ctx *app.RequestContext, message string) {
	writeStatus(ctx, http.StatusBadRequest, message)
}

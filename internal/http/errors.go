package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/athenkosimagada/careerhive.server/internal/service"
	"github.com/athenkosimagada/careerhive.server/pkg/httpx"
	"github.com/athenkosimagada/careerhive.server/pkg/slogx"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Unrecognized errors become a generic 500; the detail is logged, never
// echoed to the caller.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		httpx.WriteError(w, http.StatusBadRequest, clientMessage(err))
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrAuthentication):
		httpx.WriteError(w, http.StatusUnauthorized, clientMessage(err))
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, clientMessage(err))
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, clientMessage(err))
	case errors.Is(err, service.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, clientMessage(err))
	default:
		slogx.FromContext(ctx).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "something went wrong")
	}
}

// clientMessage strips the sentinel prefix so "invalid argument: passwords do
// not match" reads as "passwords do not match".
func clientMessage(err error) string {
	msg := err.Error()
	if _, detail, ok := strings.Cut(msg, ": "); ok && detail != "" {
		return detail
	}
	return msg
}

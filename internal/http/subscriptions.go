package http

import (
	"net/http"

	"github.com/athenkosimagada/careerhive.server/internal/service"
	"github.com/athenkosimagada/careerhive.server/pkg/httpx"
)

// SubscriptionHandler opts the authenticated user in and out of new-job
// notification emails.
type SubscriptionHandler struct {
	Subscriptions *service.SubscriptionService
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (h *SubscriptionHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req subscribeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.Subscriptions.Subscribe(ctx, httpx.UserIDFromContext(ctx), req.Email); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "subscribed"})
}

func (h *SubscriptionHandler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req subscribeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.Subscriptions.Unsubscribe(ctx, httpx.UserIDFromContext(ctx), req.Email); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "unsubscribed"})
}

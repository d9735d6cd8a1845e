package http

import (
	"net/http"

	"github.com/athenkosimagada/careerhive.server/internal/identity"
	"github.com/athenkosimagada/careerhive.server/pkg/httpx"
	"github.com/athenkosimagada/careerhive.server/pkg/slogx"
)

// AdminHandler serves the administrative endpoints. Every route behind it
// requires the Admin role.
type AdminHandler struct {
	Identity *identity.Manager
}

type roleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HandleListRoles returns the configured role set, the values accepted by
// registration's role field.
func (h *AdminHandler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if claims, ok := httpx.ClaimsFromContext(ctx); ok {
		slogx.FromContext(ctx).Info("admin listed roles", "admin", claims.Email)
	}

	roles, err := h.Identity.AllRoles(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse{ID: role.ID, Name: role.Name})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

package http

import (
	"net/http"

	"github.com/athenkosimagada/careerhive.server/internal/service"
	"github.com/athenkosimagada/careerhive.server/pkg/httpx"
)

// ManageHandler serves the authenticated /v1/account/manage endpoints.
type ManageHandler struct {
	Accounts *service.AccountService
}

func (h *ManageHandler) HandleGetInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := h.Accounts.GetUserInfo(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

type updateInfoRequest struct {
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	Username      *string `json:"username"`
	PhoneNumber   *string `json:"phoneNumber"`
	ProfilePicURL *string `json:"profilePictureUrl"`
}

func (h *ManageHandler) HandleUpdateInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateInfoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Accounts.UpdateUserInfo(ctx, httpx.UserIDFromContext(ctx), service.UserInfoUpdate{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Username:      req.Username,
		PhoneNumber:   req.PhoneNumber,
		ProfilePicURL: req.ProfilePicURL,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

type twoFactorRequest struct {
	Enable bool `json:"enable"`
}

type twoFactorResponse struct {
	Enabled bool `json:"enabled"`
	// OtpauthURL is returned only when enabling, for authenticator setup.
	OtpauthURL string `json:"otpauthUrl,omitempty"`
}

func (h *ManageHandler) HandleTwoFactor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req twoFactorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	url, err := h.Accounts.Manage2FA(ctx, httpx.UserIDFromContext(ctx), req.Enable)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, twoFactorResponse{Enabled: req.Enable, OtpauthURL: url})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *ManageHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Accounts.ChangePassword(ctx, httpx.UserIDFromContext(ctx), req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

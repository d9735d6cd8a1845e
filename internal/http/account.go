package http

import (
	"net/http"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/service"
	"github.com/athenkosimagada/careerhive.server/pkg/httpx"
)

// AccountHandler serves the unauthenticated account lifecycle endpoints.
type AccountHandler struct {
	Accounts *service.AccountService
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	Role            string `json:"role,omitempty"`
}

type userResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Username         string `json:"username"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	FullName         string `json:"fullName"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
	ProfilePicURL    string `json:"profilePictureUrl,omitempty"`
	EmailConfirmed   bool   `json:"emailConfirmed"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		FullName:         u.FullName,
		PhoneNumber:      u.PhoneNumber,
		ProfilePicURL:    u.ProfilePicURL,
		EmailConfirmed:   u.EmailConfirmed,
		TwoFactorEnabled: u.TwoFactorEnabled,
	}
}

func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if req.Password != req.ConfirmPassword {
		httpx.WriteError(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	u, err := h.Accounts.Register(r.Context(), service.RegisterParams{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.PhoneNumber,
		Role:            req.Role,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AccountHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "access token and refresh token are required")
		return
	}

	pair, err := h.Accounts.RefreshToken(r.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *AccountHandler) HandleResendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.Accounts.ResendConfirmationEmail(r.Context(), req.Email); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "confirmation email sent"})
}

type confirmEmailRequest struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

func (h *AccountHandler) HandleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req confirmEmailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Accounts.ConfirmEmail(r.Context(), req.UserID, req.Token); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "email confirmed"})
}

func (h *AccountHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.Accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "password reset email sent"})
}

type resetPasswordRequest struct {
	UserID             string `json:"userId"`
	Token              string `json:"token"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (h *AccountHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Accounts.ResetPassword(r.Context(), req.UserID, req.Token, req.NewPassword, req.ConfirmNewPassword)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "password has been reset"})
}

// HandleLogout denylists the caller's bearer token. The middleware already
// verified it, so the only way this fails is a store error or a stale claim.
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromContext(ctx)
	raw := httpx.RawTokenFromContext(ctx)
	if userID == "" || raw == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	if err := h.Accounts.Logout(ctx, userID, raw); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

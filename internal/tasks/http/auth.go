package http

import (
	"net/http"

	"github.com/aussiebroadwan/tasks/internal/tasks/service"
	"github.com/aussiebroadwan/tasks/pkg/httpx"
	"github.com/aussiebroadwan/tasks/pkg/tasksdk"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister handles POST /auth/register
//
//	@Summary		Register a user
//	@Description	Creates an account. No tokens are issued; call /auth/login next.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.RegisterRequest	true	"username and password"
//	@Success		200		{object}	tasksdk.UserResponse	"id, username"
//	@Failure		400		{object}	tasksdk.APIError		"Username already registered"
//	@Failure		500		{object}	tasksdk.APIError		"Internal server error"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tasksdk.NewAPIError(http.StatusBadRequest, "Invalid JSON in request body").WriteError(w)
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tasksdk.UserResponse{ID: user.ID, Username: user.Username})
}

// HandleLogin handles POST /auth/login
//
//	@Summary		Log in
//	@Description	Exchanges credentials for an access and refresh token pair. Any previous refresh token for the user is replaced.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.LoginRequest	true	"username and password"
//	@Success		200		{object}	tasksdk.TokenResponse	"access_token, refresh_token"
//	@Failure		401		{object}	tasksdk.APIError		"Invalid credentials"
//	@Failure		500		{object}	tasksdk.APIError		"Internal server error"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tasksdk.NewAPIError(http.StatusBadRequest, "Invalid JSON in request body").WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tasksdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// HandleRefresh handles POST /auth/refresh
//
//	@Summary		Refresh the access token
//	@Description	Issues a new access token. The returned refresh token is the one currently stored for the user.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.RefreshRequest	true	"refresh_token"
//	@Success		200		{object}	tasksdk.TokenResponse	"access_token, refresh_token"
//	@Failure		401		{object}	tasksdk.APIError		"Invalid token"
//	@Failure		500		{object}	tasksdk.APIError		"Internal server error"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tasksdk.NewAPIError(http.StatusBadRequest, "Invalid JSON in request body").WriteError(w)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tasksdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// HandleLogout handles POST /auth/logout
//
//	@Summary		Log out
//	@Description	Deletes the stored refresh token for the bearer's user. Succeeds even when nothing was stored.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tasksdk.MessageResponse	"msg"
//	@Failure		401	{object}	tasksdk.APIError		"Invalid token"
//	@Failure		500	{object}	tasksdk.APIError		"Internal server error"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.BearerToken(r)
	if !ok {
		tasksdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.AuthService.Logout(r.Context(), token); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tasksdk.MessageResponse{Msg: "Successfully logged out"})
}

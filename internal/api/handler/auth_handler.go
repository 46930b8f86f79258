package handler

import (
	"net/http"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/api/middleware"
	"github.com/Aman-Dixit07/Student-lms/internal/app/service"
	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// CookieOptions controls the session cookie carrying the token.
type CookieOptions struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	authService *service.AuthService
	cookie      CookieOptions
	log         *logger.Logger
}

func NewAuthHandler(authService *service.AuthService, cookie CookieOptions, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, log: log}
}

// RegisterRoutes mounts the public endpoints. protected must already enforce authentication.
func (h *AuthHandler) RegisterRoutes(r chi.Router, protected func(http.Handler) http.Handler) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(protected)
		r.Post("/logout", h.logout)
		r.Get("/profile", h.profile)
	})
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	resp, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.setCookie(w, resp.Token, h.authService.TokenTTL())
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.setCookie(w, resp.Token, h.authService.TokenTTL())
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if info, ok := middleware.TokenFromContext(r.Context()); ok {
		if err := h.authService.Logout(r.Context(), info.ID, info.ExpiresAt); err != nil {
			respondError(w, r, h.log, err)
			return
		}
	}
	h.setCookie(w, "", -1)
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	user, err := h.authService.Profile(r.Context(), a.UserID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// setCookie writes the session cookie; a negative ttl clears it.
func (h *AuthHandler) setCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	} else {
		cookie.MaxAge = int(ttl.Seconds())
		cookie.Expires = time.Now().Add(ttl)
	}
	http.SetCookie(w, cookie)
}

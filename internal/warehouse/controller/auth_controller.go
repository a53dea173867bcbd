package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/warehouse-management/warehouse/internal/application/core"
	bizConsts "github.com/warehouse-management/warehouse/internal/warehouse/consts"
	"github.com/warehouse-management/warehouse/internal/warehouse/model"
	"github.com/warehouse-management/warehouse/internal/warehouse/service"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  model.UserView `json:"user"`
}

type registerResponse struct {
	Message string         `json:"message"`
	User    model.UserView `json:"user"`
}

type claimsKey struct{}

type AuthController struct {
	*core.BaseComponent
	Svc *service.AuthService `infra:"dep:auth_service"`
}

func NewAuthController() *AuthController {
	return &AuthController{BaseComponent: core.NewBaseComponent(bizConsts.COMP_CTRL_AUTH)}
}

func (c *AuthController) Start(ctx context.Context) error { return c.BaseComponent.Start(ctx) }
func (c *AuthController) Stop(ctx context.Context) error  { return c.BaseComponent.Stop(ctx) }

// POST /api/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	token, user, err := c.Svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, apiError{Error: "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "Failed to generate token"})
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user.View()})
}

// POST /api/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	user, err := c.Svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicate) {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "Username or email already exists"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{Message: "User registered successfully", User: user.View()})
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" token
// and stores the claims in the request context.
func (c *AuthController) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, apiError{Error: "Authorization header required"})
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeJSON(w, http.StatusUnauthorized, apiError{Error: "Authorization header must be Bearer token"})
			return
		}
		claims, err := c.Svc.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, apiError{Error: "Invalid or expired token"})
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the token claims set by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*service.Claims)
	return c, ok
}

package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/apptbook/libs/auth"
	"github.com/md-rashed-zaman/apptbook/libs/httpx"
)

const RoleStaff = "staff"

type StaffConfig struct {
	JWTSecret    string
	Username     string
	PasswordHash string
	TokenTTL     time.Duration
}

func (c StaffConfig) enabled() bool {
	return c.JWTSecret != "" && c.Username != "" && c.PasswordHash != ""
}

// StaffHandler issues dashboard tokens for the single configured staff
// account.
type StaffHandler struct {
	cfg    StaffConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewStaffHandler(cfg StaffConfig, logger *slog.Logger) *StaffHandler {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	return &StaffHandler{cfg: cfg, logger: logger, now: time.Now}
}

func (h *StaffHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/staff/login", h.Login)
}

type staffLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type staffLoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

func (h *StaffHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.enabled() {
		httpx.WriteError(w, http.StatusNotFound, "staff login is not configured")
		return
	}

	var req staffLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "username and password required")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.Username)) == 1
	// bcrypt runs even when the username is wrong.
	passErr := auth.VerifyPassword(h.cfg.PasswordHash, req.Password)
	if !userOK || passErr != nil {
		h.logger.Info("staff login rejected", "request_id", httpx.RequestIDFromContext(r.Context()))
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	claims := auth.NewClaims(h.cfg.Username, RoleStaff, h.now(), h.cfg.TokenTTL)
	token, err := auth.SignHS256(claims, h.cfg.JWTSecret)
	if err != nil {
		h.logger.Error("staff token signing failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, staffLoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
	})
}

// RequireStaff rejects requests without a valid staff bearer token signed
// with secret. It returns nil when secret is empty, leaving routes open.
func RequireStaff(secret string) httpx.Middleware {
	if secret == "" {
		return nil
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") || len(strings.TrimSpace(authHeader)) <= len("Bearer ") {
				w.Header().Set("WWW-Authenticate", "Bearer")
				httpx.WriteError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			claims, err := auth.ParseAndVerifyHS256(token, secret)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				httpx.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if claims.Role != RoleStaff {
				httpx.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

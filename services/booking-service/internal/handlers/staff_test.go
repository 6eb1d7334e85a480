package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/md-rashed-zaman/apptbook/libs/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func staffMux(t *testing.T, cfg StaffConfig) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewStaffHandler(cfg, discardLogger()).Register(mux)
	return mux
}

func staffConfig(t *testing.T) StaffConfig {
	t.Helper()
	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)
	return StaffConfig{JWTSecret: testSecret, Username: "front-desk", PasswordHash: hash, TokenTTL: time.Hour}
}

func TestStaffLogin(t *testing.T) {
	mux := staffMux(t, staffConfig(t))
	h := &harness{mux: mux}

	rw := h.do(t, http.MethodPost, "/api/staff/login", map[string]string{"username": "front-desk", "password": "s3cret!"})
	require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())

	resp := decode[staffLoginResponse](t, rw)
	assert.Equal(t, "Bearer", resp.TokenType)
	_, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	require.NoError(t, err)

	claims, err := auth.ParseAndVerifyHS256(resp.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, claims.Role)
	assert.Equal(t, "front-desk", claims.Subject)
}

func TestStaffLoginRejects(t *testing.T) {
	h := &harness{mux: staffMux(t, staffConfig(t))}

	for _, body := range []map[string]string{
		{"username": "front-desk", "password": "wrong"},
		{"username": "someone", "password": "s3cret!"},
	} {
		rw := h.do(t, http.MethodPost, "/api/staff/login", body)
		assert.Equal(t, http.StatusUnauthorized, rw.Code)
		assert.JSONEq(t, `{"error":"invalid credentials"}`, rw.Body.String())
	}

	rw := h.do(t, http.MethodPost, "/api/staff/login", map[string]string{"username": "front-desk"})
	assert.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestStaffLoginDisabled(t *testing.T) {
	h := &harness{mux: staffMux(t, StaffConfig{})}

	rw := h.do(t, http.MethodPost, "/api/staff/login", map[string]string{"username": "a", "password": "b"})
	assert.Equal(t, http.StatusNotFound, rw.Code)
}

func TestRequireStaff(t *testing.T) {
	assert.Nil(t, RequireStaff(""))

	h := RequireStaff(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	send := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/statistics", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		return rw
	}

	now := time.Now()
	staffToken, err := auth.SignHS256(auth.NewClaims("front-desk", RoleStaff, now, time.Hour), testSecret)
	require.NoError(t, err)
	otherRole, err := auth.SignHS256(auth.NewClaims("bob", "customer", now, time.Hour), testSecret)
	require.NoError(t, err)
	expired, err := auth.SignHS256(auth.NewClaims("front-desk", RoleStaff, now.Add(-2*time.Hour), time.Hour), testSecret)
	require.NoError(t, err)
	wrongKey, err := auth.SignHS256(auth.NewClaims("front-desk", RoleStaff, now, time.Hour), "other")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, send("Bearer "+staffToken).Code)
	assert.Equal(t, http.StatusForbidden, send("Bearer "+otherRole).Code)

	for _, header := range []string{"", "Bearer ", "Basic abc", "Bearer " + expired, "Bearer " + wrongKey} {
		rw := send(header)
		assert.Equal(t, http.StatusUnauthorized, rw.Code, header)
		assert.Equal(t, "Bearer", rw.Header().Get("WWW-Authenticate"))
	}
}

func TestRegisterGuardsDashboardRoutes(t *testing.T) {
	h := newHarness(t)
	mux := http.NewServeMux()
	NewBookingHandler(h.repo, nil, h.publisher, discardLogger()).Register(mux, RequireStaff(testSecret))
	guarded := &harness{repo: h.repo, publisher: h.publisher, mux: mux}
	a := guarded.seed(t, "Alice", "2024-06-03", "09:00-09:30")

	assert.Equal(t, http.StatusUnauthorized, guarded.do(t, http.MethodGet, "/api/statistics?start=2024-06-01&end=2024-06-30", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, guarded.do(t, http.MethodPut, "/api/appointments/"+a.ID, validBody()).Code)
	assert.Equal(t, http.StatusUnauthorized, guarded.do(t, http.MethodDelete, "/api/appointments/"+a.ID, nil).Code)

	assert.Equal(t, http.StatusOK, guarded.do(t, http.MethodGet, "/api/appointments/"+a.ID, nil).Code)
	assert.Equal(t, http.StatusCreated, guarded.do(t, http.MethodPost, "/api/appointments", validBody()).Code)
}

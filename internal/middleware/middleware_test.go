package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campuscafe-reports/internal/pkg/jwt"
	"campuscafe-reports/internal/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	claims *jwt.Claims
	err    error
}

func (s stubVerifier) Verify(string) (*jwt.Claims, error) {
	return s.claims, s.err
}

type stubLimiter struct {
	decision ratelimit.Decision
	err      error
	seen     []string
}

func (s *stubLimiter) Allow(_ context.Context, id string) (ratelimit.Decision, error) {
	s.seen = append(s.seen, id)
	return s.decision, s.err
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"subject": c.GetString(ctxSubject),
		"roles":   GetRoles(c),
	})
}

func TestAuth(t *testing.T) {
	claims := &jwt.Claims{
		Roles:            []string{"reports:read"},
		RegisteredClaims: jwtlib.RegisteredClaims{Subject: "dashboard", ID: "01J0000000000000000000000"},
	}

	tests := []struct {
		name     string
		header   string
		verifier stubVerifier
		want     int
	}{
		{"missing header", "", stubVerifier{claims: claims}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubVerifier{claims: claims}, http.StatusUnauthorized},
		{"invalid token", "Bearer abc", stubVerifier{err: errors.New("token is expired")}, http.StatusUnauthorized},
		{"valid token", "Bearer abc", stubVerifier{claims: claims}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(tt.verifier, zap.NewNop())
			r := gin.New()
			r.GET("/x", m.Auth(), okHandler)

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"subject":"dashboard","roles":["reports:read"]}`, w.Body.String())
			} else {
				assert.NotContains(t, w.Body.String(), "token is expired", "verifier detail stays in logs")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware(stubVerifier{claims: &jwt.Claims{
		Roles:            []string{"reports:read"},
		RegisteredClaims: jwtlib.RegisteredClaims{Subject: "dashboard"},
	}}, zap.NewNop())

	r := gin.New()
	r.GET("/read", m.Auth(), m.RequireRole("reports:read"), okHandler)
	r.GET("/admin", m.Auth(), m.RequireRole("admin"), okHandler)

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.Header.Set("Authorization", "Bearer t")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer t")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/x", func(c *gin.Context) {
		assert.NotEmpty(t, GetRequestID(c))
		c.Status(http.StatusNoContent)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x?from=2024-05-01", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 26)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, id, fields["request_id"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
	assert.Equal(t, "from=2024-05-01", fields["query"])

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = serve(r, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		lim := &stubLimiter{decision: ratelimit.Decision{Allowed: true, Limit: 10, Remaining: 9, ResetIn: time.Minute}}
		r := gin.New()
		r.GET("/x", RateLimit(lim, zap.NewNop()), okHandler)

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, []string{"203.0.113.7"}, lim.seen)
	})

	t.Run("exceeded", func(t *testing.T) {
		lim := &stubLimiter{decision: ratelimit.Decision{Allowed: false, Limit: 10, ResetIn: 1500 * time.Millisecond}}
		r := gin.New()
		r.GET("/x", RateLimit(lim, zap.NewNop()), okHandler)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "2", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), `"success":false`)
	})

	t.Run("limiter down fails open", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		lim := &stubLimiter{err: errors.New("dial tcp: connection refused")}
		r := gin.New()
		r.GET("/x", RateLimit(lim, zap.New(core)), okHandler)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, logs.FilterMessage("rate limiter unavailable").Len())
	})
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://dash.example.com"}))
	r.GET("/x", okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	open := gin.New()
	open.Use(CORSMiddleware([]string{"*"}))
	open.GET("/x", okHandler)
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://anything.example.com")
	w = serve(open, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

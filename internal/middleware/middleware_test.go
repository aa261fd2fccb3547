package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/auth"
	"github.com/BruksfildServices01/agent-crm/internal/metrics"
	"github.com/BruksfildServices01/agent-crm/internal/middleware"
	"github.com/BruksfildServices01/agent-crm/internal/models"
	"github.com/BruksfildServices01/agent-crm/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// withPrincipal stands in for the session middleware.
func withPrincipal(p access.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextPrincipal, p)
		c.Next()
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		principal  access.Principal
		wantStatus int
	}{
		{"admin allowed", access.Principal{UserID: 1, Role: models.RoleAdmin}, http.StatusOK},
		{"agent redirected", access.Principal{UserID: 2, Role: models.RoleAgent}, http.StatusSeeOther},
		{"anonymous redirected", access.Principal{}, http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", withPrincipal(tt.principal), middleware.RequireAdmin(), func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})

			w := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, "/login", w.Header().Get("Location"))
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	token, err := tokens.Issue(access.Principal{UserID: 7, Username: "alice", Role: models.RoleAgent})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/me", middleware.AuthMiddleware(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.PrincipalFrom(c).Username)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := serve(r, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "alice", w.Body.String())
			}
		})
	}
}

func TestSessions_FlashSetsCookie(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)

	r := gin.New()
	r.Use(middleware.Sessions(middleware.SessionOptions{Store: store, MaxAge: 3600, Log: zerolog.Nop()}))
	r.GET("/flash", func(c *gin.Context) {
		middleware.Session(c).Flash(c, session.FlashInfo, "hello")
		c.Status(http.StatusNoContent)
	})
	r.GET("/read", func(c *gin.Context) {
		flashes := middleware.Session(c).PopFlashes(c)
		c.JSON(http.StatusOK, flashes)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/flash", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.AddCookie(cookies[0])
	w = serve(r, req)
	assert.JSONEq(t, `[{"category":"info","message":"hello"}]`, w.Body.String())

	// unknown ids are cleared
	req = httptest.NewRequest(http.MethodGet, "/read", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "stale"})
	w = serve(r, req)
	require.Len(t, w.Result().Cookies(), 1)
	assert.Less(t, w.Result().Cookies()[0].MaxAge, 0)
}

func TestSessions_FlashAfterLogoutStaysAnonymous(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	id, err := store.Create(context.Background(), session.FromPrincipal(
		access.Principal{UserID: 7, Username: "alice", Role: models.RoleAgent},
	))
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.Sessions(middleware.SessionOptions{Store: store, MaxAge: 3600, Log: zerolog.Nop()}))
	r.GET("/late", func(c *gin.Context) {
		// another tab logs out after this request loaded the session
		require.NoError(t, store.Delete(c.Request.Context(), id))
		middleware.Session(c).Flash(c, session.FlashInfo, "saved")
		c.String(http.StatusOK, middleware.PrincipalFrom(c).Username)
	})

	req := httptest.NewRequest(http.MethodGet, "/late", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: id})
	w := serve(r, req)
	assert.Empty(t, w.Body.String())

	_, err = store.Get(context.Background(), id)
	assert.ErrorIs(t, err, session.ErrNotFound)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.NotEqual(t, id, cookies[0].Value)

	fresh, err := store.Get(context.Background(), cookies[0].Value)
	require.NoError(t, err)
	assert.False(t, fresh.Principal().Authenticated())
	assert.Equal(t, []session.Flash{{Category: session.FlashInfo, Message: "saved"}}, fresh.Flashes)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORSMiddleware([]string{"https://a.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://a.example")
	w := serve(r, req)
	assert.Equal(t, "https://a.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://a.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := metrics.NewNop()

	r := gin.New()
	r.Use(middleware.Metrics(m))
	r.GET("/clients/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/clients/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/clients/2", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/clients/:id", "200")))
}

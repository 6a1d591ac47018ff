package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fwf/config"
	"fwf/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	l := NewInMemoryRateLimiter(2, time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("ip"))
	require.True(t, l.Allow("ip"))
	require.False(t, l.Allow("ip"))
	require.True(t, l.Allow("other"))

	now = now.Add(61 * time.Second)
	require.True(t, l.Allow("ip"))

	now = now.Add(2 * time.Minute)
	l.prune()
	require.Empty(t, l.requests)
}

func TestRedactBody(t *testing.T) {
	raw := []byte(`{"email":"a@b.c","password":"secret","nested":{"otp":"123456","razorpay_signature":"sig"},"items":[{"token":"t"}]}`)
	out := RedactBody(raw)
	require.NotContains(t, out, "secret")
	require.NotContains(t, out, "123456")
	require.NotContains(t, out, `"sig"`)
	require.NotContains(t, out, `"t"`)
	require.Contains(t, out, "a@b.c")
	require.Equal(t, "[non-json body]", RedactBody([]byte("password=x")))
}

func TestSafeHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Cookie", "token=abc")
	h.Set("Authorization", "Bearer abc")
	h.Set("User-Agent", "test")
	out := SafeHeaders(h)
	require.Equal(t, map[string]string{"User-Agent": "test"}, out)
}

func TestRecovery_LogsRedactedBody(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.POST("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/boom", bytes.NewBufferString(`{"password":"hunter2","name":"A"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", "token=abc")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	ctx := entry.ContextMap()
	require.Equal(t, "/boom", ctx["path"])
	require.NotContains(t, ctx["body"], "hunter2")
	require.Contains(t, ctx["body"], `"name":"A"`)
}

func TestAuthRequired(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s", Expiry: time.Hour, Issuer: "fwf", CookieName: "token"}
	r := gin.New()
	r.GET("/me", AuthRequired(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "member": GetMemberID(c)})
	})
	r.GET("/admin", AuthRequired(cfg), AdminRequired(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.GenerateToken(cfg, 7, "FWF-000007", "member")
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":7,"member":"FWF-000007"}`, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

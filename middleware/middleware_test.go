package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roombooking/models"
	"roombooking/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user": identity.UserID, "role": identity.Role})
	})
	r.GET("/", handlers...)
	return r
}

func serve(r *gin.Engine, auth, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := newTestEngine(JWTAuthMiddleware())

	userToken, err := utils.GenerateToken("alice", "", time.Hour)
	require.NoError(t, err)
	expired, err := utils.GenerateToken("alice", models.RoleUser, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		description  string
		auth         string
		expectedCode int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"valid token", "Bearer " + userToken, http.StatusOK},
	}
	for _, test := range tests {
		w := serve(r, test.auth, "")
		assert.Equalf(t, test.expectedCode, w.Code, test.description)
	}

	w := serve(r, "Bearer "+userToken, "")
	assert.Contains(t, w.Body.String(), `"role":"user"`, "missing role defaults to user")
}

func TestRequireAdmin(t *testing.T) {
	r := newTestEngine(JWTAuthMiddleware(), RequireAdmin())

	userToken, err := utils.GenerateToken("alice", models.RoleUser, time.Hour)
	require.NoError(t, err)
	adminToken, err := utils.GenerateToken("root", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serve(r, "Bearer "+userToken, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "Bearer "+adminToken, "").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newTestEngine(RateLimitMiddleware(2))

	assert.Equal(t, http.StatusOK, serve(r, "", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, serve(r, "", "10.0.0.1").Code)

	w := serve(r, "", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(r, "", "10.0.0.2").Code, "limits are per client")
}

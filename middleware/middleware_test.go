package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"tourly/models"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	token, _ := args.Get(0).(*auth.Token)
	return token, args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ZapLogger(zap.NewNop()))
	chain := append(handlers, func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, user.UID+":"+user.Role)
	})
	r.GET("/whoami", chain...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	verifier := &MockVerifier{}
	verifier.On("VerifyIDToken", mock.Anything, "good").Return(&auth.Token{
		UID:    "u1",
		Claims: map[string]interface{}{"name": "Ana", "email": "ana@example.com"},
	}, nil)
	verifier.On("VerifyIDToken", mock.Anything, "guide").Return(&auth.Token{
		UID:    "g1",
		Claims: map[string]interface{}{"role": "guide"},
	}, nil)
	verifier.On("VerifyIDToken", mock.Anything, "bad").Return(nil, errors.New("expired"))

	optional := newRouter(FirebaseAuthMiddleware(verifier, true))
	required := newRouter(FirebaseAuthMiddleware(verifier, false))

	tests := []struct {
		name   string
		router http.Handler
		token  string
		status int
		body   string
	}{
		{"optional anonymous", optional, "", http.StatusOK, "anonymous"},
		{"optional signed in", optional, "good", http.StatusOK, "u1:tourist"},
		{"optional bad token", optional, "bad", http.StatusUnauthorized, ""},
		{"required anonymous", required, "", http.StatusUnauthorized, ""},
		{"required guide claim", required, "guide", http.StatusOK, "g1:guide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(tt.router, tt.token)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRequireGuide(t *testing.T) {
	verifier := &MockVerifier{}
	verifier.On("VerifyIDToken", mock.Anything, "tourist").Return(&auth.Token{UID: "u1"}, nil)
	verifier.On("VerifyIDToken", mock.Anything, "guide").Return(&auth.Token{UID: "g1", Claims: map[string]interface{}{"role": "guide"}}, nil)

	r := newRouter(FirebaseAuthMiddleware(verifier, false), RequireGuide())

	assert.Equal(t, http.StatusForbidden, get(r, "tourist").Code)
	assert.Equal(t, http.StatusOK, get(r, "guide").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
}

func TestIdentityFromTokenIgnoresUnknownRoles(t *testing.T) {
	user := identityFromToken(&auth.Token{UID: "u1", Claims: map[string]interface{}{"role": "admin"}})
	assert.Equal(t, models.RoleTourist, user.Role)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(3))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		codes = append(codes, get(r, "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2"}, "10.0.0.3:1234", "198.51.100.7"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.8 "}, "10.0.0.3:1234", "198.51.100.8"},
		{"remote addr", nil, "192.0.2.1:5555", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(c))
		})
	}
}

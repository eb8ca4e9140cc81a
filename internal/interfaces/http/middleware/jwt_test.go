package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/auth"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/config"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/logger"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                testSecret,
		Issuer:                "test-issuer",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func newTestToken(t *testing.T, svc *auth.JWTService, roles ...string) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, _, err := svc.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:   userID,
		Username: "clerk",
		Roles:    roles,
	})
	require.NoError(t, err)
	return token, userID
}

func signClaims(t *testing.T, claims *auth.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// setCaller authenticates c as userID without a token
func setCaller(c *gin.Context, userID string) {
	c.Set(JWTClaimsKey, &auth.Claims{UserID: userID})
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	token, userID := newTestToken(t, svc, "staff")

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/test", func(c *gin.Context) {
		claims := GetJWTClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, userID.String(), GetJWTUserID(c))
		assert.Equal(t, "clerk", GetJWTUsername(c))
		assert.Equal(t, []string{"staff"}, GetJWTRoles(c))
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test", token).Code)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService()

	expired := signClaims(t, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID:    uuid.NewString(),
		TokenType: auth.TokenTypeAccess,
	})
	refresh := signClaims(t, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:    uuid.NewString(),
		TokenType: "refresh",
	})

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", dto.ErrCodeUnauthorized},
		{"empty token", "Bearer ", dto.ErrCodeUnauthorized},
		{"garbage", "Bearer not-a-jwt", dto.ErrCodeTokenInvalid},
		{"expired", "Bearer " + expired, dto.ErrCodeTokenExpired},
		{"wrong type", "Bearer " + refresh, dto.ErrCodeTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	svc := newTestJWTService()

	cfg := DefaultJWTConfig(svc)
	cfg.PublicPrefixes = []string{"/public"}

	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/public/receipt", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/clients", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/public/receipt", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/v1/clients", "").Code)
}

func TestJWTAuthMiddleware_LoggerCarriesUser(t *testing.T) {
	svc := newTestJWTService()
	token, userID := newTestToken(t, svc, "staff")

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	var got string
	router.GET("/test", func(c *gin.Context) {
		got = logger.GetUserID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test", token).Code)
	assert.Equal(t, userID.String(), got)
}

func TestGetJWTClaims_NotFound(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTRoles(c))
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService()
	adminToken, _ := newTestToken(t, svc, "admin")
	staffToken, _ := newTestToken(t, svc, "staff")

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.DELETE("/clients/:id", RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodDelete, "/clients/1", adminToken).Code)

	w := serve(router, http.MethodDelete, "/clients/1", staffToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	router := gin.New()
	router.GET("/admin", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/admin", "").Code)
}

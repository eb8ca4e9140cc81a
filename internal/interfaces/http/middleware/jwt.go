package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/auth"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/logger"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// JWTClaimsKey holds the *auth.Claims of an authenticated request
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator validates bearer tokens. *auth.JWTService implements it.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// JWTMiddlewareConfig configures JWTAuthMiddlewareWithConfig
type JWTMiddlewareConfig struct {
	Validator TokenValidator
	// PublicPaths are served without a token when matched exactly
	PublicPaths []string
	// PublicPrefixes are served without a token when the path starts with one
	PublicPrefixes []string
	Logger         *zap.Logger
}

// DefaultJWTConfig protects everything except the health check
func DefaultJWTConfig(validator TokenValidator) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Validator:   validator,
		PublicPaths: []string{"/health"},
	}
}

// JWTAuthMiddleware authenticates with DefaultJWTConfig
func JWTAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(validator))
}

// tokenRejection maps validation errors to the code and message sent back
var tokenRejections = []struct {
	err     error
	code    string
	message string
}{
	{auth.ErrExpiredToken, dto.ErrCodeTokenExpired, "Token has expired"},
	{auth.ErrInvalidTokenType, dto.ErrCodeTokenInvalid, "Invalid token type"},
	{auth.ErrTokenNotYetValid, dto.ErrCodeTokenInvalid, "Token is not yet valid"},
	{auth.ErrInvalidClaims, dto.ErrCodeTokenInvalid, "Invalid token"},
	{auth.ErrMissingUserID, dto.ErrCodeTokenInvalid, "Invalid token"},
	{auth.ErrInvalidToken, dto.ErrCodeTokenInvalid, "Invalid token"},
}

// JWTAuthMiddlewareWithConfig requires a valid bearer access token on
// every non-public path. The claims are stored under JWTClaimsKey and the
// user ID is attached to the request logger.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	isPublic := func(path string) bool {
		if slices.Contains(cfg.PublicPaths, path) {
			return true
		}
		return slices.ContainsFunc(cfg.PublicPrefixes, func(p string) bool { return strings.HasPrefix(path, p) })
	}

	return func(c *gin.Context) {
		if isPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(c.GetHeader(AuthHeaderKey), BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			log.Debug("Request without bearer token", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", getRequestID(c)))
			return
		}

		claims, err := cfg.Validator.ValidateAccessToken(token)
		if err != nil {
			rejectToken(c, log, err)
			return
		}

		c.Set(JWTClaimsKey, claims)
		ctx := c.Request.Context()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func rejectToken(c *gin.Context, log *zap.Logger, err error) {
	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	for _, r := range tokenRejections {
		if errors.Is(err, r.err) {
			code, message = r.code, r.message
			break
		}
	}
	log.Warn("Rejected access token",
		zap.String("path", c.Request.URL.Path),
		zap.String("code", code),
		zap.Error(err))
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// GetJWTClaims returns the caller's claims, nil on unauthenticated requests
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func GetJWTUserID(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func GetJWTUsername(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.Username
	}
	return ""
}

func GetJWTRoles(c *gin.Context) []string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.Roles
	}
	return nil
}

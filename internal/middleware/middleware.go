package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity headers set by the upstream gateway. Authentication itself
// happens there; this service trusts the forwarded identity.
const (
	HeaderRequesterID   = "X-Requester-ID"
	HeaderRequesterRole = "X-Requester-Role"
	HeaderRequestID     = "X-Request-ID"

	RoleAdmin = "admin"

	ctxRequesterID   = "requester_id"
	ctxRequesterRole = "requester_role"
)

// RequestIDMiddleware ensures every request carries a request id, generating
// one when the client did not supply it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// RecoveryMiddleware converts panics into 500 responses and logs them.
func RecoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   gin.H{"code": "INTERNAL_ERROR", "message": "internal server error"},
				})
			}
		}()
		c.Next()
	}
}

// LoggerMiddleware logs one structured entry per request.
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

// IdentityMiddleware extracts the requester identity from gateway headers
// and rejects requests without one.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requesterID := c.GetHeader(HeaderRequesterID)
		if requesterID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing requester identity"},
			})
			return
		}
		c.Set(ctxRequesterID, requesterID)
		c.Set(ctxRequesterRole, c.GetHeader(HeaderRequesterRole))
		c.Next()
	}
}

// RequireAdmin aborts requests whose forwarded role is not admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := GetRequesterRole(c); role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "admin role required"},
			})
			return
		}
		c.Next()
	}
}

// GetRequesterID returns the requester id set by IdentityMiddleware.
func GetRequesterID(c *gin.Context) (string, bool) {
	id := c.GetString(ctxRequesterID)
	return id, id != ""
}

// GetRequesterRole returns the requester role set by IdentityMiddleware.
func GetRequesterRole(c *gin.Context) (string, bool) {
	role := c.GetString(ctxRequesterRole)
	return role, role != ""
}

// IsAdmin reports whether the current requester holds the admin role.
func IsAdmin(c *gin.Context) bool {
	role, _ := GetRequesterRole(c)
	return role == RoleAdmin
}

// CORSMiddleware allows cross-origin requests from browser frontends.
func CORSMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, HeaderRequesterID, HeaderRequesterRole, HeaderRequestID)
	return cors.New(cfg)
}

// SecurityHeadersMiddleware sets conservative browser security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

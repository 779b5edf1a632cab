package gateway

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beesaferoot/rental-engine/internal/apperr"
	"github.com/beesaferoot/rental-engine/internal/models"
	"github.com/beesaferoot/rental-engine/internal/policy"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	callerKey       = "caller"
	userKey         = "user"
)

// RequestID reuses an incoming X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLog writes one line per request.
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []slog.Attr{
			slog.String("request_id", requestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if caller, ok := callerFrom(c); ok {
			attrs = append(attrs, slog.Uint64("user_id", uint64(caller.UserID)))
		}
		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "request", attrs...)
	}
}

// Recovery converts a panic into an internal error response.
func (g *Gateway) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				g.abortWithError(c, apperr.Internal(fmt.Errorf("panic: %v", r), "handler panicked"))
			}
		}()
		c.Next()
	}
}

// Authenticate requires a valid bearer token and attaches the caller.
func (g *Gateway) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			g.abortWithError(c, apperr.ErrInvalidToken.WithMessage("missing bearer token"))
			return
		}
		user, err := g.auth.Resolve(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			g.abortWithError(c, err)
			return
		}
		c.Set(userKey, user)
		c.Set(callerKey, policy.IdentityOf(user))
		c.Next()
	}
}

func callerFrom(c *gin.Context) (policy.Identity, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return policy.Identity{}, false
	}
	id, ok := v.(policy.Identity)
	return id, ok
}

func userFrom(c *gin.Context) *models.User {
	v, _ := c.Get(userKey)
	user, _ := v.(*models.User)
	return user
}

// mustCaller returns the identity attached by Authenticate. Routes using it
// are always mounted behind Authenticate.
func mustCaller(c *gin.Context) policy.Identity {
	id, _ := callerFrom(c)
	return id
}

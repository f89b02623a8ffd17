package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

// TokenVerifier turns a bearer token into the identity it asserts.
type TokenVerifier interface {
	ParseToken(token string) (access.Identity, error)
}

// RateLimiter is a per-key token bucket.
type RateLimiter interface {
	Allow(key string) bool
	RetryAfter(key string) time.Duration
}

type Middleware struct {
	tokens     TokenVerifier
	resolver   *access.Resolver
	log        zerolog.Logger
	corsOrigin string
}

func NewMiddleware(tokens TokenVerifier, resolver *access.Resolver, log zerolog.Logger, corsOrigin string) *Middleware {
	return &Middleware{
		tokens:     tokens,
		resolver:   resolver,
		log:        log,
		corsOrigin: corsOrigin,
	}
}

const (
	identityKey = "identity"
	viewerKey   = "viewer"
)

// AuthRequired verifies the bearer token and stores the caller's identity in
// both the gin and the request context.
func (m *Middleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			abortWithError(c, apperr.Unauthorized("authorization header required"))
			return
		}

		id, err := m.tokens.ParseToken(tokenString)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(access.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// CampaignAccess resolves the caller's role in :campaignId on every request
// and rejects non-participants. It must follow AuthRequired.
func (m *Middleware) CampaignAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identityFrom(c)
		if !ok {
			abortWithError(c, apperr.Unauthorized("authentication required"))
			return
		}
		campaignID, err := strconv.Atoi(c.Param("campaignId"))
		if err != nil || campaignID <= 0 {
			abortWithError(c, apperr.Validation("invalid campaign id"))
			return
		}

		v, err := m.resolver.Viewer(c.Request.Context(), campaignID, id.UserID)
		if err != nil {
			m.abortLogged(c, err)
			return
		}
		if v.Role == entities.RoleNone {
			abortWithError(c, apperr.Forbidden("you are not a participant of this campaign"))
			return
		}

		c.Set(viewerKey, v)
		c.Request = c.Request.WithContext(access.WithViewer(c.Request.Context(), v))
		c.Next()
	}
}

// DMRequired gates a route to the DM role. It must follow CampaignAccess.
func (m *Middleware) DMRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := viewerFrom(c)
		if err := access.RequireDM(v); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RateLimitPerUser limits requests by authenticated user id (must follow AuthRequired).
func (m *Middleware) RateLimitPerUser(rl RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identityFrom(c)
		if !ok {
			abortWithError(c, apperr.Unauthorized("user identity not found for rate limiting"))
			return
		}
		m.limit(c, rl, "user:"+strconv.Itoa(id.UserID))
	}
}

// RateLimitPerIP limits unauthenticated routes such as login by client IP.
func (m *Middleware) RateLimitPerIP(rl RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.limit(c, rl, "ip:"+c.ClientIP())
	}
}

func (m *Middleware) limit(c *gin.Context, rl RateLimiter, key string) {
	if !rl.Allow(key) {
		if wait := rl.RetryAfter(key); wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
		return
	}
	c.Next()
}

// CORSMiddleware allows cross-origin requests from the configured origin.
func (m *Middleware) CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", m.corsOrigin)
		if m.corsOrigin != "*" {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityHeaders adds security headers to prevent common attacks
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Writer.Header().Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")

		c.Next()
	}
}

// RequestSizeLimiter caps the request body size.
func RequestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		if id, ok := identityFrom(c); ok {
			ev = ev.Int("user_id", id.UserID)
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}

func identityFrom(c *gin.Context) (access.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return access.Identity{}, false
	}
	id, ok := v.(access.Identity)
	return id, ok
}

func viewerFrom(c *gin.Context) (access.Viewer, bool) {
	v, ok := c.Get(viewerKey)
	if !ok {
		return access.Viewer{}, false
	}
	viewer, ok := v.(access.Viewer)
	return viewer, ok
}

package mockapi

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/rs/zerolog/log"
)

const (
	headerRequestID = "X-Request-ID"

	ctxUsername = "username"
	ctxRole     = "role"
	ctxJTI      = "jti"
	ctxExpiry   = "exp"
)

func (s *Server) recoverMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal server error"))
			}
		}()
		c.Next()
	}
}

// loggingMiddleware echoes or assigns a request ID and logs each request.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(headerRequestID, requestID)

		start := time.Now()
		c.Next()

		log.Debug().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("Request")
	}
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		// No Origin header = same-origin request, no CORS headers needed
		if origin == "" {
			c.Next()
			return
		}

		allowedOrigins := s.config.GetAllowedOrigins()
		isAllowed := allowedOrigins.IsAllowedOrigin(origin)
		isWildcard := allowedOrigins.IsAllowedOrigin("*")

		switch {
		case isAllowed:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		case isWildcard:
			// Don't set Allow-Credentials with wildcard
			c.Header("Access-Control-Allow-Origin", "*")
		}

		if c.Request.Method == http.MethodOptions {
			if isAllowed || isWildcard {
				c.Header("Access-Control-Allow-Methods", s.config.GetAllowedMethods())
				c.Header("Access-Control-Allow-Headers", s.config.GetAllowedHeaders())
				c.Header("Access-Control-Max-Age", "86400")
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// bearerAuth accepts only unexpired, unrevoked access tokens signed by this
// server. Every rejection is a 401.
func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("Authentication credentials were not provided."))
			return
		}

		claims, err := s.signer.Verify(raw)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("Given token not valid for any token type"))
			return
		}

		tokenType, _ := claims["token_type"].(string)
		jti, _ := claims["jti"].(string)
		if tokenType != token.TypeAccess || jti == "" || s.revoked.IsRevoked(jti) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("Given token not valid for any token type"))
			return
		}

		username, _ := claims["username"].(string)
		roleClaim, _ := claims["role"].(string)
		role, _ := users.ParseRole(roleClaim)

		c.Set(ctxUsername, username)
		c.Set(ctxRole, role)
		c.Set(ctxJTI, jti)
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			c.Set(ctxExpiry, exp.Time)
		}
		c.Next()
	}
}

// requireRole answers 403 when the bearer's role is not among roles.
func (s *Server) requireRole(roles ...users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !roleFrom(c).In(roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody("You do not have permission to perform this action."))
			return
		}
		c.Next()
	}
}

func usernameFrom(c *gin.Context) string {
	return c.GetString(ctxUsername)
}

func roleFrom(c *gin.Context) users.Role {
	if v, ok := c.Get(ctxRole); ok {
		if role, ok := v.(users.Role); ok {
			return role
		}
	}
	return users.LeastPrivileged
}

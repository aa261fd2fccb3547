package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/auth"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/models"
	"github.com/BruksfildServices01/agent-crm/internal/session"
)

const (
	ContextPrincipal = "principal"
	ContextSession   = "session"
)

// PrincipalFrom returns the caller set by the session or token middleware,
// or the zero (anonymous) principal.
func PrincipalFrom(c *gin.Context) access.Principal {
	if v, ok := c.Get(ContextPrincipal); ok {
		if p, ok := v.(access.Principal); ok {
			return p
		}
	}
	return access.Principal{}
}

func setPrincipal(c *gin.Context, p access.Principal) {
	c.Set(ContextPrincipal, p)
}

// AuthMiddleware accepts a bearer token and falls back to the session
// cookie. Requests with neither are rejected with 401.
func AuthMiddleware(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httperr.Unauthorized(c, "invalid_authorization_header", "Invalid authorization header.")
				c.Abort()
				return
			}

			p, err := tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				httperr.Unauthorized(c, "invalid_token", "Invalid or expired token.")
				c.Abort()
				return
			}

			setPrincipal(c, p)
			c.Next()
			return
		}

		if !PrincipalFrom(c).Authenticated() {
			httperr.Unauthorized(c, httperr.CodeAuthenticationFailed, access.ReasonLoginRequired)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireLogin redirects anonymous browsers to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if PrincipalFrom(c).Authenticated() {
			c.Next()
			return
		}

		Session(c).Flash(c, session.FlashError, access.ReasonLoginRequired)
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}

// RequireRole redirects callers without role to the login page with an
// "Access denied" flash.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p.Role == role {
			c.Next()
			return
		}

		msg := access.ReasonAdminOnly
		if !p.Authenticated() {
			msg = access.ReasonLoginRequired
		}

		Session(c).Flash(c, session.FlashError, msg)
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

func RequireAgent() gin.HandlerFunc {
	return RequireRole(models.RoleAgent)
}

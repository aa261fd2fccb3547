package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	"github.com/BruksfildServices01/agent-crm/internal/auth"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/httpresp"
	"github.com/BruksfildServices01/agent-crm/internal/metrics"
	"github.com/BruksfildServices01/agent-crm/internal/middleware"
	"github.com/BruksfildServices01/agent-crm/internal/session"
)

type AuthHandler struct {
	authn   *auth.Authenticator
	tokens  *auth.TokenIssuer
	audit   audit.Sink
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewAuthHandler(
	authn *auth.Authenticator,
	tokens *auth.TokenIssuer,
	audit audit.Sink,
	m *metrics.Metrics,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{authn: authn, tokens: tokens, audit: audit, metrics: m, log: log}
}

// --------- Requests ---------

type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// --------- Browser ---------

func (h *AuthHandler) Index(c *gin.Context) {
	redirect(c, dashboardPath(middleware.PrincipalFrom(c)))
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if p := middleware.PrincipalFrom(c); p.Authenticated() {
		redirect(c, dashboardPath(p))
		return
	}
	httpresp.Render(c, "login", nil, middleware.Session(c).PopFlashes(c))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.metrics.Logins.WithLabelValues("failure").Inc()
		flashError(c, httperr.New(httperr.CodeAuthenticationFailed, auth.InvalidCredentials), "/login")
		return
	}

	p, err := h.authenticate(c, req)
	if err != nil {
		flashError(c, err, "/login")
		return
	}

	if err := middleware.Session(c).Login(c, p); err != nil {
		h.log.Error().Err(err).Msg("session create failed")
		flashError(c, httperr.Wrap(httperr.CodeStorageError, "session_create_failed", err), "/login")
		return
	}

	redirect(c, dashboardPath(p))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	s := middleware.Session(c)
	s.Logout(c)
	s.Flash(c, session.FlashInfo, "You have been logged out.")
	redirect(c, "/login")
}

// --------- API ---------

func (h *AuthHandler) APILogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidationFailed, "username and password are required.")
		return
	}

	p, err := h.authenticate(c, req)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	token, err := h.tokens.Issue(p)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not issue a token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  principalJSON(p),
	})
}

func (h *AuthHandler) authenticate(c *gin.Context, req LoginRequest) (access.Principal, error) {
	p, err := h.authn.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.Logins.WithLabelValues("failure").Inc()
		h.log.Info().Str("username", req.Username).Str("ip", c.ClientIP()).Msg("login failed")
		return access.Principal{}, err
	}

	h.metrics.Logins.WithLabelValues("success").Inc()
	h.audit.Dispatch(audit.EventFor(p, audit.ActionLogin, audit.EntityUser, nil, gin.H{"ip": c.ClientIP()}))
	return p, nil
}

func principalJSON(p access.Principal) gin.H {
	return gin.H{
		"id":        p.UserID,
		"username":  p.Username,
		"role":      p.Role,
		"superuser": p.Superuser,
	}
}

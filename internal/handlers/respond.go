package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/middleware"
	"github.com/BruksfildServices01/agent-crm/internal/models"
	"github.com/BruksfildServices01/agent-crm/internal/session"
)

// ======================================================
// BROWSER RESPONSES
// ======================================================

func dashboardPath(p access.Principal) string {
	switch p.Role {
	case models.RoleAdmin:
		return "/admin_dashboard"
	case models.RoleAgent:
		return "/agent_dashboard"
	default:
		return "/login"
	}
}

func redirect(c *gin.Context, to string) {
	c.Redirect(http.StatusSeeOther, to)
}

func flashSuccess(c *gin.Context, message, to string) {
	middleware.Session(c).Flash(c, session.FlashSuccess, message)
	redirect(c, to)
}

// flashError shows err to the user and redirects. Permission failures of
// anonymous callers go to the login page.
func flashError(c *gin.Context, err error, to string) {
	_ = c.Error(err)

	if httperr.IsBusiness(err, httperr.CodePermissionDenied) && !middleware.PrincipalFrom(c).Authenticated() {
		to = "/login"
	}

	middleware.Session(c).Flash(c, session.FlashError, httperr.Message(err))
	redirect(c, to)
}

// ======================================================
// PARAMS
// ======================================================

func parseID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, httperr.New(httperr.CodeNotFound, "Not found.")
	}
	return uint(id), nil
}

// parseOptionalID treats an empty value as "none".
func parseOptionalID(s string) (*uint, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, httperr.New(httperr.CodeValidationFailed, "Invalid agent.")
	}
	v := uint(id)
	return &v, nil
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	return t, err == nil
}

package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/httpresp"
	"github.com/BruksfildServices01/agent-crm/internal/middleware"
)

type MeHandler struct {
	repo domain.Repository
}

func NewMeHandler(repo domain.Repository) *MeHandler {
	return &MeHandler{repo: repo}
}

// GetMe describes the caller. The superuser has no stored row and is
// described from its token or session alone.
func (h *MeHandler) GetMe(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	out := principalJSON(p)

	if p.UserID != 0 {
		user, err := h.repo.GetUser(c.Request.Context(), p.UserID)
		if err != nil {
			httperr.Abort(c, err)
			return
		}
		out["created_at"] = user.CreatedAt
	}

	httpresp.OK(c, gin.H{"user": out})
}

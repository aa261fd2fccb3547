package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/dto"
	"github.com/BruksfildServices01/agent-crm/internal/httpresp"
	"github.com/BruksfildServices01/agent-crm/internal/middleware"
	ucAgent "github.com/BruksfildServices01/agent-crm/internal/usecase/agent"
	ucClient "github.com/BruksfildServices01/agent-crm/internal/usecase/client"
)

type DashboardHandler struct {
	listClients *ucClient.ListClients
	listAgents  *ucAgent.ListAgents
}

func NewDashboardHandler(listClients *ucClient.ListClients, listAgents *ucAgent.ListAgents) *DashboardHandler {
	return &DashboardHandler{listClients: listClients, listAgents: listAgents}
}

func (h *DashboardHandler) Dashboard(c *gin.Context) {
	redirect(c, dashboardPath(middleware.PrincipalFrom(c)))
}

func (h *DashboardHandler) Admin(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	clients, err := h.listClients.Execute(c.Request.Context(), p, listInput(c))
	if err != nil {
		flashError(c, err, "/login")
		return
	}

	agents, err := h.listAgents.Execute(c.Request.Context(), p)
	if err != nil {
		flashError(c, err, "/login")
		return
	}

	httpresp.Render(c, "admin_dashboard", gin.H{
		"user":     p.Username,
		"clients":  dto.NewClientLists(clients),
		"agents":   dto.NewAgents(agents),
		"statuses": domain.KnownStatuses(),
	}, middleware.Session(c).PopFlashes(c))
}

func (h *DashboardHandler) Agent(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	clients, err := h.listClients.Execute(c.Request.Context(), p, listInput(c))
	if err != nil {
		flashError(c, err, "/login")
		return
	}

	httpresp.Render(c, "agent_dashboard", gin.H{
		"user":     p.Username,
		"clients":  dto.NewClientLists(clients),
		"statuses": domain.KnownStatuses(),
	}, middleware.Session(c).PopFlashes(c))
}

func listInput(c *gin.Context) ucClient.ListInput {
	return ucClient.ListInput{
		Query:  c.Query("q"),
		Status: c.Query("status"),
	}
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/agent-crm/internal/dto"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/httpresp"
	"github.com/BruksfildServices01/agent-crm/internal/middleware"
	ucAgent "github.com/BruksfildServices01/agent-crm/internal/usecase/agent"
)

type AgentHandler struct {
	create *ucAgent.CreateAgent
	list   *ucAgent.ListAgents
}

func NewAgentHandler(create *ucAgent.CreateAgent, list *ucAgent.ListAgents) *AgentHandler {
	return &AgentHandler{create: create, list: list}
}

type CreateAgentRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (r CreateAgentRequest) input() ucAgent.CreateAgentInput {
	return ucAgent.CreateAgentInput{Username: r.Username, Password: r.Password}
}

// Create handles POST /create_agent and its /add_agent alias.
func (h *AgentHandler) Create(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	var req CreateAgentRequest
	_ = c.ShouldBind(&req)

	if _, err := h.create.Execute(c.Request.Context(), p, req.input()); err != nil {
		flashError(c, err, dashboardPath(p))
		return
	}

	flashSuccess(c, "Agent created successfully.", dashboardPath(p))
}

func (h *AgentHandler) APICreate(c *gin.Context) {
	var req CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidationFailed, "Invalid JSON body.")
		return
	}

	user, err := h.create.Execute(c.Request.Context(), middleware.PrincipalFrom(c), req.input())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	httpresp.Created(c, dto.NewAgent(user))
}

func (h *AgentHandler) APIList(c *gin.Context) {
	agents, err := h.list.Execute(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	httpresp.List(c, dto.NewAgents(agents))
}

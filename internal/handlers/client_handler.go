package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/agent-crm/internal/dto"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/httpresp"
	"github.com/BruksfildServices01/agent-crm/internal/middleware"
	"github.com/BruksfildServices01/agent-crm/internal/models"
	ucAgent "github.com/BruksfildServices01/agent-crm/internal/usecase/agent"
	ucClient "github.com/BruksfildServices01/agent-crm/internal/usecase/client"
)

// ======================================================
// HANDLER
// ======================================================

// ClientUseCases groups what the client routes call.
type ClientUseCases struct {
	Create  *ucClient.CreateClient
	Update  *ucClient.UpdateClient
	Delete  *ucClient.DeleteClient
	Clear   *ucClient.ClearClients
	Assign  *ucClient.AssignClient
	Comment *ucClient.AddComment
	Call    *ucClient.RecordCall
	Get     *ucClient.GetClient
	List    *ucClient.ListClients
	Agents  *ucAgent.ListAgents
}

type ClientHandler struct {
	uc ClientUseCases
}

func NewClientHandler(uc ClientUseCases) *ClientHandler {
	return &ClientHandler{uc: uc}
}

// ======================================================
// REQUESTS
// ======================================================

type ClientRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone" json:"phone"`
	Wallet   string `form:"wallet" json:"wallet"`
	FullName string `form:"full_name" json:"full_name"`
	Status   string `form:"status" json:"status"`
	Tags     string `form:"tags" json:"tags"`
	Notes    string `form:"notes" json:"notes"`

	// Form posts send the agent as a string, API clients as a number.
	AssignedAgent   string `form:"assigned_agent" json:"-"`
	AssignedAgentID *uint  `form:"-" json:"assigned_agent_id"`
}

func (r ClientRequest) input() (ucClient.ClientInput, error) {
	agentID := r.AssignedAgentID
	if agentID == nil {
		parsed, err := parseOptionalID(strings.TrimSpace(r.AssignedAgent))
		if err != nil {
			return ucClient.ClientInput{}, err
		}
		agentID = parsed
	}

	return ucClient.ClientInput{
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Wallet:          r.Wallet,
		FullName:        r.FullName,
		Status:          r.Status,
		Tags:            r.Tags,
		Notes:           r.Notes,
		AssignedAgentID: agentID,
	}, nil
}

// ClientPatchRequest changes only the fields that are present. An
// assigned_agent_id of 0 unassigns the client.
type ClientPatchRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Wallet          *string `json:"wallet"`
	FullName        *string `json:"full_name"`
	Status          *string `json:"status"`
	Tags            *string `json:"tags"`
	Notes           *string `json:"notes"`
	AssignedAgentID *uint   `json:"assigned_agent_id"`
}

type CommentRequest struct {
	Body string `form:"body" json:"body"`
}

type CallRequest struct {
	Status string `form:"status" json:"status"`
}

type AssignRequest struct {
	AgentID string `form:"agent_id"`
}

// ======================================================
// BROWSER
// ======================================================

func (h *ClientHandler) Add(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	back := dashboardPath(p)

	var req ClientRequest
	if err := c.ShouldBind(&req); err != nil {
		flashError(c, httperr.Wrap(httperr.CodeValidationFailed, "Invalid client data.", err), back)
		return
	}

	in, err := req.input()
	if err != nil {
		flashError(c, err, back)
		return
	}

	if _, err := h.uc.Create.Execute(c.Request.Context(), p, in); err != nil {
		flashError(c, err, back)
		return
	}

	flashSuccess(c, "Client added successfully.", back)
}

func (h *ClientHandler) Show(c *gin.Context) {
	h.renderClient(c, "client")
}

func (h *ClientHandler) EditPage(c *gin.Context) {
	h.renderClient(c, "edit_client")
}

func (h *ClientHandler) renderClient(c *gin.Context, page string) {
	p := middleware.PrincipalFrom(c)

	id, err := parseID(c, "id")
	if err != nil {
		flashError(c, err, dashboardPath(p))
		return
	}

	detail, err := h.uc.Get.Execute(c.Request.Context(), p, id)
	if err != nil {
		flashError(c, err, dashboardPath(p))
		return
	}

	data := gin.H{"client": dto.NewClientDetail(detail.Client, detail.Comments)}
	if p.IsAdmin() {
		agents, err := h.uc.Agents.Execute(c.Request.Context(), p)
		if err != nil {
			flashError(c, err, dashboardPath(p))
			return
		}
		data["agents"] = dto.NewAgents(agents)
	}

	httpresp.Render(c, page, data, middleware.Session(c).PopFlashes(c))
}

// Edit handles POST /edit_client/:id and POST /client/:id. The first goes
// back to the dashboard, the second stays on the client page.
func (h *ClientHandler) Edit(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	id, err := parseID(c, "id")
	if err != nil {
		flashError(c, err, dashboardPath(p))
		return
	}

	back := dashboardPath(p)
	if strings.HasPrefix(c.FullPath(), "/client/") {
		back = clientPath(id)
	}

	var req ClientRequest
	if err := c.ShouldBind(&req); err != nil {
		flashError(c, httperr.Wrap(httperr.CodeValidationFailed, "Invalid client data.", err), back)
		return
	}

	in, err := req.input()
	if err != nil {
		flashError(c, err, back)
		return
	}

	if _, err := h.uc.Update.Execute(c.Request.Context(), p, id, in); err != nil {
		flashError(c, err, back)
		return
	}

	flashSuccess(c, "Client updated successfully.", back)
}

func (h *ClientHandler) Remove(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	id, err := parseID(c, "id")
	if err != nil {
		flashError(c, err, dashboardPath(p))
		return
	}

	if err := h.uc.Delete.Execute(c.Request.Context(), p, id); err != nil {
		flashError(c, err, dashboardPath(p))
		return
	}

	flashSuccess(c, "Client deleted successfully.", dashboardPath(p))
}

func (h *ClientHandler) ClearAll(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	n, err := h.uc.Clear.Execute(c.Request.Context(), p)
	if err != nil {
		flashError(c, err, dashboardPath(p))
		return
	}

	flashSuccess(c, fmt.Sprintf("Deleted %d clients.", n), dashboardPath(p))
}

func (h *ClientHandler) Comment(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	id, err := parseID(c, "id")
	if err != nil {
		flashError(c, err, dashboardPath(p))
		return
	}

	var req CommentRequest
	_ = c.ShouldBind(&req)

	if _, err := h.uc.Comment.Execute(c.Request.Context(), p, id, req.Body); err != nil {
		flashError(c, err, clientPath(id))
		return
	}

	flashSuccess(c, "Comment added.", clientPath(id))
}

func (h *ClientHandler) Call(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	id, err := parseID(c, "id")
	if err != nil {
		flashError(c, err, dashboardPath(p))
		return
	}

	var req CallRequest
	_ = c.ShouldBind(&req)

	if _, err := h.uc.Call.Execute(c.Request.Context(), p, id, req.Status); err != nil {
		flashError(c, err, clientPath(id))
		return
	}

	flashSuccess(c, "Call recorded.", clientPath(id))
}

func (h *ClientHandler) Assign(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	id, err := parseID(c, "id")
	if err != nil {
		flashError(c, err, dashboardPath(p))
		return
	}

	var req AssignRequest
	_ = c.ShouldBind(&req)

	agentID, err := parseOptionalID(strings.TrimSpace(req.AgentID))
	if err != nil {
		flashError(c, err, clientPath(id))
		return
	}

	if _, err := h.uc.Assign.Execute(c.Request.Context(), p, id, agentID); err != nil {
		flashError(c, err, clientPath(id))
		return
	}

	flashSuccess(c, "Client assigned.", clientPath(id))
}

func clientPath(id uint) string {
	return fmt.Sprintf("/client/%d", id)
}

// ======================================================
// API
// ======================================================

func (h *ClientHandler) APIList(c *gin.Context) {
	clients, err := h.uc.List.Execute(c.Request.Context(), middleware.PrincipalFrom(c), listInput(c))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	httpresp.List(c, dto.NewClientLists(clients))
}

func (h *ClientHandler) APICreate(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidationFailed, "Invalid JSON body.")
		return
	}

	in, err := req.input()
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	client, err := h.uc.Create.Execute(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	httpresp.Created(c, dto.NewClientList(client))
}

func (h *ClientHandler) APIGet(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	detail, err := h.uc.Get.Execute(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	httpresp.OK(c, dto.NewClientDetail(detail.Client, detail.Comments))
}

func (h *ClientHandler) APIPatch(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	id, err := parseID(c, "id")
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	var req ClientPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidationFailed, "Invalid JSON body.")
		return
	}

	current, err := h.uc.Get.Execute(c.Request.Context(), p, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	in := mergePatch(current.Client, req)

	client, err := h.uc.Update.Execute(c.Request.Context(), p, id, in)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	httpresp.OK(c, dto.NewClientList(client))
}

func (h *ClientHandler) APIDelete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	if err := h.uc.Delete.Execute(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ClientHandler) APIComment(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidationFailed, "Invalid JSON body.")
		return
	}

	comment, err := h.uc.Comment.Execute(c.Request.Context(), middleware.PrincipalFrom(c), id, req.Body)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	httpresp.Created(c, gin.H{
		"id":         comment.ID,
		"client_id":  comment.ClientID,
		"body":       comment.Body,
		"created_at": comment.CreatedAt,
	})
}

func (h *ClientHandler) APICall(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	var req CallRequest
	_ = c.ShouldBindJSON(&req)

	client, err := h.uc.Call.Execute(c.Request.Context(), middleware.PrincipalFrom(c), id, req.Status)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	httpresp.OK(c, dto.NewClientList(client))
}

func mergePatch(cur *models.Client, req ClientPatchRequest) ucClient.ClientInput {
	in := ucClient.ClientInput{
		Name:            cur.Name,
		Email:           cur.Email,
		Phone:           cur.Phone,
		Wallet:          cur.Wallet,
		FullName:        cur.FullName,
		Status:          cur.Status,
		Tags:            cur.Tags,
		Notes:           cur.Notes,
		AssignedAgentID: cur.AssignedAgentID,
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&in.Name, req.Name)
	set(&in.Email, req.Email)
	set(&in.Phone, req.Phone)
	set(&in.Wallet, req.Wallet)
	set(&in.FullName, req.FullName)
	set(&in.Status, req.Status)
	set(&in.Tags, req.Tags)
	set(&in.Notes, req.Notes)

	if req.AssignedAgentID != nil {
		in.AssignedAgentID = req.AssignedAgentID
	}
	return in
}

package dto

import (
	"time"

	"github.com/BruksfildServices01/agent-crm/internal/models"
)

type ClientListDTO struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Wallet        string     `json:"wallet"`
	Status        string     `json:"status"`
	Tags          string     `json:"tags"`
	AgentID       *uint      `json:"assigned_agent_id"`
	AgentName     string     `json:"assigned_agent"`
	LastContactAt *time.Time `json:"last_contact_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

type CommentDTO struct {
	ID        uint      `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type ClientDetailDTO struct {
	ClientListDTO
	Notes    string       `json:"notes"`
	Comments []CommentDTO `json:"comments"`
}

type AgentDTO struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func NewClientList(c *models.Client) ClientListDTO {
	out := ClientListDTO{
		ID:            c.ID,
		Name:          c.Name,
		FullName:      c.FullName,
		Email:         c.Email,
		Phone:         c.Phone,
		Wallet:        c.Wallet,
		Status:        c.Status,
		Tags:          c.Tags,
		AgentID:       c.AssignedAgentID,
		LastContactAt: c.LastContactAt,
		CreatedAt:     c.CreatedAt,
	}
	if c.AssignedAgent != nil {
		out.AgentName = c.AssignedAgent.Username
	}
	return out
}

func NewClientLists(clients []models.Client) []ClientListDTO {
	out := make([]ClientListDTO, 0, len(clients))
	for i := range clients {
		out = append(out, NewClientList(&clients[i]))
	}
	return out
}

func NewClientDetail(c *models.Client, comments []models.Comment) ClientDetailDTO {
	out := ClientDetailDTO{
		ClientListDTO: NewClientList(c),
		Notes:         c.Notes,
		Comments:      make([]CommentDTO, 0, len(comments)),
	}
	for _, cm := range comments {
		out.Comments = append(out.Comments, CommentDTO{
			ID:        cm.ID,
			Body:      cm.Body,
			Author:    cm.Author.Username,
			CreatedAt: cm.CreatedAt,
		})
	}
	return out
}

func NewAgents(users []models.User) []AgentDTO {
	out := make([]AgentDTO, 0, len(users))
	for _, u := range users {
		out = append(out, NewAgent(&u))
	}
	return out
}

func NewAgent(u *models.User) AgentDTO {
	return AgentDTO{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt}
}

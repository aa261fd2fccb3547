package crm

import (
	"context"

	"github.com/BruksfildServices01/agent-crm/internal/models"
)

// ClientFilter narrows a client listing.
type ClientFilter struct {
	// AgentID restricts the listing to one agent's clients when set.
	AgentID *uint
	// Query is matched case-insensitively against the text columns.
	Query  string
	Status string
	// OldestFirst orders by id ascending instead of newest first.
	OldestFirst bool
}

type Repository interface {
	// -------- Clients --------
	GetClient(ctx context.Context, id uint) (*models.Client, error)
	ListClients(ctx context.Context, filter ClientFilter) ([]models.Client, error)
	CreateClient(ctx context.Context, client *models.Client) error
	UpdateClient(ctx context.Context, client *models.Client) error
	DeleteClient(ctx context.Context, id uint) error
	DeleteClients(ctx context.Context, agentID *uint) (int64, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// -------- Comments --------
	ListComments(ctx context.Context, clientID uint) ([]models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error

	// -------- Users --------
	GetUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListAgents(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	// -------- Transactions --------
	// Transaction runs fn against a repository bound to one transaction.
	// Returning an error from fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Repository) error) error
}

package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

type CRMGormRepository struct {
	db *gorm.DB
}

func NewCRMGormRepository(db *gorm.DB) *CRMGormRepository {
	return &CRMGormRepository{db: db}
}

func storageErr(message string, err error) error {
	return httperr.Wrap(httperr.CodeStorageError, message, err)
}

// --------------------------------------------------
// Clients
// --------------------------------------------------

func (r *CRMGormRepository) GetClient(
	ctx context.Context,
	id uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).
		Preload("AssignedAgent").
		First(&client, id).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.New(httperr.CodeNotFound, "Client not found.")
		}
		return nil, storageErr("failed_to_get_client", err)
	}
	return &client, nil
}

func (r *CRMGormRepository) ListClients(
	ctx context.Context,
	filter domain.ClientFilter,
) ([]models.Client, error) {

	q := r.db.WithContext(ctx).Preload("AssignedAgent")

	if filter.AgentID != nil {
		q = q.Where("assigned_agent_id = ?", *filter.AgentID)
	}

	if query := strings.ToLower(strings.TrimSpace(filter.Query)); query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR LOWER(wallet) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ? OR LOWER(tags) LIKE ?",
			like, like, like, like, like, like,
		)
	}

	if status := strings.TrimSpace(filter.Status); status != "" {
		q = q.Where("status = ?", domain.NormalizeStatus(status))
	}

	if filter.OldestFirst {
		q = q.Order("id ASC")
	} else {
		q = q.Order("created_at DESC").Order("id DESC")
	}

	var clients []models.Client
	if err := q.Find(&clients).Error; err != nil {
		return nil, storageErr("failed_to_list_clients", err)
	}
	return clients, nil
}

func (r *CRMGormRepository) CreateClient(
	ctx context.Context,
	client *models.Client,
) error {
	if err := r.db.WithContext(ctx).Omit("AssignedAgent").Create(client).Error; err != nil {
		return storageErr("failed_to_create_client", err)
	}
	return nil
}

func (r *CRMGormRepository) UpdateClient(
	ctx context.Context,
	client *models.Client,
) error {
	if err := r.db.WithContext(ctx).Omit("AssignedAgent").Save(client).Error; err != nil {
		return storageErr("failed_to_update_client", err)
	}
	return nil
}

func (r *CRMGormRepository) DeleteClient(
	ctx context.Context,
	id uint,
) error {
	return r.Transaction(ctx, func(tx domain.Repository) error {
		gtx := tx.(*CRMGormRepository).db

		if err := gtx.Where("client_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return storageErr("failed_to_delete_comments", err)
		}

		res := gtx.Delete(&models.Client{}, id)
		if res.Error != nil {
			return storageErr("failed_to_delete_client", res.Error)
		}
		if res.RowsAffected == 0 {
			return httperr.New(httperr.CodeNotFound, "Client not found.")
		}
		return nil
	})
}

// DeleteClients removes every client (or one agent's clients) together
// with their comments.
func (r *CRMGormRepository) DeleteClients(
	ctx context.Context,
	agentID *uint,
) (int64, error) {

	var deleted int64
	err := r.Transaction(ctx, func(tx domain.Repository) error {
		gtx := tx.(*CRMGormRepository).db

		ids := gtx.Model(&models.Client{}).Select("id")
		clients := gtx.Where("1 = 1")
		if agentID != nil {
			ids = ids.Where("assigned_agent_id = ?", *agentID)
			clients = gtx.Where("assigned_agent_id = ?", *agentID)
		}

		if err := gtx.Where("client_id IN (?)", ids).Delete(&models.Comment{}).Error; err != nil {
			return storageErr("failed_to_delete_comments", err)
		}

		res := clients.Delete(&models.Client{})
		if res.Error != nil {
			return storageErr("failed_to_delete_clients", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})

	return deleted, err
}

func (r *CRMGormRepository) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, storageErr("failed_to_check_email", err)
	}
	return count > 0, nil
}

// --------------------------------------------------
// Comments
// --------------------------------------------------

func (r *CRMGormRepository) ListComments(
	ctx context.Context,
	clientID uint,
) ([]models.Comment, error) {

	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("client_id = ?", clientID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, storageErr("failed_to_list_comments", err)
	}
	return comments, nil
}

func (r *CRMGormRepository) CreateComment(
	ctx context.Context,
	comment *models.Comment,
) error {
	if err := r.db.WithContext(ctx).Omit("Client", "Author").Create(comment).Error; err != nil {
		return storageErr("failed_to_create_comment", err)
	}
	return nil
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (r *CRMGormRepository) GetUser(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.New(httperr.CodeNotFound, "User not found.")
		}
		return nil, storageErr("failed_to_get_user", err)
	}
	return &user, nil
}

func (r *CRMGormRepository) FindUserByUsername(
	ctx context.Context,
	username string,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.New(httperr.CodeNotFound, "User not found.")
		}
		return nil, storageErr("failed_to_find_user", err)
	}
	return &user, nil
}

func (r *CRMGormRepository) ListAgents(ctx context.Context) ([]models.User, error) {
	var agents []models.User
	if err := r.db.WithContext(ctx).
		Where("role = ?", models.RoleAgent).
		Order("username ASC").
		Find(&agents).Error; err != nil {
		return nil, storageErr("failed_to_list_agents", err)
	}
	return agents, nil
}

func (r *CRMGormRepository) CreateUser(
	ctx context.Context,
	user *models.User,
) error {
	return r.Transaction(ctx, func(tx domain.Repository) error {
		gtx := tx.(*CRMGormRepository).db

		var count int64
		if err := gtx.Model(&models.User{}).
			Where("username = ?", user.Username).
			Count(&count).Error; err != nil {
			return storageErr("failed_to_check_username", err)
		}
		if count > 0 {
			return httperr.New(httperr.CodeConflict, "Username already exists.")
		}

		if err := gtx.Create(user).Error; err != nil {
			return storageErr("failed_to_create_user", err)
		}
		return nil
	})
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *CRMGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CRMGormRepository{db: tx})
	})
}

// Compile-time check
var _ domain.Repository = (*CRMGormRepository)(nil)

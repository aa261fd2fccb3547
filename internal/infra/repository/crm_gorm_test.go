package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/agent-crm/internal/db/dbtest"
	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/infra/repository"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

func seedAgent(t *testing.T, repo *repository.CRMGormRepository, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, PasswordHash: "x", Role: models.RoleAgent}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func TestClients_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCRMGormRepository(dbtest.New(t))
	alice := seedAgent(t, repo, "alice")

	c := &models.Client{Name: "Acme", Email: "Ops@Acme.io", Status: "NEW", AssignedAgentID: &alice.ID}
	require.NoError(t, repo.CreateClient(ctx, c))
	require.NotZero(t, c.ID)

	got, err := repo.GetClient(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedAgent)
	assert.Equal(t, "alice", got.AssignedAgent.Username)

	got.Phone = "555"
	require.NoError(t, repo.UpdateClient(ctx, got))

	got, err = repo.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "555", got.Phone)

	exists, err := repo.EmailExists(ctx, " ops@acme.IO ")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists(ctx, "nobody@acme.io")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.GetClient(ctx, 999)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNotFound))
}

func TestListClients_Filters(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCRMGormRepository(dbtest.New(t))
	alice := seedAgent(t, repo, "alice")

	for _, c := range []*models.Client{
		{Name: "Alpha", Status: "NEW", Tags: "vip", AssignedAgentID: &alice.ID},
		{Name: "Beta", Status: "DEPOSIT"},
		{Name: "Gamma", Status: "DEPOSIT", Wallet: "0xVIP"},
	} {
		require.NoError(t, repo.CreateClient(ctx, c))
	}

	mine, err := repo.ListClients(ctx, domain.ClientFilter{AgentID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Alpha", mine[0].Name)

	deposits, err := repo.ListClients(ctx, domain.ClientFilter{Status: "deposit", OldestFirst: true})
	require.NoError(t, err)
	require.Len(t, deposits, 2)
	assert.Equal(t, "Beta", deposits[0].Name)

	vip, err := repo.ListClients(ctx, domain.ClientFilter{Query: "VIP", OldestFirst: true})
	require.NoError(t, err)
	require.Len(t, vip, 2)
	assert.Equal(t, "Alpha", vip[0].Name)
	assert.Equal(t, "Gamma", vip[1].Name)
}

func TestDeleteClients_ByAgent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCRMGormRepository(dbtest.New(t))
	alice := seedAgent(t, repo, "alice")

	mine := &models.Client{Name: "Mine", Status: "NEW", AssignedAgentID: &alice.ID}
	other := &models.Client{Name: "Other", Status: "NEW"}
	require.NoError(t, repo.CreateClient(ctx, mine))
	require.NoError(t, repo.CreateClient(ctx, other))
	require.NoError(t, repo.CreateComment(ctx, &models.Comment{Body: "x", ClientID: mine.ID, AuthorID: alice.ID}))
	require.NoError(t, repo.CreateComment(ctx, &models.Comment{Body: "y", ClientID: other.ID, AuthorID: alice.ID}))

	n, err := repo.DeleteClients(ctx, &alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := repo.ListClients(ctx, domain.ClientFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "Other", left[0].Name)

	comments, err := repo.ListComments(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	comments, err = repo.ListComments(ctx, mine.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCRMGormRepository(dbtest.New(t))

	seedAgent(t, repo, "zed")
	seedAgent(t, repo, "amy")
	require.NoError(t, repo.CreateUser(ctx, &models.User{Username: "boss", PasswordHash: "x", Role: models.RoleAdmin}))

	err := repo.CreateUser(ctx, &models.User{Username: "amy", PasswordHash: "x", Role: models.RoleAgent})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeConflict))

	agents, err := repo.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "amy", agents[0].Username)
	assert.Equal(t, "zed", agents[1].Username)

	u, err := repo.FindUserByUsername(ctx, "boss")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = repo.FindUserByUsername(ctx, "ghost")
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNotFound))

	_, err = repo.GetUser(ctx, 999)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNotFound))
}

func TestTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCRMGormRepository(dbtest.New(t))

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx domain.Repository) error {
		for _, name := range []string{"A", "B", "C"} {
			if err := tx.CreateClient(ctx, &models.Client{Name: name, Status: "NEW"}); err != nil {
				return err
			}
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	left, err := repo.ListClients(ctx, domain.ClientFilter{})
	require.NoError(t, err)
	assert.Empty(t, left)
}

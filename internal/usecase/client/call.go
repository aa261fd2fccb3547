package client

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/models"
	"github.com/BruksfildServices01/agent-crm/internal/timezone"
)

type RecordCall struct {
	repo     domain.Repository
	audit    audit.Sink
	policy   access.Policy
	timezone string
}

func NewRecordCall(repo domain.Repository, audit audit.Sink, policy access.Policy, tz string) *RecordCall {
	return &RecordCall{repo: repo, audit: audit, policy: policy, timezone: tz}
}

// Execute stamps the client's last contact time and, when status is
// non-empty, moves it to that status.
func (uc *RecordCall) Execute(
	ctx context.Context,
	actor access.Principal,
	clientID uint,
	status string,
) (*models.Client, error) {

	if err := access.Check(actor, access.CapRecordCall, uc.policy).Err(); err != nil {
		return nil, err
	}

	var c *models.Client
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		c, err = tx.GetClient(ctx, clientID)
		if err != nil {
			return err
		}

		if err := access.CheckClient(actor, access.CapRecordCall, c, uc.policy).Err(); err != nil {
			return err
		}

		now := timezone.NowIn(uc.timezone)
		c.LastContactAt = &now
		if strings.TrimSpace(status) != "" {
			c.Status = domain.NormalizeStatus(status)
		}
		return tx.UpdateClient(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.EventFor(actor, audit.ActionCallRecorded, audit.EntityClient, &c.ID, map[string]string{
		"status": c.Status,
	}))
	return c, nil
}

package client

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

const maxCommentLength = 5000

type AddComment struct {
	repo   domain.Repository
	audit  audit.Sink
	policy access.Policy
}

func NewAddComment(repo domain.Repository, audit audit.Sink, policy access.Policy) *AddComment {
	return &AddComment{repo: repo, audit: audit, policy: policy}
}

func (uc *AddComment) Execute(
	ctx context.Context,
	actor access.Principal,
	clientID uint,
	body string,
) (*models.Comment, error) {

	if err := access.Check(actor, access.CapCommentClient, uc.policy).Err(); err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, httperr.New(httperr.CodeValidationFailed, "Comment cannot be empty.")
	}
	if len(body) > maxCommentLength {
		return nil, httperr.Newf(httperr.CodeValidationFailed, "Comment must be at most %d characters.", maxCommentLength)
	}

	var comment *models.Comment
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		c, err := tx.GetClient(ctx, clientID)
		if err != nil {
			return err
		}

		if err := access.CheckClient(actor, access.CapCommentClient, c, uc.policy).Err(); err != nil {
			return err
		}

		author, err := authorID(ctx, tx, actor)
		if err != nil {
			return err
		}

		comment = &models.Comment{Body: body, ClientID: c.ID, AuthorID: author}
		return tx.CreateComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.EventFor(actor, audit.ActionCommentAdded, audit.EntityClient, &clientID, map[string]uint{
		"comment_id": comment.ID,
	}))
	return comment, nil
}

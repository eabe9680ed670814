package service

import (
	"go.uber.org/zap"

	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/policy"
)

// Authorizer is the single permission gate consulted by every mutating usecase.
type Authorizer struct {
	document policy.PolicyDocument
}

func NewAuthorizer(document policy.PolicyDocument) *Authorizer {
	return &Authorizer{document: document}
}

func (a *Authorizer) CanPerform(user *domain.User, action domain.Action, issue *domain.Issue) bool {
	if user == nil || user.ID == "" {
		return false
	}

	requester := map[string]any{
		"id":   user.ID,
		"role": string(user.Role),
	}
	var this map[string]any
	if issue != nil {
		this = map[string]any{
			"id":               issue.ID,
			"authorId":         issue.AuthorID,
			"status":           string(issue.Status),
			"moderationStatus": string(issue.ModerationStatus),
			"category":         string(issue.Category),
		}
	}

	allowed, err := policy.Decide(a.document, policy.NewRequestContext(requester, this, nil), string(action))
	if err != nil {
		zap.S().Errorw("policy evaluation failed", "action", action, "user", user.ID, "error", err)
		return false
	}
	return allowed
}

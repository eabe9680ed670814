package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/schemas"
)

// ToggleSupport flips the user's upvote and reports whether it is now set.
func (uc *IssueUsecase) ToggleSupport(ctx context.Context, userID, id string) (domain.Issue, bool, error) {
	ctx, span := tracer.Start(ctx, "Issue.Usecase.ToggleSupport")
	defer span.End()

	user, issue, err := uc.visible(ctx, userID, id)
	if err != nil {
		return domain.Issue{}, false, err
	}
	if !uc.auth.CanPerform(&user, domain.ActionIssueSupport, &issue) {
		return domain.Issue{}, false, domain.ErrPermissionDenied
	}

	var supported bool
	updated, err := uc.state.MutateIssue(id, func(i *domain.Issue) error {
		supported = i.ToggleSupport(user.ID)
		return nil
	})
	if err != nil {
		return domain.Issue{}, false, err
	}

	uc.persist.Update(ctx, updated)
	uc.publish(ctx, schemas.IssueSupported, id, "")
	return updated, supported, nil
}

// Flag reports the issue as abusive. Repeat flags by one user are no-ops.
// The reason is only logged.
func (uc *IssueUsecase) Flag(ctx context.Context, userID, id, reason string) (domain.Issue, error) {
	ctx, span := tracer.Start(ctx, "Issue.Usecase.Flag")
	defer span.End()

	user, issue, err := uc.visible(ctx, userID, id)
	if err != nil {
		return domain.Issue{}, err
	}
	if !uc.auth.CanPerform(&user, domain.ActionIssueFlag, &issue) {
		return domain.Issue{}, domain.ErrPermissionDenied
	}

	var added bool
	before := issue.ModerationStatus
	updated, err := uc.state.MutateIssue(id, func(i *domain.Issue) error {
		before = i.ModerationStatus
		added = i.Flag(user.ID)
		return nil
	})
	if err != nil {
		return domain.Issue{}, err
	}
	if !added {
		return updated, nil
	}

	zap.S().Infow("issue flagged", "issue", id, "user", user.ID, "reason", reason, "flags", len(updated.FlaggedBy))
	uc.persist.Update(ctx, updated)
	if before != updated.ModerationStatus {
		uc.publish(ctx, schemas.IssueModerated, id, "")
	}
	return updated, nil
}

// Review is the privileged moderation decision; it is the only way back to Approved.
func (uc *IssueUsecase) Review(ctx context.Context, userID, id string, decision domain.ModerationStatus) (domain.Issue, error) {
	ctx, span := tracer.Start(ctx, "Issue.Usecase.Review")
	defer span.End()

	if decision != domain.ModerationApproved && decision != domain.ModerationRejected {
		return domain.Issue{}, domain.ValidationError{Field: "decision", Reason: "must be APPROVED or REJECTED"}
	}

	user, _, err := uc.privileged(ctx, userID, id, domain.ActionIssueModerate)
	if err != nil {
		return domain.Issue{}, err
	}

	updated, err := uc.state.MutateIssue(id, func(i *domain.Issue) error {
		i.ModerationStatus = decision
		i.UpdatedAt = uc.now()
		return nil
	})
	if err != nil {
		return domain.Issue{}, err
	}

	uc.persist.Update(ctx, updated)
	uc.publish(ctx, schemas.IssueModerated, id, user.ID)
	return updated, nil
}

package usecase

import (
	"context"
	"strings"

	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/schemas"
)

// Comment adds a citizen comment. It never changes the issue status.
func (uc *IssueUsecase) Comment(ctx context.Context, userID, id, text string) (domain.Issue, error) {
	ctx, span := tracer.Start(ctx, "Issue.Usecase.Comment")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Issue{}, domain.ValidationError{Field: "text", Reason: "required"}
	}

	user, issue, err := uc.visible(ctx, userID, id)
	if err != nil {
		return domain.Issue{}, err
	}
	if !uc.auth.CanPerform(&user, domain.ActionIssueComment, &issue) {
		return domain.Issue{}, domain.ErrPermissionDenied
	}

	comment := domain.Comment{
		ID:         engaja.NewID("c"),
		UserID:     user.ID,
		UserName:   user.Name,
		UserAvatar: user.Avatar,
		Text:       text,
		CreatedAt:  uc.now(),
	}
	updated, err := uc.state.MutateIssue(id, func(i *domain.Issue) error {
		i.Comments = append(i.Comments, comment)
		i.UpdatedAt = comment.CreatedAt
		return nil
	})
	if err != nil {
		return domain.Issue{}, err
	}

	actor := user.ID
	if issue.IsAnonymous && user.ID == issue.AuthorID {
		actor = ""
	}

	uc.persist.Update(ctx, updated)
	uc.publish(ctx, schemas.IssueCommented, id, actor)
	return updated, nil
}

// Respond attaches an official response signed by the city office. The first
// one moves a Registered issue to InAnalysis.
func (uc *IssueUsecase) Respond(ctx context.Context, userID, id, text, audioURL string) (domain.Issue, error) {
	ctx, span := tracer.Start(ctx, "Issue.Usecase.Respond")
	defer span.End()

	text = strings.TrimSpace(text)
	audioURL = strings.TrimSpace(audioURL)
	if text == "" && audioURL == "" {
		return domain.Issue{}, domain.ValidationError{Field: "text", Reason: "text or audio is required"}
	}

	user, _, err := uc.privileged(ctx, userID, id, domain.ActionIssueRespond)
	if err != nil {
		return domain.Issue{}, err
	}

	comment := domain.Comment{
		ID:         engaja.NewID("c"),
		UserID:     user.ID,
		UserName:   uc.config.OfficeName,
		Text:       text,
		AudioURL:   audioURL,
		IsOfficial: true,
		CreatedAt:  uc.now(),
	}
	var advanced bool
	updated, err := uc.state.MutateIssue(id, func(i *domain.Issue) error {
		advanced = i.AppendComment(comment)
		i.UpdatedAt = comment.CreatedAt
		return nil
	})
	if err != nil {
		return domain.Issue{}, err
	}

	uc.persist.Update(ctx, updated)
	uc.publish(ctx, schemas.IssueResponded, id, user.ID)
	if advanced {
		uc.publish(ctx, schemas.IssueUpdated, id, user.ID)
	}
	return updated, nil
}

package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/schemas"
)

var tracer = otel.Tracer("issue")

type IssueConfig struct {
	OfficeName      string
	UploadTimeout   time.Duration
	ClassifyTimeout time.Duration
}

type CreateIssueInput struct {
	Title             string
	Description       string
	Category          string
	IsAnonymous       bool
	LiabilityAccepted bool
	Location          domain.Location
	Attachments       []domain.Attachment
	// SkipUploads keeps every attachment local and never calls the uploader.
	SkipUploads bool
}

type IssuePatch struct {
	Title       *string
	Description *string
	Category    *domain.Category
	Status      *domain.IssueStatus
	Location    *domain.Location
}

// IssueUsecase is the Issue Lifecycle Manager. Local state is updated first;
// the gateway is written in the background.
type IssueUsecase struct {
	state      *State
	persist    *Persister
	classifier Classifier
	uploader   Uploader
	auth       Authorizer
	events     EventPublisher
	users      *UserUsecase
	config     IssueConfig
	now        func() time.Time
}

func NewIssueUsecase(
	state *State,
	persist *Persister,
	classifier Classifier,
	uploader Uploader,
	auth Authorizer,
	events EventPublisher,
	users *UserUsecase,
	config IssueConfig,
) *IssueUsecase {
	if config.OfficeName == "" {
		config.OfficeName = domain.DefaultOffice
	}
	if config.UploadTimeout <= 0 {
		config.UploadTimeout = domain.UploadTimeout
	}
	if config.ClassifyTimeout <= 0 {
		config.ClassifyTimeout = 15 * time.Second
	}
	return &IssueUsecase{
		state:      state,
		persist:    persist,
		classifier: classifier,
		uploader:   uploader,
		auth:       auth,
		events:     events,
		users:      users,
		config:     config,
		now:        time.Now,
	}
}

func (uc *IssueUsecase) Create(ctx context.Context, userID string, input CreateIssueInput) (domain.Issue, error) {
	ctx, span := tracer.Start(ctx, "Issue.Usecase.Create")
	defer span.End()

	author, err := uc.users.Get(ctx, userID)
	if err != nil {
		return domain.Issue{}, err
	}
	if !uc.auth.CanPerform(&author, domain.ActionIssueCreate, nil) {
		return domain.Issue{}, domain.ErrPermissionDenied
	}

	if !input.LiabilityAccepted {
		return domain.Issue{}, domain.ValidationError{Field: "liabilityAccepted", Reason: "must be accepted"}
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return domain.Issue{}, domain.ValidationError{Field: "description", Reason: "required"}
	}

	var selected domain.Category
	if input.Category != "" {
		c, ok := domain.ParseCategory(input.Category)
		if !ok {
			return domain.Issue{}, domain.ValidationError{Field: "category", Reason: "unknown category"}
		}
		selected = c
	}

	var classification domain.Classification
	if utf8.RuneCountInString(description) < domain.MinClassifyLength {
		if selected == "" {
			return domain.Issue{}, domain.ValidationError{
				Field:  "category",
				Reason: "required when the description is too short to classify",
			}
		}
		classification = domain.FallbackClassification(description)
	} else {
		classification = uc.classify(ctx, description)
	}

	category := classification.Category
	if selected != "" {
		category = selected
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = classification.Summary
	}

	anonymous := input.IsAnonymous || classification.Sensitive() || category == domain.CategorySecurity

	id := engaja.NewProtocol()
	now := uc.now()
	issue := domain.Issue{
		ID:               id,
		Title:            title,
		Description:      description,
		Category:         category,
		Severity:         classification.Severity,
		Status:           domain.StatusRegistered,
		ModerationStatus: domain.ModerationApproved,
		Location:         input.Location,
		AuthorID:         author.ID,
		AuthorName:       author.Name,
		AuthorAvatar:     author.Avatar,
		IsAnonymous:      anonymous,
		AIAnalysis:       classification.Feedback,
		Attachments:      uc.uploadAll(ctx, id, input.Attachments, input.SkipUploads),
		Comments:         []domain.Comment{},
		SupportedBy:      domain.UserSet{},
		FlaggedBy:        domain.UserSet{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = uc.state.PrependIssue(issue)
	if err != nil {
		return domain.Issue{}, err
	}
	uc.persist.Create(ctx, issue)
	actor := author.ID
	if issue.IsAnonymous {
		actor = ""
	}
	uc.publish(ctx, schemas.IssueCreated, issue.ID, actor)

	_, err = uc.users.Award(ctx, author.ID, domain.ActivityIssueCreated, "Relato enviado: "+title, domain.IssueCreatedPoints)
	if err != nil {
		zap.S().Warnw("failed to award points", "user", author.ID, "error", err)
	}

	return issue, nil
}

// Classify runs the classifier alone, degrading to the fallback result.
func (uc *IssueUsecase) Classify(ctx context.Context, description string) (domain.Classification, error) {
	ctx, span := tracer.Start(ctx, "Issue.Usecase.Classify")
	defer span.End()

	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) < domain.MinClassifyLength {
		return domain.Classification{}, domain.ValidationError{Field: "description", Reason: "too short to classify"}
	}
	return uc.classify(ctx, description), nil
}

func (uc *IssueUsecase) classify(ctx context.Context, description string) domain.Classification {
	if uc.classifier == nil {
		return domain.FallbackClassification(description)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.config.ClassifyTimeout)
	defer cancel()

	result, err := uc.classifier.Classify(ctx, description)
	if err != nil {
		zap.S().Warnw("classification failed, using fallback", "error", err)
		return domain.FallbackClassification(description)
	}
	if _, ok := domain.ParseSeverity(string(result.Severity)); !ok {
		result.Severity = domain.SeverityMedium
	}
	if strings.TrimSpace(result.Summary) == "" {
		result.Summary = domain.Truncate(description, domain.FallbackTitleLength)
	}
	return result
}

// Get returns an issue the user may see. Hidden issues look missing.
func (uc *IssueUsecase) Get(ctx context.Context, userID, id string) (domain.Issue, error) {
	issue, ok := uc.state.Issue(id)
	if !ok {
		return domain.Issue{}, domain.NotFoundError{Resource: "issue"}
	}
	user := uc.viewer(ctx, userID)
	if !uc.canSee(user, &issue) {
		return domain.Issue{}, domain.NotFoundError{Resource: "issue"}
	}
	return issue, nil
}

// PublicIssues lists approved issues only.
func (uc *IssueUsecase) PublicIssues(ctx context.Context) []domain.Issue {
	return uc.state.Issues(func(i *domain.Issue) bool {
		return i.PubliclyVisible()
	})
}

// AuthorIssues lists the user's own issues whatever their moderation status.
func (uc *IssueUsecase) AuthorIssues(ctx context.Context, userID string) []domain.Issue {
	return uc.state.Issues(func(i *domain.Issue) bool {
		return i.AuthorID == userID
	})
}

// VisibleIssues lists approved issues, the user's own, and everything else
// the user's role may inspect.
func (uc *IssueUsecase) VisibleIssues(ctx context.Context, userID string) []domain.Issue {
	user := uc.viewer(ctx, userID)
	return uc.state.Issues(func(i *domain.Issue) bool {
		return uc.canSee(user, i)
	})
}

func (uc *IssueUsecase) Edit(ctx context.Context, userID, id string, patch IssuePatch) (domain.Issue, error) {
	ctx, span := tracer.Start(ctx, "Issue.Usecase.Edit")
	defer span.End()

	user, _, err := uc.privileged(ctx, userID, id, domain.ActionIssueEdit)
	if err != nil {
		return domain.Issue{}, err
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return domain.Issue{}, domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return domain.Issue{}, domain.ValidationError{Field: "description", Reason: "must not be empty"}
	}

	updated, err := uc.state.MutateIssue(id, func(i *domain.Issue) error {
		if patch.Title != nil {
			i.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			i.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Category != nil {
			i.Category = *patch.Category
			if i.Category == domain.CategorySecurity {
				i.IsAnonymous = true
			}
		}
		if patch.Status != nil {
			i.Status = *patch.Status
		}
		if patch.Location != nil {
			i.Location = *patch.Location
		}
		i.UpdatedAt = uc.now()
		return nil
	})
	if err != nil {
		return domain.Issue{}, err
	}

	uc.persist.Update(ctx, updated)
	uc.publish(ctx, schemas.IssueUpdated, id, user.ID)
	return updated, nil
}

// Advance moves the issue one step forward in its lifecycle.
func (uc *IssueUsecase) Advance(ctx context.Context, userID, id string) (domain.Issue, error) {
	ctx, span := tracer.Start(ctx, "Issue.Usecase.Advance")
	defer span.End()

	user, _, err := uc.privileged(ctx, userID, id, domain.ActionIssueEdit)
	if err != nil {
		return domain.Issue{}, err
	}

	updated, err := uc.state.MutateIssue(id, func(i *domain.Issue) error {
		next, ok := i.Status.Next()
		if !ok {
			return domain.ValidationError{Field: "status", Reason: "issue is already resolved"}
		}
		i.Status = next
		i.UpdatedAt = uc.now()
		return nil
	})
	if err != nil {
		return domain.Issue{}, err
	}

	uc.persist.Update(ctx, updated)
	uc.publish(ctx, schemas.IssueUpdated, id, user.ID)
	return updated, nil
}

// Delete removes the issue locally at once; the remote delete follows.
func (uc *IssueUsecase) Delete(ctx context.Context, userID, id string) error {
	ctx, span := tracer.Start(ctx, "Issue.Usecase.Delete")
	defer span.End()

	user, _, err := uc.privileged(ctx, userID, id, domain.ActionIssueDelete)
	if err != nil {
		return err
	}

	if _, ok := uc.state.RemoveIssue(id); !ok {
		return domain.NotFoundError{Resource: "issue"}
	}
	uc.persist.Delete(ctx, id)
	uc.publish(ctx, schemas.IssueDeleted, id, user.ID)
	return nil
}

// Load fills the state from the last snapshot, then from the gateway when
// it answers.
func (uc *IssueUsecase) Load(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Issue.Usecase.Load")
	defer span.End()

	restored, err := uc.persist.Restore(ctx)
	if err != nil {
		span.RecordError(err)
		zap.S().Warnw("snapshot unavailable", "error", err)
	}

	issues, err := uc.persist.List(ctx)
	if err != nil {
		span.RecordError(err)
		if restored {
			zap.S().Warnw("gateway list failed, serving snapshot", "error", err)
			return nil
		}
		return err
	}
	if len(issues) == 0 && restored {
		zap.S().Infow("gateway is empty, serving snapshot")
		return nil
	}
	uc.state.ReplaceIssues(issues)
	zap.S().Infow("issues loaded", "count", len(issues), "snapshot", restored)
	return nil
}

func (uc *IssueUsecase) viewer(ctx context.Context, userID string) *domain.User {
	if userID == "" {
		return nil
	}
	user, err := uc.users.Get(ctx, userID)
	if err != nil {
		return nil
	}
	return &user
}

func (uc *IssueUsecase) canSee(user *domain.User, issue *domain.Issue) bool {
	if issue.PubliclyVisible() {
		return true
	}
	if user == nil {
		return false
	}
	if issue.AuthorID == user.ID {
		return true
	}
	return uc.auth.CanPerform(user, domain.ActionIssueViewRestricted, issue)
}

// visible resolves the acting user and an issue they can see.
func (uc *IssueUsecase) visible(ctx context.Context, userID, id string) (domain.User, domain.Issue, error) {
	user, err := uc.users.Get(ctx, userID)
	if err != nil {
		return domain.User{}, domain.Issue{}, err
	}
	issue, ok := uc.state.Issue(id)
	if !ok || !uc.canSee(&user, &issue) {
		return domain.User{}, domain.Issue{}, domain.NotFoundError{Resource: "issue"}
	}
	return user, issue, nil
}

// privileged resolves the acting user and issue and checks action against both.
func (uc *IssueUsecase) privileged(ctx context.Context, userID, id string, action domain.Action) (domain.User, domain.Issue, error) {
	user, err := uc.users.Get(ctx, userID)
	if err != nil {
		return domain.User{}, domain.Issue{}, err
	}
	issue, ok := uc.state.Issue(id)
	if !ok {
		return domain.User{}, domain.Issue{}, domain.NotFoundError{Resource: "issue"}
	}
	if !uc.auth.CanPerform(&user, action, &issue) {
		zap.S().Infow("permission denied", "user", user.ID, "action", action, "issue", id)
		return domain.User{}, domain.Issue{}, domain.ErrPermissionDenied
	}
	return user, issue, nil
}

func (uc *IssueUsecase) publish(ctx context.Context, kind, id, actor string) {
	if uc.events == nil {
		return
	}
	err := uc.events.Publish(ctx, kind, engaja.Event{
		Type:      kind,
		ID:        id,
		Actor:     actor,
		Timestamp: uc.now(),
	})
	if err != nil {
		zap.S().Warnw("event publish failed", "type", kind, "issue", id, "error", err)
	}
}

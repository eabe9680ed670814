package usecase

import (
	"context"

	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
)

// IssueRepository is the Persistence Gateway. Implementations may be a hosted
// store or an ephemeral local fallback.
type IssueRepository interface {
	List(ctx context.Context) ([]domain.Issue, error)
	Create(ctx context.Context, issue domain.Issue) error
	Update(ctx context.Context, issue domain.Issue) error
	Delete(ctx context.Context, id string) error
}

// Classifier suggests category, severity and title for a description.
type Classifier interface {
	Classify(ctx context.Context, description string) (domain.Classification, error)
}

// Uploader stores an attachment remotely and returns its hosted URL.
type Uploader interface {
	Upload(ctx context.Context, issueID string, attachment domain.Attachment) (string, error)
}

// SnapshotStore keeps versioned snapshots keyed by logical name. Load reports
// false when nothing usable is stored, including on version mismatch.
type SnapshotStore interface {
	Save(ctx context.Context, name string, version int, payload any) error
	Load(ctx context.Context, name string, version int, dest any) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, channel string, event engaja.Event) error
}

type Authorizer interface {
	CanPerform(user *domain.User, action domain.Action, issue *domain.Issue) bool
}

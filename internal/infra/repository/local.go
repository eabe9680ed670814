package repository

import (
	"context"
	"slices"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/totegamma/engaja/internal/domain"
)

// LocalIssueRepository keeps issues in process memory. It backs the
// "local" persistence mode and tests.
type LocalIssueRepository struct {
	cache *cache.Cache
}

func NewLocalIssueRepository() *LocalIssueRepository {
	return &LocalIssueRepository{cache: cache.New(cache.NoExpiration, 0)}
}

func (r *LocalIssueRepository) List(ctx context.Context) ([]domain.Issue, error) {
	items := r.cache.Items()
	issues := make([]domain.Issue, 0, len(items))
	for _, item := range items {
		issue, ok := item.Object.(domain.Issue)
		if !ok {
			continue
		}
		issues = append(issues, issue.Clone())
	}
	slices.SortStableFunc(issues, func(a, b domain.Issue) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return issues, nil
}

func (r *LocalIssueRepository) Create(ctx context.Context, issue domain.Issue) error {
	err := r.cache.Add(issue.ID, issue.Clone(), cache.NoExpiration)
	if err != nil {
		return domain.ValidationError{Field: "id", Reason: "issue already exists"}
	}
	return nil
}

func (r *LocalIssueRepository) Update(ctx context.Context, issue domain.Issue) error {
	r.cache.Set(issue.ID, issue.Clone(), cache.NoExpiration)
	return nil
}

func (r *LocalIssueRepository) Delete(ctx context.Context, id string) error {
	if _, ok := r.cache.Get(id); !ok {
		return domain.NotFoundError{Resource: "issue"}
	}
	r.cache.Delete(id)
	return nil
}

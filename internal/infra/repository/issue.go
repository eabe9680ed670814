package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/internal/infra/database/models"
)

// IssueRepository is the relational Persistence Gateway.
type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) List(ctx context.Context) ([]domain.Issue, error) {
	ctx, span := tracer.Start(ctx, "Issue.Repository.List")
	defer span.End()

	var rows []models.Issue
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "list issues")
	}

	issues := make([]domain.Issue, 0, len(rows))
	for _, row := range rows {
		issue, err := fromModel(row)
		if err != nil {
			span.RecordError(err)
			return nil, errors.Wrapf(err, "decode issue %s", row.ID)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

func (r *IssueRepository) Create(ctx context.Context, issue domain.Issue) error {
	ctx, span := tracer.Start(ctx, "Issue.Repository.Create")
	defer span.End()

	row, err := toModel(issue)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "create issue")
	}
	return nil
}

// Update writes the whole row; a missing row is inserted.
func (r *IssueRepository) Update(ctx context.Context, issue domain.Issue) error {
	ctx, span := tracer.Start(ctx, "Issue.Repository.Update")
	defer span.End()

	row, err := toModel(issue)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "update issue")
	}
	return nil
}

func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Issue.Repository.Delete")
	defer span.End()

	result := r.db.WithContext(ctx).Delete(&models.Issue{}, "id = ?", id)
	if result.Error != nil {
		span.RecordError(result.Error)
		return errors.Wrap(result.Error, "delete issue")
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "issue"}
	}
	return nil
}

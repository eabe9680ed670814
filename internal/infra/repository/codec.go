package repository

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/internal/infra/database/models"
)

func toModel(issue domain.Issue) (models.Issue, error) {
	issue = issue.Clone()

	columns := map[string]any{
		"location":     issue.Location,
		"attachments":  issue.Attachments,
		"comments":     issue.Comments,
		"supported_by": issue.SupportedBy,
		"flagged_by":   issue.FlaggedBy,
	}
	encoded := make(map[string]string, len(columns))
	for name, value := range columns {
		b, err := json.Marshal(value)
		if err != nil {
			return models.Issue{}, errors.Wrap(err, "marshal "+name)
		}
		encoded[name] = string(b)
	}

	return models.Issue{
		ID:               issue.ID,
		Title:            issue.Title,
		Description:      issue.Description,
		Category:         string(issue.Category),
		Severity:         string(issue.Severity),
		Status:           string(issue.Status),
		ModerationStatus: string(issue.ModerationStatus),
		Location:         encoded["location"],
		AuthorID:         issue.AuthorID,
		AuthorName:       issue.AuthorName,
		AuthorAvatar:     issue.AuthorAvatar,
		IsAnonymous:      issue.IsAnonymous,
		AIAnalysis:       issue.AIAnalysis,
		Attachments:      encoded["attachments"],
		Comments:         encoded["comments"],
		SupportedBy:      encoded["supported_by"],
		FlaggedBy:        encoded["flagged_by"],
		Votes:            issue.Votes,
		CreatedAt:        issue.CreatedAt,
		UpdatedAt:        issue.UpdatedAt,
	}, nil
}

func fromModel(m models.Issue) (domain.Issue, error) {
	issue := domain.Issue{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description,
		Category:         domain.Category(m.Category),
		Severity:         domain.Severity(m.Severity),
		Status:           domain.IssueStatus(m.Status),
		ModerationStatus: domain.ModerationStatus(m.ModerationStatus),
		AuthorID:         m.AuthorID,
		AuthorName:       m.AuthorName,
		AuthorAvatar:     m.AuthorAvatar,
		IsAnonymous:      m.IsAnonymous,
		AIAnalysis:       m.AIAnalysis,
		Votes:            m.Votes,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}

	columns := []struct {
		name string
		raw  string
		dest any
	}{
		{"location", m.Location, &issue.Location},
		{"attachments", m.Attachments, &issue.Attachments},
		{"comments", m.Comments, &issue.Comments},
		{"supported_by", m.SupportedBy, &issue.SupportedBy},
		{"flagged_by", m.FlaggedBy, &issue.FlaggedBy},
	}
	for _, c := range columns {
		if c.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(c.raw), c.dest); err != nil {
			return domain.Issue{}, errors.Wrap(err, "unmarshal "+c.name)
		}
	}

	if issue.ModerationStatus == "" {
		issue.ModerationStatus = domain.ModerationApproved
	}
	return issue.Clone(), nil
}

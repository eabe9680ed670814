package usecase

import (
	"context"
	"encoding/csv"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/internal/utils"
)

type DashboardStats struct {
	Total        int                     `json:"total"`
	Resolved     int                     `json:"resolved"`
	InProgress   int                     `json:"inProgress"`
	Registered   int                     `json:"registered"`
	UnderReview  int                     `json:"underReview"`
	ByCategory   utils.OrderedKVMap[int] `json:"byCategory"`
	ByStatus     utils.OrderedKVMap[int] `json:"byStatus"`
	ByModeration utils.OrderedKVMap[int] `json:"byModeration"`
	TopSupported []DashboardIssueSummary `json:"topSupported"`
}

type DashboardIssueSummary struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Category domain.Category `json:"category"`
	Votes    int             `json:"votes"`
}

var csvHeader = []string{"ID", "Data", "Título", "Categoria", "Status", "Descrição", "Votos", "Autor", "Anexos"}

type DashboardUsecase struct {
	state *State
	auth  Authorizer
	users *UserUsecase
}

func NewDashboardUsecase(state *State, auth Authorizer, users *UserUsecase) *DashboardUsecase {
	return &DashboardUsecase{
		state: state,
		auth:  auth,
		users: users,
	}
}

func (uc *DashboardUsecase) Stats(ctx context.Context, userID string) (DashboardStats, error) {
	ctx, span := tracer.Start(ctx, "Dashboard.Usecase.Stats")
	defer span.End()

	if err := uc.gate(ctx, userID); err != nil {
		return DashboardStats{}, err
	}

	stats := DashboardStats{
		ByCategory:   utils.OrderedKVMap[int]{},
		ByStatus:     utils.OrderedKVMap[int]{},
		ByModeration: utils.OrderedKVMap[int]{},
	}
	for i, c := range domain.Categories {
		stats.ByCategory[string(c)] = utils.OrderedKV[int]{Order: int64(i)}
	}
	for i, s := range domain.Statuses {
		stats.ByStatus[string(s)] = utils.OrderedKV[int]{Order: int64(i)}
	}
	for i, m := range []domain.ModerationStatus{domain.ModerationApproved, domain.ModerationUnderReview, domain.ModerationRejected} {
		stats.ByModeration[string(m)] = utils.OrderedKV[int]{Order: int64(i)}
	}

	issues := uc.state.Issues(nil)
	for _, issue := range issues {
		stats.Total++
		switch issue.Status {
		case domain.StatusResolved:
			stats.Resolved++
		case domain.StatusInAnalysis, domain.StatusInExecution:
			stats.InProgress++
		case domain.StatusRegistered:
			stats.Registered++
		}
		if issue.ModerationStatus == domain.ModerationUnderReview {
			stats.UnderReview++
		}
		utils.Incr(stats.ByCategory, string(issue.Category))
		utils.Incr(stats.ByStatus, string(issue.Status))
		utils.Incr(stats.ByModeration, string(issue.ModerationStatus))
	}

	stats.TopSupported = topSupported(issues, 5)
	return stats, nil
}

// ExportCSV writes every issue as a CSV row. Anonymous authors are not exported.
func (uc *DashboardUsecase) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	ctx, span := tracer.Start(ctx, "Dashboard.Usecase.ExportCSV")
	defer span.End()

	if err := uc.gate(ctx, userID); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return errors.Wrap(err, "csv header")
	}
	for _, issue := range uc.state.Issues(nil) {
		author := issue.AuthorName
		if issue.IsAnonymous {
			author = "anonymous"
		}
		urls := make([]string, 0, len(issue.Attachments))
		for _, a := range issue.Attachments {
			if a.Local {
				urls = append(urls, "local:"+a.ID)
				continue
			}
			urls = append(urls, a.URL)
		}
		row := []string{
			issue.ID,
			issue.CreatedAt.Format(time.DateOnly),
			issue.Title,
			string(issue.Category),
			string(issue.Status),
			strings.ReplaceAll(issue.Description, "\n", " "),
			strconv.Itoa(issue.EffectiveVotes()),
			author,
			strings.Join(urls, " "),
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "csv row")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "csv flush")
}

func (uc *DashboardUsecase) gate(ctx context.Context, userID string) error {
	user, err := uc.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !uc.auth.CanPerform(&user, domain.ActionDashboardView, nil) {
		return domain.ErrPermissionDenied
	}
	return nil
}

func topSupported(issues []domain.Issue, n int) []DashboardIssueSummary {
	summaries := make([]DashboardIssueSummary, 0, len(issues))
	for _, issue := range issues {
		summaries = append(summaries, DashboardIssueSummary{
			ID:       issue.ID,
			Title:    issue.Title,
			Category: issue.Category,
			Votes:    issue.EffectiveVotes(),
		})
	}
	// stable so ties stay newest first
	slices.SortStableFunc(summaries, func(a, b DashboardIssueSummary) int {
		return b.Votes - a.Votes
	})
	if len(summaries) > n {
		summaries = summaries[:n]
	}
	return summaries
}

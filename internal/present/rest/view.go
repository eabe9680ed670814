package rest

import (
	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
)

const anonymousName = "Anônimo"

func locationFromWire(l engaja.Location) domain.Location {
	return domain.Location{Label: l.Label, Lat: l.Lat, Lng: l.Lng}
}

func (h *Handler) issueViews(issues []domain.Issue, viewerID string) []engaja.IssueView {
	views := make([]engaja.IssueView, 0, len(issues))
	for i := range issues {
		views = append(views, h.issueView(issues[i], viewerID))
	}
	return views
}

// issueView renders an issue for viewerID. Anonymous reports never carry
// author identity, including on the author's own comments.
func (h *Handler) issueView(issue domain.Issue, viewerID string) engaja.IssueView {
	lat, lng := domain.PinCoordinates(&issue, h.mapConfig.CenterLat, h.mapConfig.CenterLng, h.mapConfig.PinSpread)

	view := engaja.IssueView{
		ID:                issue.ID,
		Title:             issue.Title,
		Description:       issue.Description,
		Category:          string(issue.Category),
		Severity:          string(issue.Severity),
		Status:            string(issue.Status),
		ModerationStatus:  string(issue.ModerationStatus),
		Location:          engaja.Location{Label: issue.Location.Label, Lat: issue.Location.Lat, Lng: issue.Location.Lng},
		Pin:               [2]float64{lat, lng},
		IsAnonymous:       issue.IsAnonymous,
		IdentityProtected: issue.IsAnonymous,
		AIAnalysis:        issue.AIAnalysis,
		Attachments:       make([]engaja.Attachment, 0, len(issue.Attachments)),
		Comments:          make([]engaja.Comment, 0, len(issue.Comments)),
		Votes:             issue.EffectiveVotes(),
		Supporters:        len(issue.SupportedBy),
		SupportedByMe:     viewerID != "" && issue.SupportedBy.Has(viewerID),
		FlaggedByMe:       viewerID != "" && issue.FlaggedBy.Has(viewerID),
		Flags:             len(issue.FlaggedBy),
		CreatedAt:         issue.CreatedAt,
	}
	if !issue.IsAnonymous {
		view.AuthorID = issue.AuthorID
		view.AuthorName = issue.AuthorName
		view.AuthorAvatar = issue.AuthorAvatar
	}

	for _, a := range issue.Attachments {
		view.Attachments = append(view.Attachments, engaja.Attachment{
			ID:   a.ID,
			Type: string(a.Type),
			URL:  a.URL,
			Name: a.Name,
		})
	}
	for _, cm := range issue.Comments {
		view.Comments = append(view.Comments, commentView(issue, cm))
	}
	if official := issue.OfficialResponse(); official != nil {
		cv := commentView(issue, *official)
		view.OfficialResponse = &cv
	}
	return view
}

func commentView(issue domain.Issue, cm domain.Comment) engaja.Comment {
	view := engaja.Comment{
		ID:         cm.ID,
		UserID:     cm.UserID,
		UserName:   cm.UserName,
		UserAvatar: cm.UserAvatar,
		Text:       cm.Text,
		AudioURL:   cm.AudioURL,
		IsOfficial: cm.IsOfficial,
		CreatedAt:  cm.CreatedAt,
	}
	if issue.IsAnonymous && !cm.IsOfficial && cm.UserID == issue.AuthorID {
		view.UserID = ""
		view.UserName = anonymousName
		view.UserAvatar = ""
	}
	return view
}

func userView(user domain.User) engaja.UserView {
	activity := make([]engaja.Activity, 0, len(user.RecentActivity))
	for _, a := range user.RecentActivity {
		activity = append(activity, engaja.Activity{
			ID:           a.ID,
			Type:         string(a.Type),
			Title:        a.Title,
			Date:         a.Date,
			PointsEarned: a.PointsEarned,
		})
	}
	badges := user.Badges
	if badges == nil {
		badges = []string{}
	}
	return engaja.UserView{
		ID:             user.ID,
		Name:           user.Name,
		Avatar:         user.Avatar,
		Role:           string(user.Role),
		Points:         user.Points,
		Level:          user.Level,
		Badges:         badges,
		RecentActivity: activity,
	}
}

func pollView(poll domain.Poll, viewerID string) engaja.PollView {
	options := make([]engaja.PollOption, 0, len(poll.Options))
	for _, o := range poll.Options {
		options = append(options, engaja.PollOption{ID: o.ID, Text: o.Text, Votes: o.Votes})
	}
	vote, voted := poll.Voters[viewerID]
	return engaja.PollView{
		ID:           poll.ID,
		Question:     poll.Question,
		Options:      options,
		TotalVotes:   poll.TotalVotes,
		Active:       poll.Active,
		Points:       poll.Points,
		UserHasVoted: voted,
		UserVote:     vote,
	}
}

func billView(bill domain.Bill, viewerID string) engaja.BillView {
	return engaja.BillView{
		ID:           bill.ID,
		Code:         bill.Code,
		Title:        bill.Title,
		Description:  bill.Description,
		Author:       bill.Author,
		Status:       string(bill.Status),
		VotesFavor:   bill.VotesFavor,
		VotesAgainst: bill.VotesAgainst,
		UserVote:     string(bill.Voters[viewerID]),
	}
}

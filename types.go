package engaja

import (
	"time"
)

// Event is the realtime envelope fanned out to websocket listeners.
type Event struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Actor     string    `json:"actor,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Location struct {
	Label string   `json:"label"`
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
}

type Attachment struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

type Comment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	Text       string    `json:"text"`
	AudioURL   string    `json:"audioUrl,omitempty"`
	IsOfficial bool      `json:"isOfficial"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IssueView is the rendered issue. Author fields are empty for anonymous reports.
type IssueView struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Category          string       `json:"category"`
	Severity          string       `json:"severity"`
	Status            string       `json:"status"`
	ModerationStatus  string       `json:"moderationStatus"`
	Location          Location     `json:"location"`
	Pin               [2]float64   `json:"pin"`
	AuthorID          string       `json:"authorId,omitempty"`
	AuthorName        string       `json:"authorName,omitempty"`
	AuthorAvatar      string       `json:"authorAvatar,omitempty"`
	IsAnonymous       bool         `json:"isAnonymous"`
	IdentityProtected bool         `json:"identityProtected"`
	AIAnalysis        string       `json:"aiAnalysis,omitempty"`
	Attachments       []Attachment `json:"attachments"`
	Comments          []Comment    `json:"comments"`
	OfficialResponse  *Comment     `json:"officialResponse,omitempty"`
	Votes             int          `json:"votes"`
	Supporters        int          `json:"supporters"`
	SupportedByMe     bool         `json:"supportedByMe"`
	FlaggedByMe       bool         `json:"flaggedByMe"`
	Flags             int          `json:"flags"`
	CreatedAt         time.Time    `json:"createdAt"`
}

type Classification struct {
	Category             string `json:"category"`
	Severity             string `json:"severity"`
	Summary              string `json:"summary"`
	ConstructiveFeedback string `json:"constructiveFeedback"`
	SafetyFlag           bool   `json:"safetyFlag"`
	Fallback             bool   `json:"fallback"`
}

type AttachmentInput struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	// Data is a data: URL or an already hosted URL.
	Data string `json:"data"`
}

type CreateIssueRequest struct {
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Category          string            `json:"category"`
	IsAnonymous       bool              `json:"isAnonymous"`
	LiabilityAccepted bool              `json:"liabilityAccepted"`
	Location          Location          `json:"location"`
	Attachments       []AttachmentInput `json:"attachments"`
	SkipUploads       bool              `json:"skipUploads"`
}

type UpdateIssueRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Location    *Location `json:"location,omitempty"`
}

type CommentRequest struct {
	Text     string `json:"text"`
	AudioURL string `json:"audioUrl,omitempty"`
}

type FlagRequest struct {
	Reason string `json:"reason"`
}

type ReviewRequest struct {
	Decision string `json:"decision"`
}

type ClassifyRequest struct {
	Description string `json:"description"`
}

type SessionRequest struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

type SessionResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type Activity struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	PointsEarned int       `json:"pointsEarned"`
}

type UserView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Avatar         string     `json:"avatar,omitempty"`
	Role           string     `json:"role"`
	Points         int        `json:"points"`
	Level          int        `json:"level"`
	Badges         []string   `json:"badges"`
	RecentActivity []Activity `json:"recentActivity"`
}

type PollOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type PollView struct {
	ID           string       `json:"id"`
	Question     string       `json:"question"`
	Options      []PollOption `json:"options"`
	TotalVotes   int          `json:"totalVotes"`
	Active       bool         `json:"active"`
	Points       int          `json:"points"`
	UserHasVoted bool         `json:"userHasVoted"`
	UserVote     string       `json:"userVote,omitempty"`
}

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Points   int      `json:"points"`
}

type PollVoteRequest struct {
	OptionID string `json:"optionId"`
}

type BillView struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	Status       string `json:"status"`
	VotesFavor   int    `json:"votesFavor"`
	VotesAgainst int    `json:"votesAgainst"`
	UserVote     string `json:"userVote,omitempty"`
}

type CreateBillRequest struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
}

type BillStatusRequest struct {
	Status string `json:"status"`
}

type BillVoteRequest struct {
	Choice string `json:"choice"`
}

type VoteResult[T any] struct {
	Voted  bool `json:"voted"`
	Entity T    `json:"entity"`
}

type SupportResult struct {
	Supported bool      `json:"supported"`
	Issue     IssueView `json:"issue"`
}

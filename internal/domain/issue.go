package domain

import (
	"slices"
	"strings"
	"time"
)

type Category string

const (
	CategoryInfrastructure   Category = "Infraestrutura"
	CategoryHealth           Category = "Saúde"
	CategoryEducation        Category = "Educação"
	CategoryEnvironment      Category = "Meio Ambiente"
	CategorySecurity         Category = "Segurança"
	CategoryMobility         Category = "Mobilidade"
	CategoryCulture          Category = "Cultura"
	CategorySocialAssistance Category = "Assistência Social"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryInfrastructure,
	CategoryHealth,
	CategoryEducation,
	CategoryEnvironment,
	CategorySecurity,
	CategoryMobility,
	CategoryCulture,
	CategorySocialAssistance,
}

var categoryAliases = map[string]Category{
	"infrastructure":    CategoryInfrastructure,
	"health":            CategoryHealth,
	"education":         CategoryEducation,
	"environment":       CategoryEnvironment,
	"security":          CategorySecurity,
	"mobility":          CategoryMobility,
	"culture":           CategoryCulture,
	"social assistance": CategorySocialAssistance,
	"social_assistance": CategorySocialAssistance,

	"infraestrutura":     CategoryInfrastructure,
	"saude":              CategoryHealth,
	"educacao":           CategoryEducation,
	"meio_ambiente":      CategoryEnvironment,
	"seguranca":          CategorySecurity,
	"mobilidade":         CategoryMobility,
	"cultura":            CategoryCulture,
	"assistencia_social": CategorySocialAssistance,
}

// ParseCategory accepts the display value, the enum key (SEGURANCA) or the
// english name, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	c, ok := categoryAliases[strings.ToLower(s)]
	return c, ok
}

type IssueStatus string

const (
	StatusRegistered  IssueStatus = "Registrada"
	StatusInAnalysis  IssueStatus = "Em Análise"
	StatusInExecution IssueStatus = "Em Execução"
	StatusResolved    IssueStatus = "Resolvida"
)

var Statuses = []IssueStatus{StatusRegistered, StatusInAnalysis, StatusInExecution, StatusResolved}

var statusAliases = map[string]IssueStatus{
	"registered":   StatusRegistered,
	"in_analysis":  StatusInAnalysis,
	"in_execution": StatusInExecution,
	"resolved":     StatusResolved,
}

func ParseStatus(s string) (IssueStatus, bool) {
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	st, ok := statusAliases[strings.ToLower(s)]
	return st, ok
}

// Next returns the forward step of the lifecycle. Resolved has no successor.
func (s IssueStatus) Next() (IssueStatus, bool) {
	i := slices.Index(Statuses, s)
	if i < 0 || i == len(Statuses)-1 {
		return s, false
	}
	return Statuses[i+1], true
}

type ModerationStatus string

const (
	ModerationApproved    ModerationStatus = "APPROVED"
	ModerationUnderReview ModerationStatus = "UNDER_REVIEW"
	ModerationRejected    ModerationStatus = "REJECTED"
)

func ParseModeration(s string) (ModerationStatus, bool) {
	switch ModerationStatus(strings.ToUpper(s)) {
	case ModerationApproved:
		return ModerationApproved, true
	case ModerationUnderReview:
		return ModerationUnderReview, true
	case ModerationRejected:
		return ModerationRejected, true
	}
	return "", false
}

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityHigh:
		return SeverityHigh, true
	case SeverityCritical:
		return SeverityCritical, true
	}
	return "", false
}

type AttachmentType string

const (
	AttachmentImage AttachmentType = "IMAGE"
	AttachmentVideo AttachmentType = "VIDEO"
	AttachmentAudio AttachmentType = "AUDIO"
)

type Attachment struct {
	ID   string         `json:"id"`
	Type AttachmentType `json:"type"`
	URL  string         `json:"url"`
	Name string         `json:"name,omitempty"`
	// Local is set when the URL is still the unsynced data: representation.
	Local bool `json:"local,omitempty"`
}

type Location struct {
	Label string   `json:"label"`
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
}

type Comment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	Text       string    `json:"text"`
	AudioURL   string    `json:"audioUrl,omitempty"`
	IsOfficial bool      `json:"isOfficial"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserSet is an insertion-ordered set of user ids.
type UserSet []string

func (s UserSet) Has(id string) bool {
	return slices.Contains(s, id)
}

func (s *UserSet) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

func (s *UserSet) Remove(id string) bool {
	i := slices.Index(*s, id)
	if i < 0 {
		return false
	}
	*s = slices.Delete(*s, i, i+1)
	return true
}

type Issue struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Category         Category         `json:"category"`
	Severity         Severity         `json:"severity"`
	Status           IssueStatus      `json:"status"`
	ModerationStatus ModerationStatus `json:"moderationStatus"`
	Location         Location         `json:"location"`
	AuthorID         string           `json:"authorId"`
	AuthorName       string           `json:"authorName"`
	AuthorAvatar     string           `json:"authorAvatar,omitempty"`
	IsAnonymous      bool             `json:"isAnonymous"`
	AIAnalysis       string           `json:"aiAnalysis,omitempty"`
	Attachments      []Attachment     `json:"attachments"`
	Comments         []Comment        `json:"comments"`
	SupportedBy      UserSet          `json:"supportedBy"`
	FlaggedBy        UserSet          `json:"flaggedBy"`
	Votes            int              `json:"votes"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// EffectiveVotes is the displayed vote count.
func (i *Issue) EffectiveVotes() int {
	return i.Votes + len(i.SupportedBy)
}

// OfficialResponse returns the first official comment, if any.
func (i *Issue) OfficialResponse() *Comment {
	for k := range i.Comments {
		if i.Comments[k].IsOfficial {
			c := i.Comments[k]
			return &c
		}
	}
	return nil
}

func (i *Issue) HasOfficialResponse() bool {
	return i.OfficialResponse() != nil
}

// AppendComment attaches a comment. An official comment moves a Registered
// issue to InAnalysis; it reports whether the status changed.
func (i *Issue) AppendComment(c Comment) bool {
	i.Comments = append(i.Comments, c)
	if c.IsOfficial && i.Status == StatusRegistered {
		i.Status = StatusInAnalysis
		return true
	}
	return false
}

// ToggleSupport flips membership of user in SupportedBy and reports the new membership.
func (i *Issue) ToggleSupport(user string) bool {
	if i.SupportedBy.Remove(user) {
		return false
	}
	i.SupportedBy.Add(user)
	return true
}

// Flag records user as a flagger once. Reaching FlagThreshold moves an
// approved issue to UnderReview. A repeat flag changes nothing.
func (i *Issue) Flag(user string) bool {
	added := i.FlaggedBy.Add(user)
	if added && len(i.FlaggedBy) >= FlagThreshold && i.ModerationStatus == ModerationApproved {
		i.ModerationStatus = ModerationUnderReview
	}
	return added
}

// PubliclyVisible reports whether the issue may appear in citizen-facing aggregates.
func (i *Issue) PubliclyVisible() bool {
	return i.ModerationStatus == ModerationApproved
}

func (i Issue) Clone() Issue {
	c := i
	c.Attachments = slices.Clone(i.Attachments)
	c.Comments = slices.Clone(i.Comments)
	c.SupportedBy = slices.Clone(i.SupportedBy)
	c.FlaggedBy = slices.Clone(i.FlaggedBy)
	if i.Location.Lat != nil {
		lat := *i.Location.Lat
		c.Location.Lat = &lat
	}
	if i.Location.Lng != nil {
		lng := *i.Location.Lng
		c.Location.Lng = &lng
	}
	if c.Attachments == nil {
		c.Attachments = []Attachment{}
	}
	if c.Comments == nil {
		c.Comments = []Comment{}
	}
	if c.SupportedBy == nil {
		c.SupportedBy = UserSet{}
	}
	if c.FlaggedBy == nil {
		c.FlaggedBy = UserSet{}
	}
	return c
}

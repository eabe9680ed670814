package domain

import (
	"maps"
	"slices"
	"strings"
	"time"
)

type PollOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Poll struct {
	ID         string       `json:"id"`
	Question   string       `json:"question"`
	Options    []PollOption `json:"options"`
	TotalVotes int          `json:"totalVotes"`
	Active     bool         `json:"active"`
	Points     int          `json:"points"`
	// Voters maps user id to the chosen option id.
	Voters    map[string]string `json:"voters"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Vote records a first vote by user. A repeat vote reports false and changes nothing.
func (p *Poll) Vote(user, optionID string) (bool, error) {
	if _, ok := p.Voters[user]; ok {
		return false, nil
	}
	if !p.Active {
		return false, ValidationError{Field: "poll", Reason: "poll is closed"}
	}
	idx := slices.IndexFunc(p.Options, func(o PollOption) bool { return o.ID == optionID })
	if idx < 0 {
		return false, ValidationError{Field: "optionId", Reason: "unknown option"}
	}

	p.Options[idx].Votes++
	p.TotalVotes++
	if p.Voters == nil {
		p.Voters = map[string]string{}
	}
	p.Voters[user] = optionID
	return true, nil
}

func (p Poll) Clone() Poll {
	c := p
	c.Options = slices.Clone(p.Options)
	c.Voters = maps.Clone(p.Voters)
	if c.Voters == nil {
		c.Voters = map[string]string{}
	}
	return c
}

type BillStatus string

const (
	BillInVoting         BillStatus = "EM_VOTACAO"
	BillAwaitingSanction BillStatus = "AGUARDANDO_SANCAO"
	BillApproved         BillStatus = "APROVADO"
	BillVetoed           BillStatus = "VETADO"
)

func ParseBillStatus(s string) (BillStatus, bool) {
	switch BillStatus(strings.ToUpper(s)) {
	case BillInVoting:
		return BillInVoting, true
	case BillAwaitingSanction:
		return BillAwaitingSanction, true
	case BillApproved:
		return BillApproved, true
	case BillVetoed:
		return BillVetoed, true
	}
	return "", false
}

type BillChoice string

const (
	ChoiceFavor   BillChoice = "FAVOR"
	ChoiceAgainst BillChoice = "AGAINST"
)

type Bill struct {
	ID           string                `json:"id"`
	Code         string                `json:"code"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Author       string                `json:"author"`
	Status       BillStatus            `json:"status"`
	VotesFavor   int                   `json:"votesFavor"`
	VotesAgainst int                   `json:"votesAgainst"`
	Voters       map[string]BillChoice `json:"voters"`
	CreatedAt    time.Time             `json:"createdAt"`
}

// Vote records a first vote by user while the bill is open for voting.
func (b *Bill) Vote(user string, choice BillChoice) (bool, error) {
	if _, ok := b.Voters[user]; ok {
		return false, nil
	}
	if b.Status != BillInVoting {
		return false, ValidationError{Field: "bill", Reason: "bill is not in voting"}
	}

	switch choice {
	case ChoiceFavor:
		b.VotesFavor++
	case ChoiceAgainst:
		b.VotesAgainst++
	default:
		return false, ValidationError{Field: "choice", Reason: "must be FAVOR or AGAINST"}
	}
	if b.Voters == nil {
		b.Voters = map[string]BillChoice{}
	}
	b.Voters[user] = choice
	return true, nil
}

func (b Bill) Clone() Bill {
	c := b
	c.Voters = maps.Clone(b.Voters)
	if c.Voters == nil {
		c.Voters = map[string]BillChoice{}
	}
	return c
}

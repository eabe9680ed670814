package domain

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackClassification(t *testing.T) {
	c := FallbackClassification("buraco grande na rua")
	assert.Equal(t, CategoryInfrastructure, c.Category)
	assert.Equal(t, SeverityMedium, c.Severity)
	assert.Equal(t, "buraco grande na rua", c.Summary)
	assert.Equal(t, FallbackFeedback, c.Feedback)
	assert.True(t, c.Fallback)
	assert.False(t, c.Sensitive())

	long := FallbackClassification("poste de iluminação apagado há três semanas na esquina")
	assert.Equal(t, "poste de iluminação apagado há...", long.Summary)
}

func TestSensitive(t *testing.T) {
	assert.True(t, Classification{Category: CategorySecurity}.Sensitive())
	assert.True(t, Classification{Category: CategoryHealth, SafetyFlag: true}.Sensitive())
	assert.False(t, Classification{Category: CategoryHealth}.Sensitive())
}

func TestPinCoordinates(t *testing.T) {
	issue := &Issue{ID: "ABC123XYZ"}
	lat, lng := PinCoordinates(issue, -23.5505, -46.6333, 0.03)
	lat2, lng2 := PinCoordinates(issue, -23.5505, -46.6333, 0.03)
	assert.Equal(t, lat, lat2)
	assert.Equal(t, lng, lng2)
	assert.InDelta(t, -23.5505, lat, 0.015)
	assert.InDelta(t, -46.6333, lng, 0.015)

	other := &Issue{ID: "ZZZ999AAA"}
	olat, olng := PinCoordinates(other, -23.5505, -46.6333, 0.03)
	assert.False(t, olat == lat && olng == lng)

	stored, storedLng := 1.0, 2.0
	issue.Location.Lat = &stored
	issue.Location.Lng = &storedLng
	lat, lng = PinCoordinates(issue, -23.5505, -46.6333, 0.03)
	assert.Equal(t, 1.0, lat)
	assert.Equal(t, 2.0, lng)
}

func TestUserAward(t *testing.T) {
	n := 0
	newID := func() string { n++; return "a" + strconv.Itoa(n) }
	now := time.Now()

	u := User{ID: "u1", Points: 100, Level: 1}
	levels := u.Award(Activity{ID: "x", Type: ActivityIssueCreated, PointsEarned: 50, Date: now}, newID)
	assert.Equal(t, 0, levels)
	assert.Equal(t, 150, u.Points)
	require.Len(t, u.RecentActivity, 1)
	assert.Equal(t, ActivityIssueCreated, u.RecentActivity[0].Type)

	u.Points = 480
	levels = u.Award(Activity{ID: "y", Type: ActivityPollVoted, PointsEarned: 20, Date: now}, newID)
	assert.Equal(t, 1, levels)
	assert.Equal(t, 2, u.Level)
	require.Len(t, u.RecentActivity, 3)
	assert.Equal(t, ActivityLevelUp, u.RecentActivity[0].Type)
	assert.Equal(t, ActivityPollVoted, u.RecentActivity[1].Type)
}

func TestPollVoteOncePerUser(t *testing.T) {
	p := Poll{ID: "p1", Active: true, Options: []PollOption{{ID: "x"}, {ID: "y"}}}

	voted, err := p.Vote("a", "x")
	require.NoError(t, err)
	assert.True(t, voted)

	voted, err = p.Vote("a", "x")
	require.NoError(t, err)
	assert.False(t, voted)
	assert.Equal(t, 1, p.Options[0].Votes)
	assert.Equal(t, 1, p.TotalVotes)

	voted, err = p.Vote("b", "y")
	require.NoError(t, err)
	assert.True(t, voted)
	assert.Equal(t, 2, p.TotalVotes)

	_, err = p.Vote("c", "nope")
	assert.True(t, errors.Is(err, ErrValidation))

	p.Active = false
	_, err = p.Vote("d", "x")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestBillVote(t *testing.T) {
	b := Bill{ID: "b1", Status: BillInVoting}

	voted, err := b.Vote("a", ChoiceFavor)
	require.NoError(t, err)
	assert.True(t, voted)
	voted, _ = b.Vote("a", ChoiceAgainst)
	assert.False(t, voted)
	assert.Equal(t, 1, b.VotesFavor)
	assert.Equal(t, 0, b.VotesAgainst)

	_, err = b.Vote("b", "MAYBE")
	assert.True(t, errors.Is(err, ErrValidation))

	b.Status = BillApproved
	_, err = b.Vote("c", ChoiceFavor)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestErrorsIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFoundError{Resource: "issue"})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "issue not found", NotFoundError{Resource: "issue"}.Error())

	verr := fmt.Errorf("wrap: %w", ValidationError{Field: "description", Reason: "required"})
	assert.True(t, errors.Is(verr, ErrValidation))
	assert.False(t, errors.Is(verr, ErrNotFound))
}

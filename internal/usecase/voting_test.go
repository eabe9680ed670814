package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/schemas"
)

func newPoll(t *testing.T, f *fixture) domain.Poll {
	mayor := f.user(t, "Prefeita", domain.RoleExecutive)
	poll, err := f.voting.CreatePoll(context.Background(), mayor.ID, CreatePollInput{
		Question: "Qual deve ser a prioridade do orçamento?",
		Options:  []string{"Saúde", "Educação", " ", "Mobilidade"},
	})
	require.NoError(t, err)
	return poll
}

func TestVotePollOncePerUser(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()
	poll := newPoll(t, f)
	require.Len(t, poll.Options, 3)
	assert.True(t, poll.Active)
	assert.Equal(t, domain.PollVotePoints, poll.Points)

	citizen := f.user(t, "Maria", domain.RoleCitizen)

	voted, ok, err := f.voting.VotePoll(ctx, citizen.ID, poll.ID, poll.Options[1].ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, voted.TotalVotes)
	assert.Equal(t, 1, voted.Options[1].Votes)

	again, ok, err := f.voting.VotePoll(ctx, citizen.ID, poll.ID, poll.Options[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, again.TotalVotes)
	assert.Equal(t, 0, again.Options[0].Votes)

	user, err := f.users.Get(ctx, citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CitizenStartPoints+domain.PollVotePoints, user.Points)
	assert.Contains(t, f.events.Types(), schemas.PollVoted)
}

func TestVotePollValidation(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()
	poll := newPoll(t, f)
	citizen := f.user(t, "Maria", domain.RoleCitizen)
	mayor := f.user(t, "Prefeito", domain.RoleExecutive)

	_, _, err := f.voting.VotePoll(ctx, citizen.ID, poll.ID, "opt-missing")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, _, err = f.voting.VotePoll(ctx, citizen.ID, "poll-missing", poll.Options[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.voting.SetPollActive(ctx, citizen.ID, poll.ID, false)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	closed, err := f.voting.SetPollActive(ctx, mayor.ID, poll.ID, false)
	require.NoError(t, err)
	assert.False(t, closed.Active)

	_, _, err = f.voting.VotePoll(ctx, citizen.ID, poll.ID, poll.Options[0].ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	user, err := f.users.Get(ctx, citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CitizenStartPoints, user.Points)
}

func TestCreatePollRules(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()
	citizen := f.user(t, "Maria", domain.RoleCitizen)
	admin := f.user(t, "Admin", domain.RoleAdmin)

	_, err := f.voting.CreatePoll(ctx, citizen.ID, CreatePollInput{Question: "?", Options: []string{"a", "b"}})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = f.voting.CreatePoll(ctx, admin.ID, CreatePollInput{Question: "Só uma?", Options: []string{"a", "  "}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.voting.CreatePoll(ctx, admin.ID, CreatePollInput{Question: " ", Options: []string{"a", "b"}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	poll, err := f.voting.CreatePoll(ctx, admin.ID, CreatePollInput{Question: "Praça ou parque?", Options: []string{"Praça", "Parque"}, Points: 35})
	require.NoError(t, err)
	assert.Equal(t, 35, poll.Points)
	assert.Len(t, f.voting.Polls(ctx), 1)
}

func TestVoteBillOnlyInVoting(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()
	councilor := f.user(t, "Vereadora", domain.RoleLegislative)
	citizen := f.user(t, "Maria", domain.RoleCitizen)
	neighbor := f.user(t, "João", domain.RoleCitizen)

	_, err := f.voting.CreateBill(ctx, citizen.ID, CreateBillInput{Code: "PL 1/2024", Title: "Teste"})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	bill, err := f.voting.CreateBill(ctx, councilor.ID, CreateBillInput{
		Code:   "PL 42/2024",
		Title:  "Ciclovias nos bairros",
		Author: "Vereadora",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BillInVoting, bill.Status)

	voted, ok, err := f.voting.VoteBill(ctx, citizen.ID, bill.ID, domain.ChoiceFavor)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, voted.VotesFavor)

	_, ok, err = f.voting.VoteBill(ctx, citizen.ID, bill.ID, domain.ChoiceAgainst)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = f.voting.VoteBill(ctx, neighbor.ID, bill.ID, "MAYBE")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.voting.SetBillStatus(ctx, councilor.ID, bill.ID, "ARQUIVADO")
	assert.ErrorIs(t, err, domain.ErrValidation)
	updated, err := f.voting.SetBillStatus(ctx, councilor.ID, bill.ID, domain.BillApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.BillApproved, updated.Status)

	_, _, err = f.voting.VoteBill(ctx, neighbor.ID, bill.ID, domain.ChoiceAgainst)
	assert.ErrorIs(t, err, domain.ErrValidation)

	user, err := f.users.Get(ctx, citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CitizenStartPoints+domain.BillVotePoints, user.Points)
	other, err := f.users.Get(ctx, neighbor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CitizenStartPoints, other.Points)
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()
	now := time.Now()

	polls := []domain.Poll{
		{ID: "p1", Question: "primeira", Options: []domain.PollOption{{ID: "a"}, {ID: "b"}}, Active: true},
		{ID: "p2", Question: "segunda", Options: []domain.PollOption{{ID: "a"}, {ID: "b"}}, Points: 5, CreatedAt: now},
	}
	bills := []domain.Bill{{ID: "b1", Code: "PL 1/2024", Status: domain.BillInVoting}}

	f.voting.Seed(ctx, polls, bills)
	seeded := f.voting.Polls(ctx)
	require.Len(t, seeded, 2)
	assert.Equal(t, "p1", seeded[0].ID)
	assert.Equal(t, domain.PollVotePoints, seeded[0].Points)
	assert.Equal(t, 5, seeded[1].Points)
	assert.Len(t, f.voting.Bills(ctx), 1)

	f.voting.Seed(ctx, []domain.Poll{{ID: "p3"}}, []domain.Bill{{ID: "b2"}})
	assert.Len(t, f.voting.Polls(ctx), 2)
	assert.Len(t, f.voting.Bills(ctx), 1)
}

package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/schemas"
)

type CreatePollInput struct {
	Question string
	Options  []string
	Points   int
}

type CreateBillInput struct {
	Code        string
	Title       string
	Description string
	Author      string
}

// VotingUsecase handles polls and legislative bills. Each keeps one vote per user.
type VotingUsecase struct {
	state   *State
	persist *Persister
	auth    Authorizer
	events  EventPublisher
	users   *UserUsecase
	now     func() time.Time
}

func NewVotingUsecase(
	state *State,
	persist *Persister,
	auth Authorizer,
	events EventPublisher,
	users *UserUsecase,
) *VotingUsecase {
	return &VotingUsecase{
		state:   state,
		persist: persist,
		auth:    auth,
		events:  events,
		users:   users,
		now:     time.Now,
	}
}

func (uc *VotingUsecase) Polls(ctx context.Context) []domain.Poll {
	return uc.state.Polls()
}

func (uc *VotingUsecase) Bills(ctx context.Context) []domain.Bill {
	return uc.state.Bills()
}

func (uc *VotingUsecase) CreatePoll(ctx context.Context, userID string, input CreatePollInput) (domain.Poll, error) {
	ctx, span := tracer.Start(ctx, "Voting.Usecase.CreatePoll")
	defer span.End()

	if err := uc.gate(ctx, userID, domain.ActionPollManage); err != nil {
		return domain.Poll{}, err
	}

	question := strings.TrimSpace(input.Question)
	if question == "" {
		return domain.Poll{}, domain.ValidationError{Field: "question", Reason: "required"}
	}
	options := make([]domain.PollOption, 0, len(input.Options))
	for _, text := range input.Options {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		options = append(options, domain.PollOption{ID: engaja.NewID("opt"), Text: text})
	}
	if len(options) < 2 {
		return domain.Poll{}, domain.ValidationError{Field: "options", Reason: "at least two options are required"}
	}
	points := input.Points
	if points <= 0 {
		points = domain.PollVotePoints
	}

	poll := domain.Poll{
		ID:        engaja.NewID("poll"),
		Question:  question,
		Options:   options,
		Active:    true,
		Points:    points,
		Voters:    map[string]string{},
		CreatedAt: uc.now(),
	}
	uc.state.AddPoll(poll)
	uc.persist.Checkpoint(ctx)
	uc.publish(ctx, schemas.PollCreated, poll.ID)
	return poll, nil
}

func (uc *VotingUsecase) SetPollActive(ctx context.Context, userID, pollID string, active bool) (domain.Poll, error) {
	if err := uc.gate(ctx, userID, domain.ActionPollManage); err != nil {
		return domain.Poll{}, err
	}
	poll, err := uc.state.MutatePoll(pollID, func(p *domain.Poll) error {
		p.Active = active
		return nil
	})
	if err != nil {
		return domain.Poll{}, err
	}
	uc.persist.Checkpoint(ctx)
	return poll, nil
}

// VotePoll casts the user's vote. A repeat vote reports false and changes nothing.
func (uc *VotingUsecase) VotePoll(ctx context.Context, userID, pollID, optionID string) (domain.Poll, bool, error) {
	ctx, span := tracer.Start(ctx, "Voting.Usecase.VotePoll")
	defer span.End()

	if err := uc.gate(ctx, userID, domain.ActionPollVote); err != nil {
		return domain.Poll{}, false, err
	}

	var voted bool
	poll, err := uc.state.MutatePoll(pollID, func(p *domain.Poll) error {
		var err error
		voted, err = p.Vote(userID, optionID)
		return err
	})
	if err != nil {
		return domain.Poll{}, false, err
	}
	if !voted {
		return poll, false, nil
	}

	_, err = uc.users.Award(ctx, userID, domain.ActivityPollVoted, "Votou: "+poll.Question, poll.Points)
	if err != nil {
		zap.S().Warnw("failed to award points", "user", userID, "error", err)
	}
	uc.publish(ctx, schemas.PollVoted, poll.ID)
	return poll, true, nil
}

func (uc *VotingUsecase) CreateBill(ctx context.Context, userID string, input CreateBillInput) (domain.Bill, error) {
	ctx, span := tracer.Start(ctx, "Voting.Usecase.CreateBill")
	defer span.End()

	if err := uc.gate(ctx, userID, domain.ActionBillManage); err != nil {
		return domain.Bill{}, err
	}
	if strings.TrimSpace(input.Code) == "" {
		return domain.Bill{}, domain.ValidationError{Field: "code", Reason: "required"}
	}
	if strings.TrimSpace(input.Title) == "" {
		return domain.Bill{}, domain.ValidationError{Field: "title", Reason: "required"}
	}

	bill := domain.Bill{
		ID:          engaja.NewID("bill"),
		Code:        strings.TrimSpace(input.Code),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Author:      strings.TrimSpace(input.Author),
		Status:      domain.BillInVoting,
		Voters:      map[string]domain.BillChoice{},
		CreatedAt:   uc.now(),
	}
	uc.state.AddBill(bill)
	uc.persist.Checkpoint(ctx)
	uc.publish(ctx, schemas.BillCreated, bill.ID)
	return bill, nil
}

func (uc *VotingUsecase) SetBillStatus(ctx context.Context, userID, billID string, status domain.BillStatus) (domain.Bill, error) {
	ctx, span := tracer.Start(ctx, "Voting.Usecase.SetBillStatus")
	defer span.End()

	if err := uc.gate(ctx, userID, domain.ActionBillManage); err != nil {
		return domain.Bill{}, err
	}
	if _, ok := domain.ParseBillStatus(string(status)); !ok {
		return domain.Bill{}, domain.ValidationError{Field: "status", Reason: "unknown bill status"}
	}

	bill, err := uc.state.MutateBill(billID, func(b *domain.Bill) error {
		b.Status = status
		return nil
	})
	if err != nil {
		return domain.Bill{}, err
	}
	uc.persist.Checkpoint(ctx)
	uc.publish(ctx, schemas.BillUpdated, bill.ID)
	return bill, nil
}

// VoteBill casts a FAVOR or AGAINST vote while the bill is in voting.
func (uc *VotingUsecase) VoteBill(ctx context.Context, userID, billID string, choice domain.BillChoice) (domain.Bill, bool, error) {
	ctx, span := tracer.Start(ctx, "Voting.Usecase.VoteBill")
	defer span.End()

	if err := uc.gate(ctx, userID, domain.ActionBillVote); err != nil {
		return domain.Bill{}, false, err
	}

	var voted bool
	bill, err := uc.state.MutateBill(billID, func(b *domain.Bill) error {
		var err error
		voted, err = b.Vote(userID, choice)
		return err
	})
	if err != nil {
		return domain.Bill{}, false, err
	}
	if !voted {
		return bill, false, nil
	}

	_, err = uc.users.Award(ctx, userID, domain.ActivityBillVoted, "Votou no "+bill.Code, domain.BillVotePoints)
	if err != nil {
		zap.S().Warnw("failed to award points", "user", userID, "error", err)
	}
	uc.publish(ctx, schemas.BillVoted, bill.ID)
	return bill, true, nil
}

// Seed adds polls and bills when the state has none, e.g. on first start.
func (uc *VotingUsecase) Seed(ctx context.Context, polls []domain.Poll, bills []domain.Bill) {
	if len(uc.state.Polls()) == 0 {
		for i := len(polls) - 1; i >= 0; i-- {
			p := polls[i]
			if p.Points <= 0 {
				p.Points = domain.PollVotePoints
			}
			uc.state.AddPoll(p)
		}
	}
	if len(uc.state.Bills()) == 0 {
		for i := len(bills) - 1; i >= 0; i-- {
			uc.state.AddBill(bills[i])
		}
	}
}

func (uc *VotingUsecase) gate(ctx context.Context, userID string, action domain.Action) error {
	user, err := uc.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !uc.auth.CanPerform(&user, action, nil) {
		zap.S().Infow("permission denied", "user", user.ID, "action", action)
		return domain.ErrPermissionDenied
	}
	return nil
}

func (uc *VotingUsecase) publish(ctx context.Context, kind, id string) {
	if uc.events == nil {
		return
	}
	err := uc.events.Publish(ctx, kind, engaja.Event{Type: kind, ID: id, Timestamp: uc.now()})
	if err != nil {
		zap.S().Warnw("event publish failed", "type", kind, "id", id, "error", err)
	}
}

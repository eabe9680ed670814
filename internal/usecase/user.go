package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
)

type UserUsecase struct {
	state   *State
	persist *Persister
	now     func() time.Time
}

func NewUserUsecase(state *State, persist *Persister) *UserUsecase {
	return &UserUsecase{
		state:   state,
		persist: persist,
		now:     time.Now,
	}
}

// Register creates a session user. Citizens start with a points balance.
func (uc *UserUsecase) Register(ctx context.Context, name string, role domain.Role, avatar string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, domain.ValidationError{Field: "name", Reason: "required"}
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return domain.User{}, domain.ValidationError{Field: "role", Reason: "unknown role"}
	}

	user := domain.User{
		ID:             engaja.NewID("u"),
		Name:           name,
		Avatar:         avatar,
		Role:           role,
		Level:          1,
		Badges:         []string{},
		RecentActivity: []domain.Activity{},
		CreatedAt:      uc.now(),
	}
	if role == domain.RoleCitizen {
		user.Points = domain.CitizenStartPoints
	}

	uc.state.PutUser(user)
	uc.persist.Checkpoint(ctx)

	zap.S().Infow("user registered", "user", user.ID, "role", user.Role)
	return user, nil
}

func (uc *UserUsecase) Get(ctx context.Context, id string) (domain.User, error) {
	user, ok := uc.state.User(id)
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return user, nil
}

// Award credits points for an activity and prepends it to the user's log.
func (uc *UserUsecase) Award(ctx context.Context, id string, kind domain.ActivityType, title string, points int) (domain.User, error) {
	activity := domain.Activity{
		ID:           engaja.NewID("a"),
		Type:         kind,
		Title:        title,
		Date:         uc.now(),
		PointsEarned: points,
	}

	var levels int
	user, err := uc.state.MutateUser(id, func(u *domain.User) error {
		levels = u.Award(activity, func() string { return engaja.NewID("a") })
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	if levels > 0 {
		zap.S().Infow("user levelled up", "user", id, "level", user.Level)
	}
	uc.persist.Checkpoint(ctx)
	return user, nil
}

package usecase

import (
	"slices"
	"sync"

	"github.com/totegamma/engaja/internal/domain"
)

// Snapshot is the serialisable form of State.
type Snapshot struct {
	Issues []domain.Issue `json:"issues"`
	Users  []domain.User  `json:"users"`
	Polls  []domain.Poll  `json:"polls"`
	Bills  []domain.Bill  `json:"bills"`
}

// State owns the session's entities. Every write goes through a keyed
// mutator running under the lock, so two intents on the same entity never
// overwrite each other.
type State struct {
	mu     sync.RWMutex
	issues []*domain.Issue // newest first
	index  map[string]*domain.Issue
	users  map[string]*domain.User
	polls  []*domain.Poll
	bills  []*domain.Bill
}

func NewState() *State {
	return &State{
		index: map[string]*domain.Issue{},
		users: map[string]*domain.User{},
	}
}

// PrependIssue puts a new issue at index 0.
func (s *State) PrependIssue(issue domain.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[issue.ID]; ok {
		return domain.ValidationError{Field: "id", Reason: "already exists"}
	}
	stored := issue.Clone()
	s.issues = append([]*domain.Issue{&stored}, s.issues...)
	s.index[issue.ID] = &stored
	return nil
}

func (s *State) Issue(id string) (domain.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.index[id]
	if !ok {
		return domain.Issue{}, false
	}
	return issue.Clone(), true
}

// Issues returns copies of the issues matching keep, newest first. A nil
// keep returns everything.
func (s *State) Issues(keep func(*domain.Issue) bool) []domain.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		if keep != nil && !keep(issue) {
			continue
		}
		result = append(result, issue.Clone())
	}
	return result
}

// MutateIssue applies fn to a working copy and commits it only if fn succeeds.
func (s *State) MutateIssue(id string, fn func(*domain.Issue) error) (domain.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.index[id]
	if !ok {
		return domain.Issue{}, domain.NotFoundError{Resource: "issue"}
	}
	working := current.Clone()
	if err := fn(&working); err != nil {
		return domain.Issue{}, err
	}
	*current = working
	return working.Clone(), nil
}

func (s *State) RemoveIssue(id string) (domain.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.index[id]
	if !ok {
		return domain.Issue{}, false
	}
	delete(s.index, id)
	s.issues = slices.DeleteFunc(s.issues, func(i *domain.Issue) bool { return i.ID == id })
	return current.Clone(), true
}

// ReplaceIssues swaps the whole collection, keeping newest-first order.
func (s *State) ReplaceIssues(issues []domain.Issue) {
	sorted := slices.Clone(issues)
	slices.SortStableFunc(sorted, func(a, b domain.Issue) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.issues = make([]*domain.Issue, 0, len(sorted))
	s.index = make(map[string]*domain.Issue, len(sorted))
	for _, issue := range sorted {
		if _, dup := s.index[issue.ID]; dup {
			continue
		}
		stored := issue.Clone()
		s.issues = append(s.issues, &stored)
		s.index[stored.ID] = &stored
	}
}

func (s *State) PutUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := user.Clone()
	s.users[user.ID] = &stored
}

func (s *State) User(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return domain.User{}, false
	}
	return user.Clone(), true
}

func (s *State) MutateUser(id string, fn func(*domain.User) error) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	working := current.Clone()
	if err := fn(&working); err != nil {
		return domain.User{}, err
	}
	*current = working
	return working.Clone(), nil
}

func (s *State) AddPoll(poll domain.Poll) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := poll.Clone()
	s.polls = append([]*domain.Poll{&stored}, s.polls...)
}

func (s *State) Polls() []domain.Poll {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Poll, 0, len(s.polls))
	for _, p := range s.polls {
		result = append(result, p.Clone())
	}
	return result
}

func (s *State) MutatePoll(id string, fn func(*domain.Poll) error) (domain.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.polls, func(p *domain.Poll) bool { return p.ID == id })
	if idx < 0 {
		return domain.Poll{}, domain.NotFoundError{Resource: "poll"}
	}
	working := s.polls[idx].Clone()
	if err := fn(&working); err != nil {
		return domain.Poll{}, err
	}
	*s.polls[idx] = working
	return working.Clone(), nil
}

func (s *State) AddBill(bill domain.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := bill.Clone()
	s.bills = append([]*domain.Bill{&stored}, s.bills...)
}

func (s *State) Bills() []domain.Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Bill, 0, len(s.bills))
	for _, b := range s.bills {
		result = append(result, b.Clone())
	}
	return result
}

func (s *State) MutateBill(id string, fn func(*domain.Bill) error) (domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.bills, func(b *domain.Bill) bool { return b.ID == id })
	if idx < 0 {
		return domain.Bill{}, domain.NotFoundError{Resource: "bill"}
	}
	working := s.bills[idx].Clone()
	if err := fn(&working); err != nil {
		return domain.Bill{}, err
	}
	*s.bills[idx] = working
	return working.Clone(), nil
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Issues: make([]domain.Issue, 0, len(s.issues)),
		Users:  make([]domain.User, 0, len(s.users)),
		Polls:  make([]domain.Poll, 0, len(s.polls)),
		Bills:  make([]domain.Bill, 0, len(s.bills)),
	}
	for _, i := range s.issues {
		snap.Issues = append(snap.Issues, i.Clone())
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, u.Clone())
	}
	slices.SortFunc(snap.Users, func(a, b domain.User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	for _, p := range s.polls {
		snap.Polls = append(snap.Polls, p.Clone())
	}
	for _, b := range s.bills {
		snap.Bills = append(snap.Bills, b.Clone())
	}
	return snap
}

// Restore replaces the whole state with snap.
func (s *State) Restore(snap Snapshot) {
	s.ReplaceIssues(snap.Issues)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*domain.User, len(snap.Users))
	for _, u := range snap.Users {
		stored := u.Clone()
		s.users[stored.ID] = &stored
	}
	s.polls = make([]*domain.Poll, 0, len(snap.Polls))
	for _, p := range snap.Polls {
		stored := p.Clone()
		s.polls = append(s.polls, &stored)
	}
	s.bills = make([]*domain.Bill, 0, len(snap.Bills))
	for _, b := range snap.Bills {
		stored := b.Clone()
		s.bills = append(s.bills, &stored)
	}
}

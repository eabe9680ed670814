package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/internal/service"
	"github.com/totegamma/engaja/policy"
)

type mockRepo struct {
	mu      sync.Mutex
	ops     []string
	listed  []domain.Issue
	listErr error
	err     error
}

func (m *mockRepo) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, op)
	return m.err
}

func (m *mockRepo) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

func (m *mockRepo) List(ctx context.Context) ([]domain.Issue, error) {
	return m.listed, m.listErr
}

func (m *mockRepo) Create(ctx context.Context, issue domain.Issue) error {
	return m.record("create:" + issue.ID)
}

func (m *mockRepo) Update(ctx context.Context, issue domain.Issue) error {
	return m.record("update:" + issue.ID)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.record("delete:" + id)
}

type mockClassifier struct {
	result domain.Classification
	err    error
	calls  atomic.Int32
}

func (m *mockClassifier) Classify(ctx context.Context, description string) (domain.Classification, error) {
	m.calls.Add(1)
	return m.result, m.err
}

type mockUploader struct {
	block bool
	err   error
	calls atomic.Int32
}

func (m *mockUploader) Upload(ctx context.Context, issueID string, a domain.Attachment) (string, error) {
	m.calls.Add(1)
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.err != nil {
		return "", m.err
	}
	return "https://cdn.example/" + issueID + "/" + a.ID, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []engaja.Event
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event engaja.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}

func (m *mockPublisher) Count(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func (m *mockPublisher) Last() engaja.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[len(m.events)-1]
}

type memorySnapshots struct {
	mu    sync.Mutex
	saved map[string][]byte
	saves int

	delay       time.Duration
	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func newMemorySnapshots(delay time.Duration) *memorySnapshots {
	return &memorySnapshots{saved: map[string][]byte{}, delay: delay}
}

func (m *memorySnapshots) Save(ctx context.Context, name string, version int, payload any) error {
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		peak := m.maxInflight.Load()
		if n <= peak || m.maxInflight.CompareAndSwap(peak, n) {
			break
		}
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[name] = b
	m.saves++
	return nil
}

func (m *memorySnapshots) Load(ctx context.Context, name string, version int, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.saved[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

var errGateway = errors.New("gateway unavailable")

type fixture struct {
	state     *State
	repo      *mockRepo
	snapshots *memorySnapshots
	persist   *Persister
	events    *mockPublisher
	users     *UserUsecase
	issues    *IssueUsecase
	voting    *VotingUsecase
	dashboard *DashboardUsecase
}

type fixtureOptions struct {
	classifier    Classifier
	uploader      Uploader
	uploadTimeout time.Duration
	snapshotDelay time.Duration
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	f := &fixture{
		state:     NewState(),
		repo:      &mockRepo{},
		snapshots: newMemorySnapshots(opts.snapshotDelay),
		events:    &mockPublisher{},
	}
	f.persist = NewPersister(f.repo, f.snapshots, f.state, time.Second)
	t.Cleanup(f.persist.Wait)

	auth := service.NewAuthorizer(policy.Default())
	f.users = NewUserUsecase(f.state, f.persist)
	f.issues = NewIssueUsecase(
		f.state,
		f.persist,
		opts.classifier,
		opts.uploader,
		auth,
		f.events,
		f.users,
		IssueConfig{UploadTimeout: opts.uploadTimeout},
	)
	f.voting = NewVotingUsecase(f.state, f.persist, auth, f.events, f.users)
	f.dashboard = NewDashboardUsecase(f.state, auth, f.users)
	return f
}

func (f *fixture) user(t *testing.T, name string, role domain.Role) domain.User {
	u, err := f.users.Register(context.Background(), name, role, "")
	require.NoError(t, err)
	return u
}

func (f *fixture) report(t *testing.T, author domain.User, description string) domain.Issue {
	issue, err := f.issues.Create(context.Background(), author.ID, CreateIssueInput{
		Description:       description,
		LiabilityAccepted: true,
	})
	require.NoError(t, err)
	return issue
}

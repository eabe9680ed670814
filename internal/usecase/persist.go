package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/totegamma/engaja/internal/domain"
)

const (
	SnapshotName    = "engaja:state"
	SnapshotVersion = 1
)

// Persister mirrors local mutations to the Persistence Gateway in the
// background. Failures are logged and the local state is kept; nothing is
// retried or rolled back. Concurrent writes for one issue may land in any
// order, the last one to complete wins remotely. Snapshot saves are
// serialized and each one captures the state when it starts, so the stored
// snapshot never goes back in time.
type Persister struct {
	repo      IssueRepository
	snapshots SnapshotStore
	state     *State
	timeout   time.Duration
	wg        sync.WaitGroup
	saveMu    sync.Mutex
}

func NewPersister(repo IssueRepository, snapshots SnapshotStore, state *State, timeout time.Duration) *Persister {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Persister{
		repo:      repo,
		snapshots: snapshots,
		state:     state,
		timeout:   timeout,
	}
}

func (p *Persister) Create(ctx context.Context, issue domain.Issue) {
	p.run(ctx, "Create", issue.ID, func(ctx context.Context) error {
		return p.repo.Create(ctx, issue)
	})
}

func (p *Persister) Update(ctx context.Context, issue domain.Issue) {
	p.run(ctx, "Update", issue.ID, func(ctx context.Context) error {
		return p.repo.Update(ctx, issue)
	})
}

func (p *Persister) Delete(ctx context.Context, id string) {
	p.run(ctx, "Delete", id, func(ctx context.Context) error {
		return p.repo.Delete(ctx, id)
	})
}

// List reads the gateway synchronously; it is only used at startup.
func (p *Persister) List(ctx context.Context) ([]domain.Issue, error) {
	if p.repo == nil {
		return nil, errors.New("no persistence gateway configured")
	}
	issues, err := p.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "gateway list failed")
	}
	return issues, nil
}

// Checkpoint writes a snapshot of the state without touching the gateway.
func (p *Persister) Checkpoint(ctx context.Context) {
	p.run(ctx, "Checkpoint", "", nil)
}

// Wait blocks until every in-flight write has finished.
func (p *Persister) Wait() {
	p.wg.Wait()
}

func (p *Persister) run(parent context.Context, op, id string, fn func(context.Context) error) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), p.timeout)
		defer cancel()

		ctx, span := tracer.Start(ctx, "Issue.Persister."+op)
		defer span.End()

		if fn != nil && p.repo != nil {
			err := fn(ctx)
			if err != nil {
				span.RecordError(err)
				zap.S().Warnw("persistence failed, keeping local state",
					"op", op,
					"issue", id,
					"error", err,
				)
			}
		}

		if p.snapshots == nil {
			return
		}
		p.saveMu.Lock()
		err := p.snapshots.Save(ctx, SnapshotName, SnapshotVersion, p.state.Snapshot())
		p.saveMu.Unlock()
		if err != nil {
			span.RecordError(errors.Wrap(err, "snapshot save failed"))
			zap.S().Warnw("snapshot save failed", "op", op, "error", err)
		}
	}()
}

// Restore loads the last snapshot into the state. It reports whether one was found.
func (p *Persister) Restore(ctx context.Context) (bool, error) {
	if p.snapshots == nil {
		return false, nil
	}
	var snap Snapshot
	found, err := p.snapshots.Load(ctx, SnapshotName, SnapshotVersion, &snap)
	if err != nil {
		return false, errors.Wrap(err, "snapshot load failed")
	}
	if !found {
		return false, nil
	}
	p.state.Restore(snap)
	return true, nil
}

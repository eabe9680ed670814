package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type snapshotEnvelope struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"savedAt"`
	Payload json.RawMessage `json:"payload"`
}

func encodeSnapshot(version int, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal snapshot payload")
	}
	return json.Marshal(snapshotEnvelope{
		Version: version,
		SavedAt: time.Now().UTC(),
		Payload: raw,
	})
}

// decodeSnapshot reports false when the envelope was written by another
// schema version. Such snapshots are discarded by the callers.
func decodeSnapshot(data []byte, version int, dest any) (bool, error) {
	var envelope snapshotEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return false, errors.Wrap(err, "unmarshal snapshot envelope")
	}
	if envelope.Version != version {
		return false, nil
	}
	if err := json.Unmarshal(envelope.Payload, dest); err != nil {
		return false, errors.Wrap(err, "unmarshal snapshot payload")
	}
	return true, nil
}

// SnapshotStore keeps the versioned state snapshot in redis.
type SnapshotStore struct {
	rdb *redis.Client
}

func NewSnapshotStore(rdb *redis.Client) *SnapshotStore {
	return &SnapshotStore{rdb: rdb}
}

func (s *SnapshotStore) Save(ctx context.Context, name string, version int, payload any) error {
	ctx, span := tracer.Start(ctx, "Snapshot.Repository.Save")
	defer span.End()

	data, err := encodeSnapshot(version, payload)
	if err != nil {
		span.RecordError(err)
		return err
	}
	err = s.rdb.Set(ctx, name, data, 0).Err()
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "save snapshot")
	}
	return nil
}

func (s *SnapshotStore) Load(ctx context.Context, name string, version int, dest any) (bool, error) {
	ctx, span := tracer.Start(ctx, "Snapshot.Repository.Load")
	defer span.End()

	data, err := s.rdb.Get(ctx, name).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		return false, errors.Wrap(err, "load snapshot")
	}

	ok, err := decodeSnapshot(data, version, dest)
	if err != nil || !ok {
		zap.S().Infow("discarding snapshot", "name", name, "version", version, "error", err)
		s.rdb.Del(ctx, name)
		return false, err
	}
	return true, nil
}

// LocalSnapshotStore is the in-process variant used when no redis is configured.
type LocalSnapshotStore struct {
	cache *cache.Cache
}

func NewLocalSnapshotStore() *LocalSnapshotStore {
	return &LocalSnapshotStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *LocalSnapshotStore) Save(ctx context.Context, name string, version int, payload any) error {
	data, err := encodeSnapshot(version, payload)
	if err != nil {
		return err
	}
	s.cache.Set(name, data, cache.NoExpiration)
	return nil
}

func (s *LocalSnapshotStore) Load(ctx context.Context, name string, version int, dest any) (bool, error) {
	value, found := s.cache.Get(name)
	if !found {
		return false, nil
	}
	data, _ := value.([]byte)
	ok, err := decodeSnapshot(data, version, dest)
	if err != nil || !ok {
		s.cache.Delete(name)
		return false, err
	}
	return true, nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/loto-fleet/internal/domain"
	"github.com/spec-kit/loto-fleet/internal/persistence"
	"github.com/spec-kit/loto-fleet/internal/transition"
	apperrors "github.com/spec-kit/loto-fleet/pkg/util/errorutil"
)

// FleetStore owns the ordered locker collection. Every mutation builds a new
// snapshot and writes the whole fleet to the blob store best-effort; a failed
// save never rolls back a committed mutation. A single mutex serializes
// writers, so each mutation observes a fully-committed prior state.
type FleetStore struct {
	mu      sync.RWMutex
	fleet   domain.Fleet
	engine  *transition.Engine
	blobs   persistence.BlobStore
	blobKey string
	logger  *zap.Logger
	newID   func() string
	now     func() time.Time
}

// Option customizes a FleetStore.
type Option func(*FleetStore)

// WithIDGenerator overrides the locker id source.
func WithIDGenerator(newID func() string) Option {
	return func(s *FleetStore) { s.newID = newID }
}

// WithClock overrides the provisioning timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *FleetStore) { s.now = now }
}

// NewFleetStore constructs an empty store; call Load to hydrate it.
func NewFleetStore(engine *transition.Engine, blobs persistence.BlobStore, blobKey string, logger *zap.Logger, opts ...Option) *FleetStore {
	s := &FleetStore{
		fleet:   domain.Fleet{},
		engine:  engine,
		blobs:   blobs,
		blobKey: blobKey,
		logger:  logger,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load hydrates the fleet from the blob store. Absent or unparseable data
// falls back to an empty fleet; startup never fails on bad persisted state.
func (s *FleetStore) Load(ctx context.Context) {
	blob, found, err := s.blobs.Load(ctx, s.blobKey)
	if err != nil {
		s.logger.Warn("failed to load fleet, starting empty", zap.Error(err))
		return
	}
	if !found {
		s.logger.Info("no persisted fleet, starting empty")
		return
	}

	var fleet domain.Fleet
	if err := json.Unmarshal(blob, &fleet); err != nil {
		s.logger.Warn("corrupt fleet blob, starting empty", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.fleet = fleet
	s.mu.Unlock()
	s.logger.Info("fleet loaded", zap.Int("lockers", len(fleet)))
}

// List returns a deep copy of the fleet in insertion order.
func (s *FleetStore) List() domain.Fleet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fleet.Clone()
}

// Get returns the locker with the given id.
func (s *FleetStore) Get(id string) (domain.Locker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.fleet.FindIndex(id)
	if idx < 0 {
		return domain.Locker{}, apperrors.NewNotFound("locker", map[string]any{"id": id})
	}
	return s.fleet[idx].Clone(), nil
}

// Count returns the number of lockers in the fleet.
func (s *FleetStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fleet)
}

// Provision appends one freshly-provisioned locker: OPEN, empty history.
// Names must be non-empty after trimming and unique within the fleet.
func (s *FleetStore) Provision(ctx context.Context, name, location string) (domain.Locker, error) {
	name = strings.TrimSpace(name)
	location = strings.TrimSpace(location)
	if name == "" {
		return domain.Locker{}, apperrors.NewValidationError("unit name is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameExists(name) {
		return domain.Locker{}, apperrors.NewConflict(
			fmt.Sprintf("unit %q already exists", name),
			map[string]any{"name": name},
		)
	}

	locker := s.newLocker(name, location)
	next := make(domain.Fleet, 0, len(s.fleet)+1)
	next = append(next, s.fleet...)
	next = append(next, locker)
	s.commit(ctx, next)
	return locker.Clone(), nil
}

// BulkProvision appends one locker per integer in [start, end], named
// prefix plus the zero-padded index. An inverted range is invalid input.
func (s *FleetStore) BulkProvision(ctx context.Context, prefix string, start, end int, location string) ([]domain.Locker, error) {
	location = strings.TrimSpace(location)
	if end < start {
		return nil, apperrors.NewValidationError(
			"invalid range: end is less than start",
			map[string]any{"start": start, "end": end},
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make([]domain.Locker, 0, end-start+1)
	for i := start; i <= end; i++ {
		name := fmt.Sprintf("%s%02d", prefix, i)
		if s.nameExists(name) {
			return nil, apperrors.NewConflict(
				fmt.Sprintf("unit %q already exists", name),
				map[string]any{"name": name},
			)
		}
		batch = append(batch, s.newLocker(name, location))
	}

	next := make(domain.Fleet, 0, len(s.fleet)+len(batch))
	next = append(next, s.fleet...)
	next = append(next, batch...)
	s.commit(ctx, next)

	out := make([]domain.Locker, len(batch))
	for i := range batch {
		out[i] = batch[i].Clone()
	}
	return out, nil
}

// Remove deletes the locker and its entire history. Deletion is idempotent:
// removing an unknown id is a no-op.
func (s *FleetStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.fleet.FindIndex(id)
	if idx < 0 {
		return false
	}

	next := make(domain.Fleet, 0, len(s.fleet)-1)
	next = append(next, s.fleet[:idx]...)
	next = append(next, s.fleet[idx+1:]...)
	s.commit(ctx, next)
	return true
}

// ApplyTransition runs an authorized transition against the locker with the
// given id, replacing it in place and leaving siblings untouched.
func (s *FleetStore) ApplyTransition(ctx context.Context, id string, target domain.LockerStatus, auth domain.AuthContext) (domain.Locker, domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.fleet.FindIndex(id)
	if idx < 0 {
		return domain.Locker{}, domain.HistoryEntry{}, apperrors.NewNotFound("locker", map[string]any{"id": id})
	}

	updated, entry, err := s.engine.RequestTransition(s.fleet[idx], target, auth)
	if err != nil {
		return domain.Locker{}, domain.HistoryEntry{}, err
	}

	s.commit(ctx, s.replaceAt(idx, updated))
	return updated.Clone(), entry, nil
}

// ForceStatus runs the administrative override against the locker with the
// given id.
func (s *FleetStore) ForceStatus(ctx context.Context, id string, target domain.LockerStatus) (domain.Locker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.fleet.FindIndex(id)
	if idx < 0 {
		return domain.Locker{}, apperrors.NewNotFound("locker", map[string]any{"id": id})
	}

	updated, err := s.engine.ForceSetStatus(s.fleet[idx], target)
	if err != nil {
		return domain.Locker{}, err
	}

	s.commit(ctx, s.replaceAt(idx, updated))
	return updated.Clone(), nil
}

func (s *FleetStore) newLocker(name, location string) domain.Locker {
	return domain.Locker{
		ID:            s.newID(),
		Name:          name,
		Location:      location,
		Status:        domain.StatusOpen,
		LastChangedAt: s.now().UnixMilli(),
		History:       []domain.HistoryEntry{},
	}
}

func (s *FleetStore) nameExists(name string) bool {
	for i := range s.fleet {
		if s.fleet[i].Name == name {
			return true
		}
	}
	return false
}

func (s *FleetStore) replaceAt(idx int, locker domain.Locker) domain.Fleet {
	next := make(domain.Fleet, len(s.fleet))
	copy(next, s.fleet)
	next[idx] = locker
	return next
}

// commit swaps in the new snapshot and persists it. Requires s.mu held.
func (s *FleetStore) commit(ctx context.Context, next domain.Fleet) {
	s.fleet = next

	blob, err := json.Marshal(next)
	if err != nil {
		s.logger.Error("failed to serialize fleet", zap.Error(err))
		return
	}
	if err := s.blobs.Save(ctx, s.blobKey, blob); err != nil {
		s.logger.Warn("failed to persist fleet", zap.Error(err))
	}
}

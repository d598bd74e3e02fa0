package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/loto-fleet/internal/domain"
	"github.com/spec-kit/loto-fleet/internal/persistence"
	"github.com/spec-kit/loto-fleet/internal/transition"
	apperrors "github.com/spec-kit/loto-fleet/pkg/util/errorutil"
)

const testBlobKey = "lockers_data"

func newTestStore(t *testing.T) (*FleetStore, *persistence.MemoryStore) {
	t.Helper()
	blobs := persistence.NewMemoryStore()
	ids := 0
	nextID := func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	engine := transition.NewEngine(transition.WithIDGenerator(nextID))
	s := NewFleetStore(engine, blobs, testBlobKey, zap.NewNop(),
		WithIDGenerator(nextID),
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
	)
	return s, blobs
}

func fullAuth() domain.AuthContext {
	return domain.AuthContext{
		Technician: "Alice",
		Supervisor: "Bob",
		Foreman:    "Carl",
		Equipment:  "Pump-1",
		Operator:   "Dan",
		Location:   "Site A",
	}
}

func persistedFleet(t *testing.T, blobs *persistence.MemoryStore) domain.Fleet {
	t.Helper()
	blob, found, err := blobs.Load(context.Background(), testBlobKey)
	require.NoError(t, err)
	require.True(t, found)
	var fleet domain.Fleet
	require.NoError(t, json.Unmarshal(blob, &fleet))
	return fleet
}

func TestProvision(t *testing.T) {
	s, blobs := newTestStore(t)

	locker, err := s.Provision(context.Background(), " L-101 ", "Pump Station A")
	require.NoError(t, err)
	assert.Equal(t, "L-101", locker.Name)
	assert.Equal(t, "Pump Station A", locker.Location)
	assert.Equal(t, domain.StatusOpen, locker.Status)
	assert.Empty(t, locker.History)

	// Mutation persisted the whole fleet.
	fleet := persistedFleet(t, blobs)
	require.Len(t, fleet, 1)
	assert.Equal(t, "L-101", fleet[0].Name)
}

func TestProvisionEmptyName(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Provision(context.Background(), "   ", "Site A")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, s.Count())
}

func TestProvisionDuplicateName(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Provision(context.Background(), "L-101", "Site A")
	require.NoError(t, err)

	_, err = s.Provision(context.Background(), "L-101", "Site B")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
	assert.Equal(t, 1, s.Count())
}

func TestBulkProvision(t *testing.T) {
	s, _ := newTestStore(t)

	created, err := s.BulkProvision(context.Background(), "L-", 1, 3, "Site A")
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, "L-01", created[0].Name)
	assert.Equal(t, "L-02", created[1].Name)
	assert.Equal(t, "L-03", created[2].Name)
	for _, locker := range created {
		assert.Equal(t, domain.StatusOpen, locker.Status)
		assert.Empty(t, locker.History)
		assert.Equal(t, "Site A", locker.Location)
	}
}

func TestBulkProvisionInvalidRange(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.BulkProvision(context.Background(), "L-", 5, 4, "Site A")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, s.Count())
}

func TestBulkProvisionSingleUnitRange(t *testing.T) {
	s, _ := newTestStore(t)
	created, err := s.BulkProvision(context.Background(), "L-", 7, 7, "Site A")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "L-07", created[0].Name)
}

func TestBulkProvisionNameCollision(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Provision(context.Background(), "L-02", "Site A")
	require.NoError(t, err)

	_, err = s.BulkProvision(context.Background(), "L-", 1, 3, "Site A")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
	// Nothing partially committed.
	assert.Equal(t, 1, s.Count())
}

func TestRemoveIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	locker, err := s.Provision(context.Background(), "L-101", "Site A")
	require.NoError(t, err)

	assert.True(t, s.Remove(context.Background(), locker.ID))
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.Remove(context.Background(), locker.ID))
	assert.Equal(t, 0, s.Count())
}

func TestApplyTransition(t *testing.T) {
	s, blobs := newTestStore(t)
	a, err := s.Provision(context.Background(), "L-01", "Yard")
	require.NoError(t, err)
	b, err := s.Provision(context.Background(), "L-02", "Yard")
	require.NoError(t, err)

	updated, entry, err := s.ApplyTransition(context.Background(), a.ID, domain.StatusLocked, fullAuth())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLocked, updated.Status)
	assert.Equal(t, "Site A", updated.Location)
	assert.Equal(t, domain.StatusOpen, entry.FromStatus)

	// Order preserved, sibling untouched.
	fleet := s.List()
	require.Len(t, fleet, 2)
	assert.Equal(t, a.ID, fleet[0].ID)
	assert.Equal(t, domain.StatusLocked, fleet[0].Status)
	assert.Equal(t, b.ID, fleet[1].ID)
	assert.Equal(t, domain.StatusOpen, fleet[1].Status)
	assert.Empty(t, fleet[1].History)

	persisted := persistedFleet(t, blobs)
	assert.Equal(t, domain.StatusLocked, persisted[0].Status)
	require.Len(t, persisted[0].History, 1)
}

func TestApplyTransitionNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, _, err := s.ApplyTransition(context.Background(), "missing", domain.StatusLocked, fullAuth())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestApplyTransitionValidationLeavesStateUntouched(t *testing.T) {
	s, _ := newTestStore(t)
	locker, err := s.Provision(context.Background(), "L-01", "Yard")
	require.NoError(t, err)

	auth := fullAuth()
	auth.Foreman = ""
	_, _, err = s.ApplyTransition(context.Background(), locker.ID, domain.StatusLocked, auth)
	require.Error(t, err)

	got, err := s.Get(locker.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, got.Status)
	assert.Empty(t, got.History)
}

func TestForceStatus(t *testing.T) {
	s, _ := newTestStore(t)
	locker, err := s.Provision(context.Background(), "L-01", "Yard")
	require.NoError(t, err)
	_, _, err = s.ApplyTransition(context.Background(), locker.ID, domain.StatusLocked, fullAuth())
	require.NoError(t, err)

	forced, err := s.ForceStatus(context.Background(), locker.ID, domain.StatusMissing)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMissing, forced.Status)
	// No history entry for the audit-light path.
	require.Len(t, forced.History, 1)
	assert.Equal(t, domain.StatusLocked, forced.History[0].ToStatus)
}

func TestForceStatusNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.ForceStatus(context.Background(), "missing", domain.StatusMissing)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLoadRoundTrip(t *testing.T) {
	s, blobs := newTestStore(t)
	_, err := s.Provision(context.Background(), "L-01", "Yard")
	require.NoError(t, err)
	locker, err := s.Provision(context.Background(), "L-02", "Yard")
	require.NoError(t, err)
	_, _, err = s.ApplyTransition(context.Background(), locker.ID, domain.StatusLocked, fullAuth())
	require.NoError(t, err)

	reloaded := NewFleetStore(transition.NewEngine(), blobs, testBlobKey, zap.NewNop())
	reloaded.Load(context.Background())
	assert.Equal(t, s.List(), reloaded.List())
}

func TestLoadEmptyFleetRoundTrip(t *testing.T) {
	blobs := persistence.NewMemoryStore()
	require.NoError(t, blobs.Save(context.Background(), testBlobKey, []byte("[]")))

	s := NewFleetStore(transition.NewEngine(), blobs, testBlobKey, zap.NewNop())
	s.Load(context.Background())
	assert.Equal(t, 0, s.Count())
}

func TestLoadCorruptBlobFallsBackToEmpty(t *testing.T) {
	blobs := persistence.NewMemoryStore()
	require.NoError(t, blobs.Save(context.Background(), testBlobKey, []byte("{not json")))

	s := NewFleetStore(transition.NewEngine(), blobs, testBlobKey, zap.NewNop())
	s.Load(context.Background())
	assert.Equal(t, 0, s.Count())
}

func TestListReturnsSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	locker, err := s.Provision(context.Background(), "L-01", "Yard")
	require.NoError(t, err)
	_, _, err = s.ApplyTransition(context.Background(), locker.ID, domain.StatusLocked, fullAuth())
	require.NoError(t, err)

	snapshot := s.List()
	snapshot[0].Status = domain.StatusMissing
	snapshot[0].History[0].Technician = "tampered"

	got, err := s.Get(locker.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLocked, got.Status)
	assert.Equal(t, "Alice", got.History[0].Technician)
}

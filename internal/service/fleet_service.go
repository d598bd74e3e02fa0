package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/loto-fleet/internal/domain"
	"github.com/spec-kit/loto-fleet/internal/events"
	"github.com/spec-kit/loto-fleet/internal/history"
	"github.com/spec-kit/loto-fleet/internal/store"
)

// FleetService coordinates fleet workflows: it commits mutations through the
// store, invalidates the history feed cache, and publishes domain events.
// Events fire strictly after commit; a failing listener cannot roll back a
// mutation.
type FleetService struct {
	fleet      *store.FleetStore
	history    *history.Service
	dispatcher events.Dispatcher
}

// FleetDependencies bundles collaborators for the fleet service.
type FleetDependencies struct {
	Store      *store.FleetStore
	History    *history.Service
	Dispatcher events.Dispatcher
}

// NewFleetService constructs the service.
func NewFleetService(deps FleetDependencies) *FleetService {
	return &FleetService{
		fleet:      deps.Store,
		history:    deps.History,
		dispatcher: deps.Dispatcher,
	}
}

// List returns the fleet in insertion order.
func (s *FleetService) List() domain.Fleet {
	return s.fleet.List()
}

// Get returns one locker by id.
func (s *FleetService) Get(id string) (domain.Locker, error) {
	return s.fleet.Get(id)
}

// Provision adds a single unit to the fleet.
func (s *FleetService) Provision(ctx context.Context, name, location string) (domain.Locker, error) {
	locker, err := s.fleet.Provision(ctx, name, location)
	if err != nil {
		return domain.Locker{}, err
	}
	s.afterMutation()
	s.publishEvent(ctx, events.Event{
		Type:     events.EventLockerProvisioned,
		LockerID: locker.ID,
		Payload: events.LockerProvisionedPayload{
			UnitName: locker.Name,
			Location: locker.Location,
		},
	})
	return locker, nil
}

// BulkProvision deploys a named range of units.
func (s *FleetService) BulkProvision(ctx context.Context, prefix string, start, end int, location string) ([]domain.Locker, error) {
	created, err := s.fleet.BulkProvision(ctx, prefix, start, end, location)
	if err != nil {
		return nil, err
	}
	s.afterMutation()
	for _, locker := range created {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventLockerProvisioned,
			LockerID: locker.ID,
			Payload: events.LockerProvisionedPayload{
				UnitName: locker.Name,
				Location: locker.Location,
				Bulk:     true,
			},
		})
	}
	return created, nil
}

// Remove deletes a unit and its entire history. Idempotent: removing an
// unknown id succeeds without an event.
func (s *FleetService) Remove(ctx context.Context, id string) {
	locker, err := s.fleet.Get(id)
	if err != nil {
		return
	}
	if !s.fleet.Remove(ctx, id) {
		return
	}
	s.afterMutation()
	s.publishEvent(ctx, events.Event{
		Type:     events.EventLockerRemoved,
		LockerID: id,
		Payload:  events.LockerRemovedPayload{UnitName: locker.Name},
	})
}

// RequestTransition applies an authorized status change to one unit.
func (s *FleetService) RequestTransition(ctx context.Context, id string, target domain.LockerStatus, auth domain.AuthContext) (domain.Locker, domain.HistoryEntry, error) {
	locker, entry, err := s.fleet.ApplyTransition(ctx, id, target, auth)
	if err != nil {
		return domain.Locker{}, domain.HistoryEntry{}, err
	}
	s.afterMutation()
	s.publishEvent(ctx, events.Event{
		Type:     events.EventLockerStatusChanged,
		LockerID: locker.ID,
		Payload: events.LockerStatusChangedPayload{
			UnitName:   locker.Name,
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			Technician: entry.Technician,
			Equipment:  entry.Equipment,
		},
	})
	return locker, entry, nil
}

// ForceStatus applies the administrative override to one unit.
func (s *FleetService) ForceStatus(ctx context.Context, id string, target domain.LockerStatus) (domain.Locker, error) {
	locker, err := s.fleet.ForceStatus(ctx, id, target)
	if err != nil {
		return domain.Locker{}, err
	}
	s.afterMutation()
	s.publishEvent(ctx, events.Event{
		Type:     events.EventLockerForceOverride,
		LockerID: locker.ID,
		Payload: events.LockerForceOverridePayload{
			UnitName: locker.Name,
			ToStatus: locker.Status,
		},
	})
	return locker, nil
}

func (s *FleetService) afterMutation() {
	if s.history != nil {
		s.history.Invalidate()
	}
}

func (s *FleetService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

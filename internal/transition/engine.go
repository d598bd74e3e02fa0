package transition

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/loto-fleet/internal/domain"
	apperrors "github.com/spec-kit/loto-fleet/pkg/util/errorutil"
)

// Engine computes locker state transitions. It is pure: no persistence, no
// events, no I/O. The clock and id source are injectable for deterministic
// tests.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine constructs an engine with real clock and uuid ids.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// authFields pins the validation order for missing-field errors.
var authFields = []struct {
	name  string
	value func(domain.AuthContext) string
}{
	{"technician", func(a domain.AuthContext) string { return a.Technician }},
	{"supervisor", func(a domain.AuthContext) string { return a.Supervisor }},
	{"foreman", func(a domain.AuthContext) string { return a.Foreman }},
	{"equipment", func(a domain.AuthContext) string { return a.Equipment }},
	{"operator", func(a domain.AuthContext) string { return a.Operator }},
	{"location", func(a domain.AuthContext) string { return a.Location }},
}

// ValidateAuth rejects any blank (empty or whitespace-only) authorization
// field, naming the first offender.
func ValidateAuth(auth domain.AuthContext) error {
	for _, field := range authFields {
		if strings.TrimSpace(field.value(auth)) == "" {
			return apperrors.NewValidationError(
				fmt.Sprintf("authorization field %q is required", field.name),
				map[string]any{"field": field.name},
			)
		}
	}
	return nil
}

// RequestTransition validates and applies an authorized status change. It
// returns the updated locker and the history entry recording the change; the
// input locker is never modified. The pair is constructed together or not at
// all.
func (e *Engine) RequestTransition(locker domain.Locker, target domain.LockerStatus, auth domain.AuthContext) (domain.Locker, domain.HistoryEntry, error) {
	if target == locker.Status {
		return domain.Locker{}, domain.HistoryEntry{}, apperrors.NewValidationError(
			fmt.Sprintf("locker %q is already %s", locker.Name, target),
			map[string]any{"status": string(target), "reason": "redundant_transition"},
		)
	}
	if err := ValidateAuth(auth); err != nil {
		return domain.Locker{}, domain.HistoryEntry{}, err
	}

	now := e.now().UnixMilli()
	entry := domain.HistoryEntry{
		ID:         e.newID(),
		Timestamp:  now,
		FromStatus: locker.Status,
		ToStatus:   target,
		Technician: auth.Technician,
		Supervisor: auth.Supervisor,
		Foreman:    auth.Foreman,
		Equipment:  auth.Equipment,
		Operator:   auth.Operator,
		Location:   auth.Location,
	}

	updated := locker.Clone()
	updated.Status = target
	// The work location of this operation becomes the unit's recorded
	// location; it tracks the most recent operation, not an installation site.
	updated.Location = auth.Location
	updated.LastChangedAt = now
	updated.History = append([]domain.HistoryEntry{entry}, updated.History...)

	return updated, entry, nil
}

// ForceSetStatus is the administrative override: no authorization, no history
// entry. Only Status and LastChangedAt change.
func (e *Engine) ForceSetStatus(locker domain.Locker, target domain.LockerStatus) (domain.Locker, error) {
	if target == locker.Status {
		return domain.Locker{}, apperrors.NewValidationError(
			fmt.Sprintf("locker %q is already %s", locker.Name, target),
			map[string]any{"status": string(target), "reason": "redundant_transition"},
		)
	}

	updated := locker.Clone()
	updated.Status = target
	updated.LastChangedAt = e.now().UnixMilli()
	return updated, nil
}

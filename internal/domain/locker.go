package domain

// LockerStatus enumerates lockout states for a unit.
type LockerStatus string

const (
	StatusOpen    LockerStatus = "OPEN"
	StatusLocked  LockerStatus = "LOCKED"
	StatusMissing LockerStatus = "MISSING"
)

// ParseLockerStatus validates a raw status value arriving at the API boundary.
func ParseLockerStatus(raw string) (LockerStatus, bool) {
	switch LockerStatus(raw) {
	case StatusOpen, StatusLocked, StatusMissing:
		return LockerStatus(raw), true
	}
	return "", false
}

// AuthContext is the authorization payload a human operator supplies before a
// transition is committed. All six fields are mandatory; the same name may
// legitimately appear in more than one role.
type AuthContext struct {
	Technician string `json:"technician"`
	Supervisor string `json:"supervisor"`
	Foreman    string `json:"foreman"`
	Equipment  string `json:"equipment"`
	Operator   string `json:"operator"`
	Location   string `json:"location"`
}

// HistoryEntry is an immutable audit record of one authorized transition.
// Timestamps are milliseconds since epoch so a blob written by earlier tooling
// round-trips unchanged.
type HistoryEntry struct {
	ID         string       `json:"id"`
	Timestamp  int64        `json:"timestamp"`
	FromStatus LockerStatus `json:"fromStatus"`
	ToStatus   LockerStatus `json:"toStatus"`
	Technician string       `json:"technician"`
	Supervisor string       `json:"supervisor"`
	Foreman    string       `json:"foreman"`
	Equipment  string       `json:"equipment"`
	Operator   string       `json:"operator"`
	Location   string       `json:"location"`
}

// Locker is the aggregate for one physical lockout point.
type Locker struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Location      string         `json:"location"`
	Status        LockerStatus   `json:"status"`
	LastChangedAt int64          `json:"lastChangedAt"`
	History       []HistoryEntry `json:"history"`
}

// Clone returns a deep copy so snapshot holders never share history backing
// arrays with the store.
func (l Locker) Clone() Locker {
	out := l
	if l.History != nil {
		out.History = make([]HistoryEntry, len(l.History))
		copy(out.History, l.History)
	}
	return out
}

// Fleet is the full ordered collection of lockers; insertion order is
// preserved and IDs are unique across the collection.
type Fleet []Locker

// Clone deep-copies every locker in the fleet.
func (f Fleet) Clone() Fleet {
	if f == nil {
		return nil
	}
	out := make(Fleet, len(f))
	for i := range f {
		out[i] = f[i].Clone()
	}
	return out
}

// FindIndex returns the position of the locker with the given id, or -1.
func (f Fleet) FindIndex(id string) int {
	for i := range f {
		if f[i].ID == id {
			return i
		}
	}
	return -1
}

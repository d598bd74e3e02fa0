package dto

// ProvisionRequest adds a single unit.
type ProvisionRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// BulkProvisionRequest deploys a named range of units.
type BulkProvisionRequest struct {
	Prefix   string `json:"prefix"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Location string `json:"location"`
}

// TransitionRequest carries the target status plus the full authorization
// form for one status change.
type TransitionRequest struct {
	Target     string `json:"target"`
	Technician string `json:"technician"`
	Supervisor string `json:"supervisor"`
	Foreman    string `json:"foreman"`
	Equipment  string `json:"equipment"`
	Operator   string `json:"operator"`
	Location   string `json:"location"`
}

// ForceStatusRequest carries the target status for an administrative
// override; no authorization form.
type ForceStatusRequest struct {
	Status string `json:"status"`
}

// LockerSummary is the list-view shape of a unit.
type LockerSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	Status        string `json:"status"`
	LastChangedAt int64  `json:"lastChangedAt"`
	HistoryCount  int    `json:"historyCount"`
}

// LockerDetail includes the unit's full audit trail, newest first.
type LockerDetail struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Location      string                 `json:"location"`
	Status        string                 `json:"status"`
	LastChangedAt int64                  `json:"lastChangedAt"`
	History       []HistoryEntryResponse `json:"history"`
}

// HistoryEntryResponse is one audit record.
type HistoryEntryResponse struct {
	ID         string `json:"id"`
	Timestamp  int64  `json:"timestamp"`
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	Technician string `json:"technician"`
	Supervisor string `json:"supervisor"`
	Foreman    string `json:"foreman"`
	Equipment  string `json:"equipment"`
	Operator   string `json:"operator"`
	Location   string `json:"location"`
}

// HistoryFeedEntry is an audit record tagged with its owning unit's name.
type HistoryFeedEntry struct {
	HistoryEntryResponse
	UnitName string `json:"unitName"`
}

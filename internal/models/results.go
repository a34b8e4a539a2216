package models

import "time"

// ConflictDetail describes one reservation that blocks a candidate interval.
type ConflictDetail struct {
	ReservationID int64  `json:"reservation_id"`
	Start         string `json:"start"`
	End           string `json:"end"`
	StartMin      int    `json:"start_min"`
	EndMin        int    `json:"end_min"`
	Origin        string `json:"origin"`
}

// ValidationResult is produced by the validation pipeline when a request
// passes business-hours and entry-window checks.
type ValidationResult struct {
	Valid      bool   `json:"valid"`
	LastEntry  string `json:"last_entry,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// AllocationResult is the outcome of a table search.
type AllocationResult struct {
	Allocated    *Table            `json:"allocated"`
	DurationMin  int               `json:"duration_min"`
	Conflicts    []ConflictDetail  `json:"conflicts,omitempty"`
	Alternatives []AlternativeSlot `json:"alternatives,omitempty"`
}

// AlternativeSlot is a ranked suggestion when the requested slot fails.
type AlternativeSlot struct {
	Time                 string `json:"time"`
	TimeMin              int    `json:"-"`
	FreeTableCount       int    `json:"free_table_count"`
	MinutesFromRequested int    `json:"minutes_from_requested"`
	IsReleaseEvent       bool   `json:"is_release_event"`
	IsExactMatch         bool   `json:"is_exact_match"`
}

// DayOverview lists a date's reservations grouped per table, with the
// effective window, for the dashboard.
type DayOverview struct {
	Date         time.Time               `json:"date"`
	Window       *TimeWindow             `json:"window"`
	Reservations map[int64][]Reservation `json:"reservations"` // keyed by table id
}

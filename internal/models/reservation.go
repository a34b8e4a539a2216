package models

import "time"

type Reservation struct {
	ID          int64     `json:"id"`
	TableID     int64     `json:"table_id"`
	TableNumber int       `json:"table_number,omitempty"`
	GuestName   string    `json:"guest_name"`
	Phone       string    `json:"phone"`
	PartySize   int       `json:"party_size"`
	Date        time.Time `json:"date"`
	StartMin    int       `json:"start_min"` // minutes since midnight, 0-1439
	DurationMin int       `json:"duration_min"`
	Status      string    `json:"status"` // pending, confirmed, cancelled, completed, no_show
	Origin      string    `json:"origin"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int64     `json:"version"`
}

// EndMin is the computed end of the reservation interval. Intervals are
// half-open: the table is free again at exactly this minute.
func (r *Reservation) EndMin() int {
	return r.StartMin + r.DurationMin
}

func (r *Reservation) IsActive() bool {
	return IsActiveStatus(r.Status)
}

package models

import "time"

// BookingDraft holds the partially collected booking details of one caller
// session (web widget or chat agent) while the flow is in progress.
type BookingDraft struct {
	SessionID   string    `json:"session_id"`
	GuestName   string    `json:"guest_name"`
	Phone       string    `json:"phone"`
	PartySize   int       `json:"party_size"`
	Date        time.Time `json:"date"`
	StartMin    int       `json:"start_min"`
	DurationMin int       `json:"duration_min"`
	Origin      string    `json:"origin"`
	UpdatedAt   time.Time `json:"updated_at"`
}

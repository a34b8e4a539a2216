package models

import "time"

// BusinessHours is one weekly schedule entry. A close numerically at or below
// open means the window runs past midnight.
type BusinessHours struct {
	Weekday  int  `json:"weekday"` // 0=Sunday .. 6=Saturday
	OpenMin  int  `json:"open_min"`
	CloseMin int  `json:"close_min"`
	Closed   bool `json:"closed"`
}

// HoursException overrides the weekly schedule for one calendar date.
type HoursException struct {
	Date     time.Time `json:"date"`
	Closed   bool      `json:"closed"`
	OpenMin  int       `json:"open_min"`
	CloseMin int       `json:"close_min"`
	Reason   string    `json:"reason"`
}

// TimeWindow is the effective opening window resolved for a date.
// Not persisted; produced fresh per request.
type TimeWindow struct {
	Closed      bool `json:"closed"`
	OpenMin     int  `json:"open_min"`
	CloseMin    int  `json:"close_min"` // raw value, may be <= OpenMin
	IsException bool `json:"is_exception"`
}

func (w *TimeWindow) CrossesMidnight() bool {
	return !w.Closed && w.CloseMin <= w.OpenMin
}

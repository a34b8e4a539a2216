package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
)

const (
	OriginWeb    = "web"
	OriginPhone  = "phone"
	OriginWalkIn = "walk_in"
	OriginAgent  = "agent"
)

const (
	MinutesPerDay = 1440

	// DefaultDurationFallback is used when the live read of the venue default fails
	DefaultDurationFallback = 120

	// CapacityOverfit bounds how much larger than the party a table may be
	CapacityOverfit = 2

	// DefaultNextOpenSearchDays how far ahead to look for the next open date
	DefaultNextOpenSearchDays = 7

	// DefaultGridStepMinutes step of the alternative-slot grid scan
	DefaultGridStepMinutes = 15

	// DefaultScanRadiusMinutes scan radius around the requested time
	DefaultScanRadiusMinutes = 180

	// DefaultReleaseWindowMinutes how far from the requested time release events count
	DefaultReleaseWindowMinutes = 120

	// DefaultSameDayLeadMinutes minimum lead time for same-day suggestions
	DefaultSameDayLeadMinutes = 30

	// DefaultNearWindowMinutes slots within this distance rank as "near"
	DefaultNearWindowMinutes = 60

	// DefaultScanFloorMinutes / Ceil clip the grid scan to service hours
	DefaultScanFloorMinutes = 8 * 60
	DefaultScanCeilMinutes  = 23 * 60

	// DefaultMaxAlternatives cap on suggestions returned to the caller
	DefaultMaxAlternatives = 5

	// DefaultSessionTTL lifetime of a booking draft in seconds
	DefaultSessionTTL = 30 * 60

	// RateLimitRequests allowed per RateLimitWindow seconds per session key
	RateLimitRequests = 30
	RateLimitWindow   = 60
)

// ActiveStatuses are the reservation statuses that occupy a table.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

// IsActiveStatus reports whether a status participates in conflict checks.
func IsActiveStatus(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}

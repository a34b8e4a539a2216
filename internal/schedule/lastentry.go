package schedule

// LastEntryResult is the computed latest admissible start time for a window
// and duration.
type LastEntryResult struct {
	Valid            bool
	LastEntryMin     int    // normalized minutes, may exceed 1439 past midnight
	LastEntry        string // clock form, wrapped to HH:MM
	AvailableMinutes int
	CrossesMidnight  bool
	Reason           string
}

// CalculateLastEntry computes the latest time a reservation may start so it
// ends at or before closing. Close is normalized first, so a 20:00-04:00
// window with a 150 minute duration yields last entry 01:30.
func CalculateLastEntry(openMin, closeMin, durationMin int) LastEntryResult {
	normalizedClose := NormalizeClose(openMin, closeMin)
	available := normalizedClose - openMin
	crosses := closeMin <= openMin

	if available < durationMin {
		return LastEntryResult{
			AvailableMinutes: available,
			CrossesMidnight:  crosses,
			Reason:           "insufficient open window",
		}
	}

	lastEntry := normalizedClose - durationMin
	return LastEntryResult{
		Valid:            true,
		LastEntryMin:     lastEntry,
		LastEntry:        FormatMinutes(lastEntry),
		AvailableMinutes: available,
		CrossesMidnight:  crosses,
	}
}

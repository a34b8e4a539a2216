package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateLastEntry(t *testing.T) {
	t.Run("regular window", func(t *testing.T) {
		// 13:00-23:00 with 120 minute visits: last entry 21:00
		result := CalculateLastEntry(780, 1380, 120)
		assert.True(t, result.Valid)
		assert.Equal(t, 1260, result.LastEntryMin)
		assert.Equal(t, "21:00", result.LastEntry)
		assert.Equal(t, 600, result.AvailableMinutes)
		assert.False(t, result.CrossesMidnight)
	})

	t.Run("window past midnight", func(t *testing.T) {
		// 20:00-04:00 with 150 minute visits: last entry 01:30
		result := CalculateLastEntry(1200, 240, 150)
		assert.True(t, result.Valid)
		assert.Equal(t, 1530, result.LastEntryMin)
		assert.Equal(t, "01:30", result.LastEntry)
		assert.Equal(t, 480, result.AvailableMinutes)
		assert.True(t, result.CrossesMidnight)
	})

	t.Run("duration exceeds window", func(t *testing.T) {
		// 23:00-01:00 is only 120 minutes, a 180 minute visit cannot fit
		result := CalculateLastEntry(1380, 60, 180)
		assert.False(t, result.Valid)
		assert.Equal(t, 120, result.AvailableMinutes)
		assert.True(t, result.CrossesMidnight)
		assert.Equal(t, "insufficient open window", result.Reason)
	})

	t.Run("duration exactly fills window", func(t *testing.T) {
		result := CalculateLastEntry(780, 1380, 600)
		assert.True(t, result.Valid)
		assert.Equal(t, 780, result.LastEntryMin)
		assert.Equal(t, "13:00", result.LastEntry)
	})

	t.Run("close at midnight", func(t *testing.T) {
		result := CalculateLastEntry(780, 0, 120)
		assert.True(t, result.Valid)
		assert.Equal(t, 1320, result.LastEntryMin)
		assert.Equal(t, "22:00", result.LastEntry)
		assert.True(t, result.CrossesMidnight)
	})
}

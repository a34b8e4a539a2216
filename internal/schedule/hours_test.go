package schedule

import (
	"context"
	"testing"
	"time"

	"tablebook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoursResolver(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

	t.Run("weekly schedule applies", func(t *testing.T) {
		store := newFakeStore()
		store.openWeek()
		resolver := NewHoursResolver(store)

		window, err := resolver.Resolve(ctx, monday)
		require.NoError(t, err)
		assert.False(t, window.Closed)
		assert.Equal(t, 780, window.OpenMin)
		assert.Equal(t, 1380, window.CloseMin)
		assert.False(t, window.IsException)
	})

	t.Run("closed weekday", func(t *testing.T) {
		store := newFakeStore()
		store.openWeek()
		resolver := NewHoursResolver(store)

		window, err := resolver.Resolve(ctx, sunday)
		require.NoError(t, err)
		assert.True(t, window.Closed)
	})

	t.Run("no weekly entry means closed", func(t *testing.T) {
		store := newFakeStore()
		resolver := NewHoursResolver(store)

		window, err := resolver.Resolve(ctx, monday)
		require.NoError(t, err)
		assert.True(t, window.Closed)
	})

	t.Run("exception overrides weekly hours", func(t *testing.T) {
		store := newFakeStore()
		store.openWeek()
		store.exceptions[dateKey(monday)] = &models.HoursException{
			Date:     monday,
			OpenMin:  17 * 60,
			CloseMin: 21 * 60,
			Reason:   "private event",
		}
		resolver := NewHoursResolver(store)

		window, err := resolver.Resolve(ctx, monday)
		require.NoError(t, err)
		assert.False(t, window.Closed)
		assert.Equal(t, 17*60, window.OpenMin)
		assert.Equal(t, 21*60, window.CloseMin)
		assert.True(t, window.IsException)
	})

	t.Run("closing exception beats open weekday", func(t *testing.T) {
		store := newFakeStore()
		store.openWeek()
		store.exceptions[dateKey(monday)] = &models.HoursException{Date: monday, Closed: true}
		resolver := NewHoursResolver(store)

		window, err := resolver.Resolve(ctx, monday)
		require.NoError(t, err)
		assert.True(t, window.Closed)
		assert.True(t, window.IsException)
	})

	t.Run("opening exception beats closed weekday", func(t *testing.T) {
		store := newFakeStore()
		store.openWeek()
		store.exceptions[dateKey(sunday)] = &models.HoursException{
			Date:     sunday,
			OpenMin:  12 * 60,
			CloseMin: 18 * 60,
		}
		resolver := NewHoursResolver(store)

		window, err := resolver.Resolve(ctx, sunday)
		require.NoError(t, err)
		assert.False(t, window.Closed)
		assert.Equal(t, 12*60, window.OpenMin)
	})

	t.Run("storage failure surfaces as transient", func(t *testing.T) {
		store := newFakeStore()
		store.openWeek()
		store.failHours = true
		resolver := NewHoursResolver(store)

		_, err := resolver.Resolve(ctx, monday)
		require.Error(t, err)
		var transient *TransientStorageError
		assert.ErrorAs(t, err, &transient)
	})

	t.Run("edits take effect on the next request", func(t *testing.T) {
		store := newFakeStore()
		store.openWeek()
		resolver := NewHoursResolver(store)

		window, err := resolver.Resolve(ctx, monday)
		require.NoError(t, err)
		assert.Equal(t, 780, window.OpenMin)

		store.weekly[1] = &models.BusinessHours{Weekday: 1, OpenMin: 14 * 60, CloseMin: 22 * 60}

		window, err = resolver.Resolve(ctx, monday)
		require.NoError(t, err)
		assert.Equal(t, 14*60, window.OpenMin)
	})
}

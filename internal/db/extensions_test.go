package db_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cardrail/cardrail-api/internal/db"
)

func TestSameUTCDay(t *testing.T) {
	base := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)

	assert.True(t, db.SameUTCDay(base, base.Add(29*time.Minute)))
	assert.False(t, db.SameUTCDay(base, base.Add(31*time.Minute)))

	// Local noon in UTC+10 is 02:00 UTC the same day; the comparison is
	// strictly on the UTC calendar, not the local one.
	plus10 := time.FixedZone("UTC+10", 10*3600)
	localNoon := time.Date(2025, 6, 15, 12, 0, 0, 0, plus10)
	assert.True(t, db.SameUTCDay(localNoon, time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC)))

	localEarly := time.Date(2025, 6, 16, 8, 0, 0, 0, plus10) // 22:00 UTC on the 15th
	assert.True(t, db.SameUTCDay(localEarly, base))
}

func TestApplyIncrement(t *testing.T) {
	today := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	t.Run("same day adds to the daily counter", func(t *testing.T) {
		daily, total, err := db.ApplyIncrement("500", "1500", today, "250", today)
		assert.NoError(t, err)
		assert.Equal(t, "750", daily)
		assert.Equal(t, "1750", total)
	})

	t.Run("day rollover re-bases the daily counter", func(t *testing.T) {
		daily, total, err := db.ApplyIncrement("950", "5000", yesterday, "250", today)
		assert.NoError(t, err)
		assert.Equal(t, "250", daily)
		assert.Equal(t, "5250", total)
	})

	t.Run("total always grows across the rollover", func(t *testing.T) {
		_, total, err := db.ApplyIncrement("950", "5000", yesterday, "50", today)
		assert.NoError(t, err)
		assert.Equal(t, "5050", total)
	})

	t.Run("rejects a malformed amount", func(t *testing.T) {
		_, _, err := db.ApplyIncrement("0", "0", today, "12.5", today)
		assert.Error(t, err)
	})
}

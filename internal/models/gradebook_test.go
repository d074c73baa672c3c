package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekOf(t *testing.T) {
	// Wednesday 2026-01-14
	week := WeekOf(time.Date(2026, 1, 14, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, "2026-01-12", week.Monday.Format("2006-01-02"))
	assert.Equal(t, "2026-01-17", week.Saturday.Format("2006-01-02"))

	// Monday maps to itself
	week = WeekOf(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-01-12", week.Monday.Format("2006-01-02"))

	// Sunday belongs to the week it closes
	week = WeekOf(time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-01-12", week.Monday.Format("2006-01-02"))

	days := week.Days()
	assert.Len(t, days, 6)
	assert.Equal(t, "2026-01-12", days[0].Format("2006-01-02"))
	assert.Equal(t, "2026-01-17", days[5].Format("2006-01-02"))
}

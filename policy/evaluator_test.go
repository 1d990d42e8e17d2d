package policy

import (
	"FamilyTime/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
}

func nightPolicy() *models.Policy {
	return &models.Policy{QuietHours: []models.QuietHours{{Start: "22:00", End: "07:00"}}}
}

func TestIsUsageAllowedFailsOpen(t *testing.T) {
	usage := &models.UsageSnapshot{BudgetMinutes: 0, UsedMinutes: 10}

	assert.True(t, IsUsageAllowed(nil, usage, at(23, 0)))
	assert.True(t, IsUsageAllowed(nightPolicy(), nil, at(23, 0)))
}

func TestIsUsageAllowedBudgetExhausted(t *testing.T) {
	cases := []models.UsageSnapshot{
		{BudgetMinutes: 0, UsedMinutes: 0},
		{BudgetMinutes: 60, UsedMinutes: 60},
		{BudgetMinutes: 60, UsedMinutes: 90},
		{BudgetMinutes: -5, UsedMinutes: 0},
	}
	for _, usage := range cases {
		u := usage
		// даже без интервалов тишины
		assert.False(t, IsUsageAllowed(&models.Policy{}, &u, at(12, 0)), "%+v", u)
		assert.False(t, IsUsageAllowed(nightPolicy(), &u, at(12, 0)), "%+v", u)
	}
}

func TestIsUsageAllowedNoQuietHours(t *testing.T) {
	usage := &models.UsageSnapshot{BudgetMinutes: 120, UsedMinutes: 119}
	for hour := 0; hour < 24; hour++ {
		assert.True(t, IsUsageAllowed(&models.Policy{}, usage, at(hour, 30)))
	}
}

func TestIsUsageAllowedSameDayInterval(t *testing.T) {
	p := &models.Policy{QuietHours: []models.QuietHours{{Start: "13:00", End: "15:30"}}}
	usage := &models.UsageSnapshot{BudgetMinutes: 120, UsedMinutes: 0}

	assert.True(t, IsUsageAllowed(p, usage, at(12, 59)))
	assert.False(t, IsUsageAllowed(p, usage, at(13, 0)), "start is inclusive")
	assert.False(t, IsUsageAllowed(p, usage, at(14, 10)))
	assert.False(t, IsUsageAllowed(p, usage, at(15, 29)))
	assert.True(t, IsUsageAllowed(p, usage, at(15, 30)), "end is exclusive")
}

func TestIsUsageAllowedAcrossMidnight(t *testing.T) {
	usage := &models.UsageSnapshot{BudgetMinutes: 120, UsedMinutes: 60}

	assert.False(t, IsUsageAllowed(nightPolicy(), usage, at(23, 0)))
	assert.False(t, IsUsageAllowed(nightPolicy(), usage, at(22, 0)))
	assert.False(t, IsUsageAllowed(nightPolicy(), usage, at(0, 0)))
	assert.False(t, IsUsageAllowed(nightPolicy(), usage, at(6, 59)))
	assert.True(t, IsUsageAllowed(nightPolicy(), usage, at(7, 0)))
	assert.True(t, IsUsageAllowed(nightPolicy(), usage, at(14, 0)))
	assert.True(t, IsUsageAllowed(nightPolicy(), usage, at(21, 59)))
}

func TestIsUsageAllowedFullDayInterval(t *testing.T) {
	p := &models.Policy{QuietHours: []models.QuietHours{{Start: "09:15", End: "09:15"}}}
	usage := &models.UsageSnapshot{BudgetMinutes: 120, UsedMinutes: 0}

	for _, now := range []time.Time{at(0, 0), at(9, 14), at(9, 15), at(18, 0), at(23, 59)} {
		assert.False(t, IsUsageAllowed(p, usage, now))
	}
}

func TestIsUsageAllowedSkipsMalformedIntervals(t *testing.T) {
	p := &models.Policy{QuietHours: []models.QuietHours{
		{Start: "", End: "07:00"},
		{Start: "ab:cd", End: "10:00"},
		{Start: "24:00", End: "10:00"},
		{Start: "10:60", End: "11:00"},
		{Start: "10", End: "11:00"},
		{Start: "18:00", End: "19:00"},
	}}
	usage := &models.UsageSnapshot{BudgetMinutes: 120, UsedMinutes: 0}

	assert.True(t, IsUsageAllowed(p, usage, at(10, 30)))
	assert.False(t, IsUsageAllowed(p, usage, at(18, 30)), "valid interval after malformed ones still applies")
}

func TestIsUsageAllowedOverlappingIntervals(t *testing.T) {
	p := &models.Policy{QuietHours: []models.QuietHours{
		{Start: "20:00", End: "22:00"},
		{Start: "21:00", End: "06:00"},
	}}
	usage := &models.UsageSnapshot{BudgetMinutes: 120, UsedMinutes: 0}

	assert.False(t, IsUsageAllowed(p, usage, at(20, 30)))
	assert.False(t, IsUsageAllowed(p, usage, at(23, 0)))
	assert.True(t, IsUsageAllowed(p, usage, at(6, 0)))
}

func TestIsUsageAllowedUsesInstantLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	usage := &models.UsageSnapshot{BudgetMinutes: 120, UsedMinutes: 0}

	// 18:00 UTC == 23:00 in UTC+5
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC).In(loc)
	assert.False(t, IsUsageAllowed(nightPolicy(), usage, now))
}

func TestParseClock(t *testing.T) {
	minutes, ok := ParseClock("07:05")
	assert.True(t, ok)
	assert.Equal(t, 425, minutes)

	minutes, ok = ParseClock(" 7:5 ")
	assert.True(t, ok)
	assert.Equal(t, 425, minutes)

	_, ok = ParseClock("7.05")
	assert.False(t, ok)
}

func TestValidatePolicy(t *testing.T) {
	p := models.Policy{QuietHours: []models.QuietHours{
		{Start: "22:00", End: "07:00"},
		{Start: "25:00", End: "07:00"},
	}}
	assert.Equal(t, []int{1}, ValidatePolicy(p))
}

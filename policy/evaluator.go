// Package policy decides whether a child's device may be used at a given instant.
package policy

import (
	"FamilyTime/models"
	"strconv"
	"strings"
	"time"
)

// IsUsageAllowed возвращает false, если бюджет исчерпан или now попадает в интервал тишины.
// Отсутствующие policy или usage разрешают использование (fail open).
// Нулевой now означает текущий момент; часы и минуты берутся в локации now.
func IsUsageAllowed(p *models.Policy, usage *models.UsageSnapshot, now time.Time) bool {
	if p == nil || usage == nil {
		return true
	}
	if now.IsZero() {
		now = time.Now()
	}

	// Бюджет проверяется первым, интервалы тишины в этом случае не смотрим
	if usage.BudgetMinutes <= 0 || usage.UsedMinutes >= usage.BudgetMinutes {
		return false
	}

	current := now.Hour()*60 + now.Minute()
	for _, interval := range p.QuietHours {
		if InQuietHours(interval, current) {
			return false
		}
	}
	return true
}

// InQuietHours проверяет минуту от полуночи против одного интервала.
// Некорректный интервал никогда не совпадает.
func InQuietHours(interval models.QuietHours, current int) bool {
	start, ok := ParseClock(interval.Start)
	if !ok {
		return false
	}
	end, ok := ParseClock(interval.End)
	if !ok {
		return false
	}

	switch {
	case start < end:
		return current >= start && current < end
	case start > end:
		// через полночь
		return current >= start || current < end
	default:
		// start == end: весь день
		return true
	}
}

// ParseClock переводит "HH:MM" в минуты от полуночи.
func ParseClock(value string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// ValidatePolicy возвращает индексы некорректных интервалов; при проверке они просто пропускаются.
func ValidatePolicy(p models.Policy) []int {
	var bad []int
	for i, interval := range p.QuietHours {
		_, okStart := ParseClock(interval.Start)
		_, okEnd := ParseClock(interval.End)
		if !okStart || !okEnd {
			bad = append(bad, i)
		}
	}
	return bad
}

package models

import "time"

// DateLayout ключ календарного дня для счетчиков и записей
const DateLayout = "2006-01-02"

// DailyRequestCounter число попыток запроса времени за день
type DailyRequestCounter struct {
	ChildID   string    `json:"childId" gorm:"primaryKey;size:128" firestore:"childId"`
	Date      string    `json:"date" gorm:"primaryKey;size:10" firestore:"date"`
	Count     int       `json:"count" gorm:"not null;default:0" firestore:"count"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// ScreenTimeRecord бюджет и расход ребенка за конкретный день
type ScreenTimeRecord struct {
	ChildID       string    `json:"childId" gorm:"primaryKey;size:128" firestore:"childId"`
	Date          string    `json:"date" gorm:"primaryKey;size:10" firestore:"date"`
	BudgetMinutes int       `json:"budgetMinutes" gorm:"not null" firestore:"budgetMinutes"`
	UsedMinutes   int       `json:"usedMinutes" gorm:"not null;default:0" firestore:"usedMinutes"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (r ScreenTimeRecord) Snapshot() UsageSnapshot {
	return UsageSnapshot{BudgetMinutes: r.BudgetMinutes, UsedMinutes: r.UsedMinutes}
}

// AddCapped прибавляет минуты к бюджету, не превышая maxBudget.
// Возвращает true, если сработало ограничение.
func (r *ScreenTimeRecord) AddCapped(minutes, maxBudget int) bool {
	next := r.BudgetMinutes + minutes
	if next > maxBudget {
		if r.BudgetMinutes < maxBudget {
			r.BudgetMinutes = maxBudget
		}
		return true
	}
	r.BudgetMinutes = next
	return false
}

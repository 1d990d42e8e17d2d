package models

// QuietHours интервал тишины в формате "HH:MM", [Start, End) по локальному времени устройства
type QuietHours struct {
	Start string `json:"start" firestore:"start"`
	End   string `json:"end" firestore:"end"`
}

// Policy правила использования устройства ребенком
type Policy struct {
	QuietHours  []QuietHours `json:"quietHours" firestore:"quietHours"`
	AllowedApps []string     `json:"allowedApps,omitempty" firestore:"allowedApps"` // пока не используется при проверке
}

// UsageSnapshot бюджет и расход экранного времени за текущий день
type UsageSnapshot struct {
	BudgetMinutes int `json:"budgetMinutes"`
	UsedMinutes   int `json:"usedMinutes"`
}

// RemainingMinutes never goes below zero.
func (u UsageSnapshot) RemainingMinutes() int {
	if u.UsedMinutes >= u.BudgetMinutes {
		return 0
	}
	return u.BudgetMinutes - u.UsedMinutes
}

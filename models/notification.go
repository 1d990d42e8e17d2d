package models

const (
	NotifyTimeRequest   = "time_request"
	NotifyDecision      = "time_request_decision"
	NotifyChoreReward   = "chore_reward"
	NotifyBonus         = "bonus"
	NotifyBudgetChanged = "budget_changed"
	NotifyChildBound    = "child_bound"
)

// Notification уведомление для родителя или ребенка; доставка best-effort
type Notification struct {
	RecipientID string            `json:"recipientId"`
	FamilyID    string            `json:"familyId,omitempty"` // firebase_uid родителя
	Kind        string            `json:"kind"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
}

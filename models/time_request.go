package models

import "time"

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusDenied   = "denied"
	RequestStatusExceeded = "exceeded"
)

// TimeRequest запрос ребенка на дополнительные минуты
type TimeRequest struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36" firestore:"id"`
	ChildID          string     `json:"childId" gorm:"index;not null" firestore:"childId"`
	ParentID         string     `json:"parentId" gorm:"index" firestore:"parentId"`
	MinutesRequested int        `json:"minutesRequested" gorm:"not null" firestore:"minutesRequested"`
	Status           string     `json:"status" gorm:"size:16;not null" firestore:"status"`
	Reason           string     `json:"reason,omitempty" firestore:"reason"`
	RequestNumber    int        `json:"requestNumber,omitempty" firestore:"requestNumber"`
	Date             string     `json:"date" gorm:"size:10;index" firestore:"date"`
	CreatedAt        time.Time  `json:"createdAt" firestore:"createdAt"`
	DecidedAt        *time.Time `json:"decidedAt" firestore:"decidedAt"`
	ReviewerID       *string    `json:"reviewerId" firestore:"reviewerId"`
	DecisionReason   string     `json:"decisionReason,omitempty" firestore:"decisionReason"`
}

// IsTerminal: после решения запрос больше не меняется
func (r TimeRequest) IsTerminal() bool {
	return r.Status != RequestStatusPending
}

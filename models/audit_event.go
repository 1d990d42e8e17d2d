package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	AuditTimeRequestSubmitted = "time_request_submitted"
	AuditTimeRequestExceeded  = "time_request_exceeded"
	AuditTimeRequestApproved  = "time_request_approved"
	AuditTimeRequestDenied    = "time_request_denied"
	AuditChoreRewardApplied   = "chore_reward_applied"
	AuditManualBonusGranted   = "manual_bonus_granted"
	AuditUsageReported        = "usage_reported"
)

// AuditEvent append-only запись о каждой операции, изменившей состояние.
// Никогда не обновляется и не удаляется.
type AuditEvent struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36" firestore:"id"`
	Type      string         `json:"type" gorm:"size:64;index;not null" firestore:"type"`
	ActorID   string         `json:"actorId" gorm:"size:128" firestore:"actorId"`
	ChildID   string         `json:"childId" gorm:"size:128;index" firestore:"childId"`
	Payload   datatypes.JSON `json:"payload" firestore:"payload"`
	CreatedAt time.Time      `json:"createdAt" gorm:"index" firestore:"createdAt"`
}

// NewAuditEvent сериализует payload; ошибка маршалинга map невозможна для простых значений
func NewAuditEvent(id, eventType, actorID, childID string, payload map[string]interface{}, at time.Time) AuditEvent {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}
	return AuditEvent{
		ID:        id,
		Type:      eventType,
		ActorID:   actorID,
		ChildID:   childID,
		Payload:   datatypes.JSON(raw),
		CreatedAt: at,
	}
}

package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Child struct {
	ID                 uint           `json:"id" gorm:"primary_key" firestore:"id"`
	Role               string         `json:"role" firestore:"role"`
	Lang               string         `json:"lang" firestore:"lang"`
	Name               string         `json:"name" firestore:"name"`
	FirebaseUID        string         `json:"firebase_uid" gorm:"uniqueIndex" firestore:"firebaseUid"`
	ParentFirebaseUID  string         `json:"parent_firebase_uid" gorm:"index" firestore:"parentFirebaseUid"`
	IsBinded           bool           `json:"is_binded" firestore:"isBinded"`
	DeviceToken        string         `json:"-" firestore:"deviceToken"`
	DailyBudgetMinutes int            `json:"daily_budget_minutes" firestore:"dailyBudgetMinutes"`
	Policy             datatypes.JSON `json:"policy" firestore:"policy"`
	CreatedAt          time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt          time.Time      `json:"updated_at" firestore:"updatedAt"`
}

// DecodePolicy никогда не возвращает nil: профиль без политики (или с поврежденной)
// означает "без тихих часов", и бюджет по-прежнему проверяется
func (c Child) DecodePolicy() *Policy {
	p := &Policy{}
	if len(c.Policy) == 0 {
		return p
	}
	if err := json.Unmarshal(c.Policy, p); err != nil {
		return &Policy{}
	}
	return p
}

// BelongsTo проверяет, принадлежит ли ребенок семье родителя
func (c Child) BelongsTo(parentFirebaseUID string) bool {
	return parentFirebaseUID != "" && c.ParentFirebaseUID == parentFirebaseUID
}

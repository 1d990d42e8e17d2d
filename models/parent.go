package models

import "time"

type Parent struct {
	ID            uint       `json:"id" gorm:"primary_key" firestore:"id"`
	Lang          string     `json:"lang" firestore:"lang"`
	Name          string     `json:"name" firestore:"name"`
	Email         string     `json:"email" firestore:"email"`
	FirebaseUID   string     `json:"firebase_uid" gorm:"uniqueIndex" firestore:"firebaseUid"`
	Role          string     `json:"role" firestore:"role"`
	DeviceToken   string     `json:"-" firestore:"deviceToken"`
	Code          string     `json:"code" gorm:"size:4" firestore:"code"`       // Ограничиваем длину кода до 4 символов
	CodeExpiresAt *time.Time `json:"code_expires_at" firestore:"codeExpiresAt"` // Время истечения кода
}

func (p *Parent) IsCodeValid(now time.Time) bool {
	return p.Code != "" && p.CodeExpiresAt != nil && now.Before(*p.CodeExpiresAt)
}

// RefreshCode обновляет код привязки со сроком действия 24 часа
func (p *Parent) RefreshCode(code string, now time.Time) {
	p.Code = code
	expiresAt := now.Add(24 * time.Hour)
	p.CodeExpiresAt = &expiresAt
}

package interfaces

import (
	"FamilyTime/models"
	"context"
	"time"
)

// NotificationSink доставляет уведомление (FCM, webhook, websocket).
// Ошибка доставки никогда не откатывает операцию леджера.
type NotificationSink interface {
	Notify(ctx context.Context, n models.Notification) error
}

// WebSocketHubService определяет интерфейс для WebSocket хаба
type WebSocketHubService interface {
	BroadcastToFamily(familyID string, message WebSocketMessage)
}

// WebSocketMessage определяет структуру сообщения для WebSocket
type WebSocketMessage struct {
	Type        string            `json:"type"`
	FamilyID    string            `json:"family_id,omitempty"`
	RecipientID string            `json:"recipient_id,omitempty"`
	Title       string            `json:"title,omitempty"`
	Body        string            `json:"body,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

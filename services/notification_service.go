package services

import (
	"FamilyTime/config"
	"FamilyTime/interfaces"
	"FamilyTime/models"
	"FamilyTime/repositories"
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
)

// MessageSender часть messaging.Client, которой пользуется FCMSink
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSink отправляет push-уведомления через Firebase Cloud Messaging
type FCMSink struct {
	FCMClient  MessageSender
	ParentRepo repositories.ParentRepository
	ChildRepo  repositories.ChildRepository
}

// NewFCMSink создает sink поверх Firebase приложения
func NewFCMSink(app *firebase.App, parentRepo repositories.ParentRepository, childRepo repositories.ChildRepository) (*FCMSink, error) {
	client, err := app.Messaging(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error initializing FCM client: %w", err)
	}
	return &FCMSink{FCMClient: client, ParentRepo: parentRepo, ChildRepo: childRepo}, nil
}

// deviceToken ищет получателя среди детей, затем среди родителей
func (s *FCMSink) deviceToken(uid string) (string, error) {
	child, err := s.ChildRepo.FindByFirebaseUID(uid)
	if err == nil {
		return child.DeviceToken, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return "", err
	}
	parent, err := s.ParentRepo.FindByFirebaseUID(uid)
	if err != nil {
		return "", fmt.Errorf("recipient not found: %w", err)
	}
	return parent.DeviceToken, nil
}

func (s *FCMSink) Notify(ctx context.Context, n models.Notification) error {
	token, err := s.deviceToken(n.RecipientID)
	if err != nil {
		return err
	}
	if token == "" {
		return nil // Пропускаем отправку, если нет токена устройства
	}

	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	data["kind"] = n.Kind

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data:  data,
		Token: token,
	}
	resp, err := s.FCMClient.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	config.Log.Debugf("[FCM] Уведомление отправлено. ID: %s, Kind: %s", resp, n.Kind)
	return nil
}

// WebhookSink публикует уведомление POST-запросом с повторами
type WebhookSink struct {
	URL    string
	Client *retryablehttp.Client
}

func NewWebhookSink(url string) *WebhookSink {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = config.Log
	return &WebhookSink{URL: url, Client: client}
}

func (s *WebhookSink) Notify(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// HubSink рассылает уведомление подключенным устройствам семьи
type HubSink struct {
	Hub interfaces.WebSocketHubService
	Now func() time.Time
}

func NewHubSink(hub interfaces.WebSocketHubService) *HubSink {
	return &HubSink{Hub: hub, Now: time.Now}
}

func (s *HubSink) Notify(_ context.Context, n models.Notification) error {
	if s.Hub == nil {
		return errors.New("websocket hub is not configured")
	}
	if n.FamilyID == "" {
		return nil
	}
	s.Hub.BroadcastToFamily(n.FamilyID, interfaces.WebSocketMessage{
		Type:        n.Kind,
		FamilyID:    n.FamilyID,
		RecipientID: n.RecipientID,
		Title:       n.Title,
		Body:        n.Body,
		Data:        n.Data,
		Timestamp:   s.Now(),
	})
	return nil
}

// MultiSink доставляет во все sinks; ошибки объединяются
type MultiSink []interfaces.NotificationSink

func (m MultiSink) Notify(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

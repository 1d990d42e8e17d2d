package cmd

import (
	"FamilyTime/config"
	"FamilyTime/interfaces"
	"FamilyTime/middlewares"
	"FamilyTime/repositories"
	"FamilyTime/repositories/firestore"
	"FamilyTime/repositories/impl"
	"FamilyTime/repositories/memory"
	"FamilyTime/services"
	"FamilyTime/websocket"
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// backend собранные хранилища и сервисы, общие для serve, lambda и guard
type backend struct {
	cfg      config.Config
	firebase *config.FirebaseClients

	store      repositories.LedgerStore
	childRepo  repositories.ChildRepository
	parentRepo repositories.ParentRepository
	choreRepo  repositories.ChoreRepository

	timeRequests *services.TimeRequestService
	awards       *services.AwardService
	usage        *services.UsageService
	chores       *services.ChoreService
	pairing      *services.PairingService
	family       *services.FamilyService
	voice        *services.VoiceDispatchService
}

func (b *backend) Close() {
	if err := b.firebase.Close(); err != nil {
		config.Log.Warnf("Error closing Firestore client: %v", err)
	}
}

func needsFirebase(cfg config.Config) bool {
	return cfg.StoreDriver == config.StoreFirestore ||
		cfg.AuthMode == config.AuthModeFirebase ||
		cfg.FirebaseCredentialsPath != ""
}

// newBackend открывает хранилище по STORE_DRIVER; hub может быть nil (lambda, guard)
func newBackend(ctx context.Context, cfg config.Config, hub *websocket.Hub) (*backend, error) {
	b := &backend{cfg: cfg}

	if needsFirebase(cfg) {
		clients, err := config.InitFirebase(ctx, cfg, cfg.StoreDriver == config.StoreFirestore)
		if err != nil {
			return nil, err
		}
		b.firebase = clients
	}

	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := config.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		b.store = impl.NewLedgerRepository(db)
		b.childRepo = impl.NewChildRepository(db)
		b.parentRepo = impl.NewParentRepository(db)
		b.choreRepo = impl.NewChoreRepository(db)
	case config.StoreFirestore:
		client := b.firebase.Firestore
		b.store = firestore.NewLedgerStore(client)
		b.childRepo = firestore.NewChildRepository(client)
		b.parentRepo = firestore.NewParentRepository(client)
		b.choreRepo = firestore.NewChoreRepository(client)
	case config.StoreMemory:
		config.Log.Warn("Using in-memory store, data is lost on restart")
		b.store = memory.NewLedgerStore()
		b.childRepo = memory.NewChildRepository()
		b.parentRepo = memory.NewParentRepository()
		b.choreRepo = memory.NewChoreRepository()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	deps := services.LedgerDeps{
		Store:    b.store,
		Children: b.childRepo,
		Notifier: b.notifier(hub),
		Limits: services.LedgerLimits{
			DailyRequestCap:      cfg.DailyRequestLimit,
			MaxRequestMinutes:    cfg.MaxRequestMinutes,
			MaxDailyBudget:       cfg.MaxDailyBudget,
			DefaultBudgetMinutes: cfg.DefaultBudgetMinutes,
		},
		Location: location,
	}

	b.timeRequests = services.NewTimeRequestService(deps)
	b.awards = services.NewAwardService(deps)
	b.usage = services.NewUsageService(deps)
	b.chores = services.NewChoreService(deps, b.choreRepo, b.awards)
	b.pairing = services.NewPairingService(b.parentRepo)
	b.family = services.NewFamilyService(deps, b.parentRepo)
	b.voice = services.NewVoiceDispatchService(b.childRepo, b.pairing, b.chores, b.usage, b.awards)

	config.Log.WithFields(logrus.Fields{
		"store":    cfg.StoreDriver,
		"auth":     cfg.AuthMode,
		"timezone": location.String(),
	}).Info("Backend initialized")
	return b, nil
}

func (b *backend) notifier(hub *websocket.Hub) interfaces.NotificationSink {
	var sinks services.MultiSink
	if b.firebase != nil {
		fcm, err := services.NewFCMSink(b.firebase.App, b.parentRepo, b.childRepo)
		if err != nil {
			config.Log.Warnf("[FCM] push notifications disabled: %v", err)
		} else {
			sinks = append(sinks, fcm)
		}
	}
	if b.cfg.NotifyWebhookURL != "" {
		sinks = append(sinks, services.NewWebhookSink(b.cfg.NotifyWebhookURL))
	}
	if hub != nil {
		sinks = append(sinks, services.NewHubSink(hub))
	}
	if len(sinks) == 0 {
		return nil
	}
	return sinks
}

// authMiddleware JWT или Firebase ID токены в зависимости от AUTH_MODE
func (b *backend) authMiddleware() (gin.HandlerFunc, error) {
	switch b.cfg.AuthMode {
	case config.AuthModeJWT:
		return middlewares.AuthMiddleware([]byte(b.cfg.JWTSecret)), nil
	case config.AuthModeFirebase:
		if b.firebase == nil || b.firebase.Auth == nil {
			return nil, errors.New("firebase auth is not initialized")
		}
		return middlewares.FirebaseAuthMiddleware(b.firebase.Auth), nil
	}
	return nil, fmt.Errorf("unknown auth mode %q", b.cfg.AuthMode)
}

package cmd

import (
	"FamilyTime/config"
	"FamilyTime/models"
	"FamilyTime/services"
	"FamilyTime/websocket"
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	v := viper.New()
	v.Set("store_driver", config.StoreMemory)
	v.Set("jwt_secret", "test-secret")
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func TestNeedsFirebase(t *testing.T) {
	assert.False(t, needsFirebase(config.Config{StoreDriver: config.StoreMemory, AuthMode: config.AuthModeJWT}))
	assert.True(t, needsFirebase(config.Config{StoreDriver: config.StoreFirestore, AuthMode: config.AuthModeJWT}))
	assert.True(t, needsFirebase(config.Config{StoreDriver: config.StorePostgres, AuthMode: config.AuthModeFirebase}))
	assert.True(t, needsFirebase(config.Config{StoreDriver: config.StoreMemory, AuthMode: config.AuthModeJWT, FirebaseCredentialsPath: "sa.json"}))
}

func TestNewBackendWithMemoryStore(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	b, err := newBackend(context.Background(), memoryConfig(t), hub)
	require.NoError(t, err)
	defer b.Close()

	auth, err := b.authMiddleware()
	require.NoError(t, err)
	assert.NotNil(t, auth)

	require.NoError(t, b.childRepo.Save(models.Child{
		Name:              "Alex",
		FirebaseUID:       "child-1",
		ParentFirebaseUID: "parent-1",
	}))
	parent := &models.Session{UID: "parent-1", Role: models.RoleParent}

	result, err := b.awards.GrantBonusTime(context.Background(), parent, services.GrantBonusInput{ChildID: "child-1", Minutes: 30})
	require.NoError(t, err)
	assert.Equal(t, 150, result.NewBudgetMinutes)

	state, err := b.usage.LockState(context.Background(), parent, "child-1", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 150, state.BudgetMinutes)
}

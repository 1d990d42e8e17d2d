package cmd

import (
	"FamilyTime/config"
	"FamilyTime/guard"
	"FamilyTime/models"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var guardCmd = &cobra.Command{
	Use:   "guard <child-firebase-uid>",
	Short: "Poll a child's budget and policy and report overlay lock changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		interval, _ := cmd.Flags().GetDuration("interval")
		childID := args[0]

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		b, err := newBackend(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer b.Close()

		log := config.Log.WithField("child", childID)
		overlay := guard.NewOverlayGuard(
			guard.WithDelay(cfg.GuardDebounce),
			guard.WithOnChange(func(locked bool) {
				if locked {
					log.Info("[GUARD] Overlay shown")
				} else {
					log.Info("[GUARD] Overlay hidden")
				}
			}),
		)
		defer overlay.Close()

		// Сессия устройства ребенка: видит только свою семью
		session := &models.Session{UID: childID, Role: models.RoleChild}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := pollOnce(ctx, b, session, overlay); err != nil {
				log.Warnf("[GUARD] poll failed: %v", err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

func pollOnce(ctx context.Context, b *backend, session *models.Session, overlay *guard.OverlayGuard) error {
	child, err := b.childRepo.FindByFirebaseUID(session.UID)
	if err != nil {
		return err
	}
	state, err := b.usage.LockState(ctx, session, child.FirebaseUID, time.Time{})
	if err != nil {
		return err
	}
	location, err := b.cfg.Location()
	if err != nil {
		return err
	}
	config.Log.WithFields(logrus.Fields{
		"child":     child.FirebaseUID,
		"budget":    state.BudgetMinutes,
		"used":      state.UsedMinutes,
		"remaining": state.RemainingMinutes,
	}).Debug("[GUARD] usage polled")

	overlay.Update(child.DecodePolicy(), &models.UsageSnapshot{
		BudgetMinutes: state.BudgetMinutes,
		UsedMinutes:   state.UsedMinutes,
	}, time.Now().In(location))
	return nil
}

func init() {
	rootCmd.AddCommand(guardCmd)
	guardCmd.Flags().Duration("interval", 30*time.Second, "Polling interval")
}

package cmd

import (
	"FamilyTime/config"
	"FamilyTime/controllers"
	"FamilyTime/routes"
	"FamilyTime/websocket"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and websocket hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}
		migrate, _ := cmd.Flags().GetBool("migrate")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Stop()

		b, err := newBackend(ctx, cfg, hub)
		if err != nil {
			return err
		}
		defer b.Close()

		if migrate && config.DB != nil {
			if err := config.Migrate(config.DB); err != nil {
				return err
			}
		}

		auth, err := b.authMiddleware()
		if err != nil {
			return err
		}

		// Set services in controllers
		controllers.SetTimeRequestService(b.timeRequests)
		controllers.SetAwardService(b.awards)
		controllers.SetUsageService(b.usage)
		controllers.SetChoreService(b.chores)
		controllers.SetPairingService(b.pairing)
		controllers.SetFamilyService(b.family)
		controllers.SetVoiceService(b.voice)
		controllers.SetChildRepository(b.childRepo)
		controllers.SetWebSocketHub(hub)

		r := gin.Default()
		routes.RegisterRoutes(r, auth)

		server := &http.Server{Addr: ":" + cfg.Port, Handler: r}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		serverErr := make(chan error, 1)
		go func() {
			config.Log.Infof("Starting server on :%s", cfg.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		select {
		case sig := <-sigChan:
			config.Log.Infof("Received %s, shutting down", sig)
		case err := <-serverErr:
			return err
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			config.Log.Errorf("Server shutdown error: %v", err)
		}
		config.Log.Info("Shutdown complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "HTTP listen port (overrides PORT)")
	serveCmd.Flags().Bool("migrate", false, "Run gorm migrations before serving (postgres store only)")
}

package routes

import (
	"FamilyTime/controllers"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты; auth - JWT или Firebase middleware
func RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	// Public routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/pairing/:code", controllers.CheckPairingCode)

	// Маршрут WebSocket
	r.GET("/ws", auth, controllers.ServeWs)

	// Protected routes
	ledger := r.Group("/ledger")
	ledger.Use(auth)
	{
		ledger.POST("/requests", controllers.SubmitRequest)
		ledger.POST("/requests/:id/decision", controllers.DecideRequest)
		ledger.GET("/children/:child_id/requests", controllers.ListRequests)
		ledger.POST("/bonus", controllers.GrantBonus)
		ledger.GET("/children/:child_id/audit", controllers.AuditTrail)
	}

	children := r.Group("/children")
	children.Use(auth)
	{
		children.POST("/:child_id/usage", controllers.ReportUsage)
		children.GET("/:child_id/lock-state", controllers.LockState)
	}

	chores := r.Group("/")
	chores.Use(auth)
	{
		chores.POST("/chores", controllers.AssignChore)
		chores.POST("/chores/:id/submissions", controllers.SubmitChore)
		chores.POST("/submissions/:id/verdict", controllers.RecordVerdict)
	}

	family := r.Group("/family")
	family.Use(auth)
	{
		family.POST("/bind", controllers.BindChild)
		family.GET("/children", controllers.ListChildren)
		family.PATCH("/children/:child_id", controllers.UpdateChildSettings)
		family.POST("/children/:child_id/unbind", controllers.UnbindChild)
		family.POST("/devices", controllers.RegisterDevice)
	}

	parents := r.Group("/parents")
	parents.Use(auth)
	{
		parents.GET("/pairing-code", controllers.GetPairingCode)
	}

	voice := r.Group("/voice")
	voice.Use(auth)
	{
		voice.POST("/dispatch", controllers.DispatchVoice)
	}
}

package controllers

import (
	"FamilyTime/middlewares"
	"FamilyTime/services"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var usageService *services.UsageService

func SetUsageService(service *services.UsageService) {
	usageService = service
}

func ReportUsage(c *gin.Context) {
	var input struct {
		UsedMinutes *int `json:"usedMinutes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.UsedMinutes == nil {
		respondInvalid(c, "usedMinutes is required")
		return
	}
	state, err := usageService.ReportUsage(c.Request.Context(), middlewares.SessionFrom(c), services.ReportUsageInput{
		ChildID:     c.Param("child_id"),
		UsedMinutes: *input.UsedMinutes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// LockState принимает необязательный ?at=RFC3339 для проверки на конкретный момент
func LockState(c *gin.Context) {
	var at time.Time
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondInvalid(c, "at must be RFC3339")
			return
		}
		at = parsed
	}
	state, err := usageService.LockState(c.Request.Context(), middlewares.SessionFrom(c), c.Param("child_id"), at)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

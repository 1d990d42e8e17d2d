package controllers

import (
	"FamilyTime/middlewares"
	"FamilyTime/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

var timeRequestService *services.TimeRequestService
var awardService *services.AwardService

func SetTimeRequestService(service *services.TimeRequestService) {
	timeRequestService = service
}

func SetAwardService(service *services.AwardService) {
	awardService = service
}

func SubmitRequest(c *gin.Context) {
	var input services.SubmitRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondInvalid(c, "Invalid request body")
		return
	}
	result, err := timeRequestService.SubmitRequest(c.Request.Context(), middlewares.SessionFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func DecideRequest(c *gin.Context) {
	var input struct {
		Approved *bool  `json:"approved"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Approved == nil {
		respondInvalid(c, "approved is required")
		return
	}
	result, err := timeRequestService.DecideRequest(c.Request.Context(), middlewares.SessionFrom(c), services.DecideRequestInput{
		RequestID: c.Param("id"),
		Approved:  *input.Approved,
		Reason:    input.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func ListRequests(c *gin.Context) {
	requests, err := timeRequestService.ListRequests(c.Request.Context(), middlewares.SessionFrom(c),
		c.Param("child_id"), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": requests})
}

func GrantBonus(c *gin.Context) {
	var input services.GrantBonusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondInvalid(c, "Invalid request body")
		return
	}
	result, err := awardService.GrantBonusTime(c.Request.Context(), middlewares.SessionFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func AuditTrail(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	events, err := usageService.AuditTrail(c.Request.Context(), middlewares.SessionFrom(c), c.Param("child_id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": events})
}

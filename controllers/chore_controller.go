package controllers

import (
	"FamilyTime/middlewares"
	"FamilyTime/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

var choreService *services.ChoreService

func SetChoreService(service *services.ChoreService) {
	choreService = service
}

func AssignChore(c *gin.Context) {
	var input services.AssignChoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondInvalid(c, "Invalid request body")
		return
	}
	chore, err := choreService.AssignChore(c.Request.Context(), middlewares.SessionFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": chore})
}

func SubmitChore(c *gin.Context) {
	submission, err := choreService.SubmitChore(c.Request.Context(), middlewares.SessionFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": submission})
}

func RecordVerdict(c *gin.Context) {
	var input struct {
		Verdict string `json:"verdict"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondInvalid(c, "Invalid request body")
		return
	}
	result, err := choreService.RecordVerdict(c.Request.Context(), middlewares.SessionFrom(c), services.RecordVerdictInput{
		SubmissionID: c.Param("id"),
		Verdict:      input.Verdict,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

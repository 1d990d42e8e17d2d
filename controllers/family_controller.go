package controllers

import (
	"FamilyTime/middlewares"
	"FamilyTime/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

var familyService *services.FamilyService

func SetFamilyService(service *services.FamilyService) {
	familyService = service
}

// BindChild привязка устройства ребенка по коду родителя
func BindChild(c *gin.Context) {
	var input services.BindChildInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondInvalid(c, "Invalid request body")
		return
	}
	child, err := familyService.BindChild(c.Request.Context(), middlewares.SessionFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Child bound successfully", "data": child})
}

func UnbindChild(c *gin.Context) {
	child, err := familyService.UnbindChild(middlewares.SessionFrom(c), c.Param("child_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Child unbound successfully", "data": child})
}

func ListChildren(c *gin.Context) {
	children, err := familyService.ListChildren(middlewares.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": children})
}

func UpdateChildSettings(c *gin.Context) {
	var input services.ChildSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondInvalid(c, "Invalid request body")
		return
	}
	child, err := familyService.UpdateChildSettings(middlewares.SessionFrom(c), c.Param("child_id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Child updated successfully", "data": child})
}

func RegisterDevice(c *gin.Context) {
	var input struct {
		DeviceToken string `json:"deviceToken"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondInvalid(c, "Invalid request body")
		return
	}
	if err := familyService.RegisterDevice(middlewares.SessionFrom(c), input.DeviceToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

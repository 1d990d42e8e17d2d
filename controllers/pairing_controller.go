package controllers

import (
	"FamilyTime/middlewares"
	"FamilyTime/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

var pairingService *services.PairingService

func SetPairingService(service *services.PairingService) {
	pairingService = service
}

// GetPairingCode возвращает действующий код родителя, выпуская новый при истечении
func GetPairingCode(c *gin.Context) {
	session := middlewares.SessionFrom(c)
	if !session.IsParent() {
		respondError(c, &services.LedgerError{Code: services.CodePermissionDenied, Message: "Only parents have a pairing code"})
		return
	}
	parent, err := pairingService.EnsureValidParentCode(session.UID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "code": parent.Code, "expiresAt": parent.CodeExpiresAt})
}

func CheckPairingCode(c *gin.Context) {
	code := c.Param("code")
	if len(code) != 4 {
		respondInvalid(c, "code must have 4 digits")
		return
	}
	valid, err := pairingService.IsParentCodeValid(code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "valid": valid})
}


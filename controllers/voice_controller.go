package controllers

import (
	"FamilyTime/middlewares"
	"FamilyTime/services"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

var voiceService *services.VoiceDispatchService

func SetVoiceService(service *services.VoiceDispatchService) {
	voiceService = service
}

// DispatchVoice всегда отвечает фразой say, даже при ошибке
func DispatchVoice(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
	if err != nil {
		respondVoice(c, services.VoiceResult{Say: "Sorry, I couldn't read that.", Code: services.CodeInvalidArgument})
		return
	}
	cmd, err := services.ParseVoiceCommand(raw)
	if err != nil {
		respondVoice(c, services.VoiceResult{Say: "Sorry, I didn't catch that.", Code: services.CodeOf(err)})
		return
	}
	respondVoice(c, voiceService.Dispatch(c.Request.Context(), middlewares.SessionFrom(c), cmd))
}

func respondVoice(c *gin.Context, result services.VoiceResult) {
	status := http.StatusOK
	if !result.OK {
		status = result.Code.HTTPStatus()
	}
	c.JSON(status, result)
}

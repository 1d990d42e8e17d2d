package controllers

import (
	"FamilyTime/config"
	"FamilyTime/services"

	"github.com/gin-gonic/gin"
)

// respondError пишет {ok:false, code, error}; статус берется из кода ошибки
func respondError(c *gin.Context, err error) {
	code := services.CodeOf(err)
	if code == services.CodeInternal {
		config.Log.WithField("path", c.FullPath()).Errorf("[HTTP] %v", err)
	}
	c.JSON(code.HTTPStatus(), gin.H{
		"ok":    false,
		"code":  code,
		"error": services.MessageOf(err),
	})
}

func respondInvalid(c *gin.Context, message string) {
	respondError(c, &services.LedgerError{Code: services.CodeInvalidArgument, Message: message})
}

package controllers

import (
	"FamilyTime/middlewares"
	"FamilyTime/repositories"
	"FamilyTime/services"
	"FamilyTime/websocket"

	"github.com/gin-gonic/gin"
)

var WebSocketHub *websocket.Hub

func SetWebSocketHub(hub *websocket.Hub) {
	WebSocketHub = hub
}

// ServeWs подключает устройство к каналу семьи. Родитель слушает свою семью,
// ребенок - семью своего родителя.
func ServeWs(c *gin.Context) {
	session := middlewares.SessionFrom(c)
	if session == nil {
		respondError(c, services.ErrUnauthenticated)
		return
	}

	familyID := session.UID
	if !session.IsParent() {
		child, err := childRepo.FindByFirebaseUID(session.UID)
		if err != nil {
			respondError(c, &services.LedgerError{Code: services.CodeNotFound, Message: "Child not found"})
			return
		}
		familyID = child.ParentFirebaseUID
	}

	websocket.ServeWs(WebSocketHub, c.Writer, c.Request, session.UID, familyID, session.Role)
}

var childRepo repositories.ChildRepository

func SetChildRepository(repo repositories.ChildRepository) {
	childRepo = repo
}

package websocket

import (
	"FamilyTime/config"
	"FamilyTime/interfaces"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Время ожидания записи сообщения
	writeWait = 10 * time.Second

	// Время ожидания чтения сообщений от клиента
	pongWait = 60 * time.Second

	// Период отправки пингов, должен быть меньше pongWait
	pingPeriod = (pongWait * 9) / 10

	// Клиент только слушает; входящие сообщения короткие
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Разрешаем все origins, клиенты - мобильные приложения
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client одно подключенное устройство семьи
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	UserID   string // firebase_uid
	FamilyID string // firebase_uid родителя
	Role     string
	send     chan interfaces.WebSocketMessage
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, familyID, role string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		UserID:   userID,
		FamilyID: familyID,
		Role:     role,
		send:     make(chan interfaces.WebSocketMessage, 64),
	}
}

// ServeWs апгрейдит соединение и запускает насосы клиента
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, userID, familyID, role string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		config.Log.Warnf("[WS] Upgrade failed for %s: %v", userID, err)
		return
	}
	client := NewClient(hub, conn, userID, familyID, role)
	hub.Register(client)

	config.Log.Debugf("[WS] %s (%s) подключен к семье %s", userID, role, familyID)
	go client.WritePump()
	go client.ReadPump()
}

// ReadPump читает только control-фреймы и закрытие; полезная нагрузка игнорируется
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
		config.Log.Debugf("[WS] Соединение закрыто для пользователя %s", c.UserID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				config.Log.Warnf("[WS] Ошибка при чтении сообщения: %v", err)
			}
			return
		}
	}
}

// WritePump отправляет сообщения клиенту
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрыт хабом
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				config.Log.Warnf("[WS] Error writing message to client %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

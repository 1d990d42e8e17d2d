package websocket

import (
	"FamilyTime/config"
	"FamilyTime/interfaces"
	"sync"
)

// Hub maintains the set of active clients and broadcasts messages to the clients.
type Hub struct {
	// Registered clients by family ID (firebase_uid of parent)
	clients map[string]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Send message to specific family
	broadcast chan *Message

	done chan struct{}
	once sync.Once

	// Mutex for thread-safe operations
	mu sync.Mutex
}

type Message struct {
	FamilyID string
	Data     interfaces.WebSocketMessage
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
	}
}

// Register регистрирует нового клиента в хабе
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister отменяет регистрацию клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToFamily ставит сообщение в очередь; при переполнении сообщение теряется
func (h *Hub) BroadcastToFamily(familyID string, message interfaces.WebSocketMessage) {
	select {
	case h.broadcast <- &Message{FamilyID: familyID, Data: message}:
	case <-h.done:
	default:
		config.Log.Warnf("[WS] Очередь переполнена, сообщение %s для семьи %s отброшено", message.Type, familyID)
	}
}

// FamilySize число подключенных устройств семьи
func (h *Hub) FamilySize(familyID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[familyID])
}

// Stop завершает Run; повторный вызов безопасен
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for familyID, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.clients, familyID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.FamilyID]; !ok {
				h.clients[client.FamilyID] = make(map[*Client]bool)
			}
			h.clients[client.FamilyID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.FamilyID][client]; ok {
				delete(h.clients[client.FamilyID], client)
				close(client.send)
				if len(h.clients[client.FamilyID]) == 0 {
					delete(h.clients, client.FamilyID)
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.clients[message.FamilyID]; ok {
				for client := range clients {
					select {
					case client.send <- message.Data:
					default:
						close(client.send)
						delete(clients, client)
						if len(clients) == 0 {
							delete(h.clients, message.FamilyID)
						}
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

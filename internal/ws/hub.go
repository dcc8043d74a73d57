package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-inventory-bom/pkg/logger"
)

// Client is one websocket connection bound to the company of the user that opened it.
type Client struct {
	Conn      *websocket.Conn
	CompanyID uuid.UUID
}

// Message is delivered only to clients of CompanyID.
type Message struct {
	CompanyID uuid.UUID
	Data      []byte
}

type Hub struct {
	Clients    map[uuid.UUID]map[*websocket.Conn]bool
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan Message
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[uuid.UUID]map[*websocket.Conn]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Message, 64),
	}
}

func (h *Hub) Run() {
	log := logger.GetLogger()
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			conns, ok := h.Clients[client.CompanyID]
			if !ok {
				conns = make(map[*websocket.Conn]bool)
				h.Clients[client.CompanyID] = conns
			}
			conns[client.Conn] = true
			h.mutex.Unlock()
			log.WithFields(logrus.Fields{"company_id": client.CompanyID}).Info("websocket client connected")

		case client := <-h.Unregister:
			h.mutex.Lock()
			if conns, ok := h.Clients[client.CompanyID]; ok {
				if _, ok := conns[client.Conn]; ok {
					delete(conns, client.Conn)
					client.Conn.Close()
				}
				if len(conns) == 0 {
					delete(h.Clients, client.CompanyID)
				}
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients[message.CompanyID] {
				if err := conn.WriteMessage(websocket.TextMessage, message.Data); err != nil {
					conn.Close()
					delete(h.Clients[message.CompanyID], conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Notify queues payload for every client of companyID.
func (h *Hub) Notify(companyID uuid.UUID, payload map[string]interface{}) {
	msg, err := json.Marshal(payload)
	if err != nil {
		logger.LogError(logger.GetLogger(), "ws", "Notify", "marshal payload", payload["type"], err)
		return
	}
	h.Broadcast <- Message{CompanyID: companyID, Data: msg}
}

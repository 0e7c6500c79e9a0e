package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event types
const (
	EventBookingCreate = "booking_created"
	EventBookingUpdate = "booking_updated"
	EventBookingStatus = "booking_status"
	EventTableCreate   = "table_create"
	EventTableUpdate   = "table_update"
	EventTableDelete   = "table_delete"
	EventOrderUpdate   = "order_update"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds the dashboard connections of staff and admins and fans every
// message out to all of them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]string),
		log:     log,
	}
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// BroadcastEvent satisfies services.Broadcaster.
func (h *Hub) BroadcastEvent(event string, data interface{}) {
	h.Broadcast(Message{Event: event, Data: data})
}

// Broadcast sends msg to every client. Writes happen under the hub lock, which
// keeps to gorilla's one-writer-per-connection rule. Clients that fail a
// write are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.log.Debugf("Broadcasting %s to %d clients", msg.Event, len(h.clients))
	for conn, role := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Warnf("Dropping %s client after write error: %v", role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins for local development
	},
}

// WSMessage is one event pushed to connected observers over /ws/events.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ServiceEventPayload mirrors internal/database.Event for the wire.
type ServiceEventPayload struct {
	Entity string `json:"entity"`
	Key    string `json:"key"`
	Result string `json:"result"`
	Field  string `json:"field,omitempty"`
}

// ChannelPayload mirrors internal/radio.Channel for the wire.
type ChannelPayload struct {
	SubchannelID uint8  `json:"subchannelId"`
	ServiceRef   uint32 `json:"serviceRef"`
	ComponentID  uint8  `json:"componentId"`
}

// LabelPayload mirrors internal/pad.LabelEvent for the wire.
type LabelPayload struct {
	Text    string `json:"text"`
	Charset uint8  `json:"charset"`
}

// MOTPayload mirrors internal/pad.MOTEntity for the wire, omitting Body
// (the scraper persists it to disk; the bridge only announces it).
type MOTPayload struct {
	TransportID    uint16 `json:"transportId"`
	ContentType    uint8  `json:"contentType"`
	ContentSubType uint16 `json:"contentSubType"`
	ContentName    string `json:"contentName"`
	Size           int    `json:"size"`
}

// WSHub fans out receiver observer events to every connected WebSocket
// client. It is a read-only broadcast bridge: unlike the teacher's hub,
// clients never send commands back, since the receiver has no two-way
// control surface over the air.
type WSHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients: make(map[*websocket.Conn]bool),
	}
}

// AddClient registers a new WebSocket connection.
func (h *WSHub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	log.Printf("WebSocket client connected (%d total)", len(h.clients))
}

// RemoveClient removes a WebSocket connection.
func (h *WSHub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
	log.Printf("WebSocket client disconnected (%d remaining)", len(h.clients))
}

// Broadcast sends a message to all connected clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("WebSocket marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("WebSocket write error: %v", err)
			go h.RemoveClient(conn)
		}
	}
}

// BroadcastServiceEvent announces a database.Event (spec.md §4.6's
// service/ensemble update stream).
func (h *WSHub) BroadcastServiceEvent(p ServiceEventPayload) {
	h.Broadcast(WSMessage{Type: "service", Payload: p})
}

// BroadcastChannel announces a newly bound DAB+ audio subchannel.
func (h *WSHub) BroadcastChannel(p ChannelPayload) {
	h.Broadcast(WSMessage{Type: "channel", Payload: p})
}

// BroadcastLabel announces a dynamic label change.
func (h *WSHub) BroadcastLabel(p LabelPayload) {
	h.Broadcast(WSMessage{Type: "label", Payload: p})
}

// BroadcastMOT announces a reassembled MOT/slideshow object.
func (h *WSHub) BroadcastMOT(p MOTPayload) {
	h.Broadcast(WSMessage{Type: "mot", Payload: p})
}

// BroadcastLog sends a log message to all clients.
func (h *WSHub) BroadcastLog(level, message string) {
	h.Broadcast(WSMessage{
		Type: "log",
		Payload: map[string]string{
			"level":   level,
			"message": message,
		},
	})
}

package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/jeongseonghan/dabradio/internal/audio"
	"github.com/jeongseonghan/dabradio/internal/database"
	"github.com/jeongseonghan/dabradio/internal/pad"
	"github.com/jeongseonghan/dabradio/internal/radio"
)

// Handlers holds the HTTP/WebSocket handlers for the read-only observer
// bridge. Adapted from the teacher's upload/send/receive/download
// handlers: those endpoints drove a two-way ARQ file transfer that has no
// equivalent here, since a DAB receiver only ever observes a broadcast.
// What survives is the wiring style — one method per route, JSON
// responses, a shared WSHub for push notifications — retargeted at
// radio.Radio's observer events.
type Handlers struct {
	rad   *radio.Radio
	wsHub *WSHub

	mu       sync.Mutex
	channels int
	lastMOT  string
}

// NewHandlers creates handlers bridging rad's observer events onto wsHub.
// Subscriptions are installed immediately so no event fires before a
// client connects races with route setup.
func NewHandlers(rad *radio.Radio) *Handlers {
	h := &Handlers{
		rad:   rad,
		wsHub: NewWSHub(),
	}
	h.wireObservers()
	return h
}

func (h *Handlers) wireObservers() {
	h.rad.OnService.Subscribe(func(e database.Event) {
		h.wsHub.BroadcastServiceEvent(ServiceEventPayload{
			Entity: e.Entity,
			Key:    e.Key,
			Result: e.Result.String(),
			Field:  e.Field,
		})
	})

	h.rad.OnDABPlusChannel.Subscribe(func(c radio.Channel) {
		h.mu.Lock()
		h.channels++
		h.mu.Unlock()
		h.wsHub.BroadcastChannel(ChannelPayload{
			SubchannelID: c.SubchannelID,
			ServiceRef:   c.ServiceRef,
			ComponentID:  c.ComponentID,
		})
	})

	h.rad.OnLabelChange.Subscribe(func(e pad.LabelEvent) {
		h.wsHub.BroadcastLabel(LabelPayload{Text: e.Text, Charset: e.Charset})
	})

	h.rad.OnMOTEntity.Subscribe(func(m pad.MOTEntity) {
		h.mu.Lock()
		h.lastMOT = m.ContentName
		h.mu.Unlock()
		h.wsHub.BroadcastMOT(MOTPayload{
			TransportID:    m.TransportID,
			ContentType:    m.ContentType,
			ContentSubType: m.ContentSubType,
			ContentName:    m.ContentName,
			Size:           len(m.Body),
		})
	})
}

// HandleWebSocket upgrades to a WebSocket connection and streams
// broadcasted observer events. Clients are not expected to send anything
// back; any messages they do send are discarded.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.wsHub.AddClient(conn)

	go func() {
		defer h.wsHub.RemoveClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// HandleStatus reports how many DAB+ audio channels are currently bound
// and the last MOT object name observed.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	channels, lastMOT := h.channels, h.lastMOT
	h.mu.Unlock()

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":        "running",
		"boundChannels": channels,
		"lastMOTObject": lastMOT,
	})
}

// HandleDevices lists available audio input and output devices.
func (h *Handlers) HandleDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := audio.ListDevices()
	if err != nil {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"devices": devices,
	})
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
	"github.com/nerrad567/warehouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/warehouse-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/warehouse-core/internal/metrics"
)

// WebSocket message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	// wsSendBufferSize is the per-client outbound message buffer size.
	wsSendBufferSize = 256
)

// WSMessage is the envelope of every frame in both directions.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload for subscribe/unsubscribe messages.
// Channels are "<type>.changed" for entity snapshots and ReadingChannel for
// live sensor readings.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

func newWSMessage(msgType, id, channel string, payload any) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
}

func eventMessage(channel string, payload any) ([]byte, error) {
	return newWSMessage(WSTypeEvent, "", channel, payload)
}

// Hub tracks dashboard connections and fans snapshot changes and sensor
// readings out to the clients subscribed to each channel.
type Hub struct {
	cfg     config.WebSocketConfig
	logger  *logging.Logger
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
	replay  func(channel string) (any, bool)
}

// upgrader accepts every origin; CORS middleware has already filtered the request.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// SetReplay installs the lookup for a channel's current payload, sent to a
// client right after it subscribes so it never waits a poll interval for
// its first snapshot.
func (h *Hub) SetReplay(fn func(channel string) (any, bool)) {
	h.mu.Lock()
	h.replay = fn
	h.mu.Unlock()
}

// Run blocks until ctx is cancelled and then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketClients.Inc()
	h.logger.Debug("dashboard client connected", "clients", n)
}

// Unregister removes a client. Only the caller that actually removes it
// closes its send channel.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, present := h.clients[client]
	delete(h.clients, client)
	n := len(h.clients)
	h.mu.Unlock()

	if !present {
		return
	}
	close(client.send)
	metrics.WebSocketClients.Dec()
	h.logger.Debug("dashboard client disconnected", "clients", n)
}

// Broadcast sends payload as an event on channel to its subscribers.
// The hub lock is released before any client lock is taken.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := eventMessage(channel, payload)
	if err != nil {
		h.logger.Error("encoding websocket event failed", "channel", channel, "error", err)
		return
	}

	recipients := 0
	for _, client := range h.snapshot() {
		if client.subscribed(channel) {
			client.trySend(data)
			recipients++
		}
	}
	if recipients > 0 {
		h.logger.Debug("websocket event sent", "channel", channel, "recipients", recipients)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) snapshot() []*WSClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		out = append(out, client)
	}
	return out
}

// closeAll disconnects every client so their write pumps exit.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
		metrics.WebSocketClients.Dec()
	}
}

func (h *Hub) replayFor(channel string) (any, bool) {
	h.mu.RLock()
	fn := h.replay
	h.mu.RUnlock()
	if fn == nil {
		return nil, false
	}
	return fn(channel)
}

// ReadingSource delivers live sensor readings. mqtt.Client satisfies it.
type ReadingSource interface {
	SubscribeReadings(fn func(mqtt.SensorReading)) error
	IsConnected() bool
}

// relayReadings forwards readings from the bus to ReadingChannel.
func (s *Server) relayReadings() error {
	if s.readings == nil {
		return nil // live readings disabled
	}
	s.logger.Info("relaying sensor readings to websocket", "channel", ReadingChannel)
	return s.readings.SubscribeReadings(func(r mqtt.SensorReading) {
		s.hub.Broadcast(ReadingChannel, r)
	})
}

// handleWebSocket upgrades a dashboard connection and starts its pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:           s.hub,
		conn:          conn,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(channelSet),
	}
	s.hub.Register(client)

	ka := newKeepalive(s.wsCfg)
	go client.writePump(ka)
	go client.readPump(ka)
}

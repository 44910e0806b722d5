package api

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
)

// channelSet is the set of channels one client listens on.
type channelSet map[string]struct{}

func (s channelSet) add(channels []string) {
	for _, ch := range channels {
		s[ch] = struct{}{}
	}
}

func (s channelSet) remove(channels []string) {
	for _, ch := range channels {
		delete(s, ch)
	}
}

// keepalive holds the ping cadence and deadlines of a connection.
type keepalive struct {
	readLimit int64
	ping      time.Duration
	wait      time.Duration
}

func newKeepalive(cfg config.WebSocketConfig) keepalive {
	return keepalive{
		readLimit: int64(cfg.MaxMessageSize),
		ping:      time.Duration(cfg.PingInterval) * time.Second,
		wait:      time.Duration(cfg.PongTimeout) * time.Second,
	}
}

func (k keepalive) readDeadline() time.Time  { return time.Now().Add(k.ping + k.wait) }
func (k keepalive) writeDeadline() time.Time { return time.Now().Add(k.wait) }

// WSClient is one dashboard connection.
type WSClient struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan []byte
	mu            sync.RWMutex
	subscriptions channelSet
}

// readPump dispatches inbound frames until the connection fails.
func (c *WSClient) readPump(ka keepalive) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(ka.readLimit)
	c.conn.SetReadDeadline(ka.readDeadline()) //nolint:errcheck // read error surfaces below
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(ka.readDeadline())
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		// Browsers may not answer protocol pings; any frame counts as liveness.
		c.conn.SetReadDeadline(ka.readDeadline()) //nolint:errcheck // read error surfaces on next frame
		c.dispatch(frame)
	}
}

// writePump drains the send queue and pings on the keepalive cadence.
func (c *WSClient) writePump(ka keepalive) {
	ticker := time.NewTicker(ka.ping)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		var (
			kind = websocket.TextMessage
			data []byte
		)
		select {
		case msg, open := <-c.send:
			if !open {
				c.conn.WriteMessage(websocket.CloseMessage, nil) //nolint:errcheck // connection is going away
				return
			}
			data = msg
		case <-ticker.C:
			kind = websocket.PingMessage
		}
		c.conn.SetWriteDeadline(ka.writeDeadline()) //nolint:errcheck // write error surfaces below
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}

var errNoChannels = errors.New("payload must carry a channels list")

// dispatch handles one inbound frame.
func (c *WSClient) dispatch(frame []byte) {
	var msg WSMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		c.reply("", WSTypeError, map[string]string{"message": "invalid JSON message"})
		return
	}

	switch msg.Type {
	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)
	case WSTypeSubscribe, WSTypeUnsubscribe:
		channels, err := channelsOf(msg)
		if err != nil {
			c.reply(msg.ID, WSTypeError, map[string]string{"message": "invalid " + msg.Type + " payload"})
			return
		}
		if msg.Type == WSTypeSubscribe {
			c.subscribe(msg.ID, channels)
		} else {
			c.unsubscribe(msg.ID, channels)
		}
	default:
		c.reply(msg.ID, WSTypeError, map[string]string{"message": "unknown message type: " + msg.Type})
	}
}

// channelsOf re-decodes the generic payload of a (un)subscribe message.
func channelsOf(msg WSMessage) ([]string, error) {
	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, err
	}
	var sub WSSubscribePayload
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, err
	}
	if sub.Channels == nil {
		return nil, errNoChannels
	}
	return sub.Channels, nil
}

// subscribe acknowledges the request and then replays the current snapshot
// of each channel that has one.
func (c *WSClient) subscribe(id string, channels []string) {
	c.mu.Lock()
	c.subscriptions.add(channels)
	c.mu.Unlock()

	c.hub.logger.Debug("websocket client subscribed", "channels", channels)
	c.reply(id, WSTypeResponse, map[string]any{"subscribed": channels})

	for _, ch := range channels {
		payload, ok := c.hub.replayFor(ch)
		if !ok {
			continue
		}
		if data, err := eventMessage(ch, payload); err == nil {
			c.trySend(data)
		}
	}
}

func (c *WSClient) unsubscribe(id string, channels []string) {
	c.mu.Lock()
	c.subscriptions.remove(channels)
	c.mu.Unlock()

	c.reply(id, WSTypeResponse, map[string]any{"unsubscribed": channels})
}

func (c *WSClient) subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscriptions[channel]
	return ok
}

func (c *WSClient) reply(id, msgType string, payload any) {
	if data, err := newWSMessage(msgType, id, "", payload); err == nil {
		c.trySend(data)
	}
}

// trySend queues data without blocking. A full buffer drops the frame and a
// client closed mid-broadcast is ignored.
func (c *WSClient) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // send on a channel closed by Unregister
	}()
	select {
	case c.send <- data:
	default:
	}
}

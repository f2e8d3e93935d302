package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"funnelworks/internal/analytics"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Operator feed message types beyond the service ones
const (
	MsgAnalyticsEvent MessageType = "analytics_event"
	MsgCountdownTick  MessageType = "countdown_tick"
	MsgError          MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans operator feed messages out to connected dashboards
type Hub struct {
	operators map[*Connection]bool

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *Message
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup

	logger *zap.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	OperatorID string
	Send       chan []byte
	Hub        *Hub
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		operators:  make(map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
	h.wg.Add(1)
	go h.run()
	return h
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.operators[conn] = true
			h.mu.Unlock()
			h.logger.Info("operator connected", zap.String("operator", conn.OperatorID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.operators[conn]; ok {
				delete(h.operators, conn)
				close(conn.Send)
				h.logger.Info("operator disconnected", zap.String("operator", conn.OperatorID))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, _ := json.Marshal(msg)
			h.mu.RLock()
			for conn := range h.operators {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for conn := range h.operators {
				delete(h.operators, conn)
				close(conn.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Close stops the hub and closes every operator connection
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	h.wg.Wait()
}

// OperatorCount returns the number of connected dashboards
func (h *Hub) OperatorCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.operators)
}

// BroadcastToOperators sends a message to every dashboard (implements service.Broadcaster).
// It never blocks the caller; messages are dropped when the queue is full.
func (h *Hub) BroadcastToOperators(msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("unencodable feed payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- &Message{Type: MessageType(msgType), Payload: data}:
	case <-h.done:
	default:
	}
}

// Tracker mirrors analytics events onto the operator feed
func (h *Hub) Tracker() analytics.Tracker {
	return analytics.TrackerFunc(func(e analytics.Event) {
		h.BroadcastToOperators(string(MsgAnalyticsEvent), map[string]interface{}{
			"event":      e.Name,
			"distinctId": e.DistinctID,
			"properties": e.Properties,
			"timestamp":  e.Timestamp,
		})
	})
}

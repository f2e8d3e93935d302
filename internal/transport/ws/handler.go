package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"funnelworks/internal/analytics"
	"funnelworks/internal/service"
	"funnelworks/internal/urgency"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the REST layer
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub       *Hub
	authSvc   *service.AuthService
	funnel    *analytics.Funnel
	offerDays int
	tick      time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, funnel *analytics.Funnel, offerDays int, logger *zap.Logger) *Handler {
	return &Handler{
		hub:       hub,
		authSvc:   authSvc,
		funnel:    funnel,
		offerDays: offerDays,
		tick:      time.Second,
		now:       time.Now,
		logger:    logger,
	}
}

// SetTick overrides the countdown interval
func (h *Handler) SetTick(d time.Duration) {
	h.tick = d
}

// OperatorWS handles GET /v1/ws/operator
func (h *Handler) OperatorWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateOperatorToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &Connection{
		OperatorID: claims.OperatorID,
		Send:       make(chan []byte, 256),
		Hub:        h.hub,
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, func() { h.hub.Unregister(conn) })
}

// CountdownWS handles GET /v1/ws/countdown.
// The deadline comes from ?deadline=RFC3339, else the configured offer window from now.
func (h *Handler) CountdownWS(w http.ResponseWriter, r *http.Request) {
	deadline := urgency.Deadline(h.now(), h.offerDays)
	if v := r.URL.Query().Get("deadline"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid deadline", http.StatusBadRequest)
			return
		}
		deadline = t
	}
	distinctID := r.URL.Query().Get("distinctId")

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.funnel.UrgencyTimerViewed(distinctID)

	ctx, cancel := context.WithCancel(context.Background())
	countdown := urgency.Start(ctx, deadline, h.tick, h.now)

	go h.readPump(wsConn, cancel)
	go h.countdownPump(wsConn, countdown, cancel)
}

func (h *Handler) countdownPump(wsConn *websocket.Conn, countdown *urgency.Countdown, cancel context.CancelFunc) {
	defer func() {
		cancel()
		countdown.Stop()
		wsConn.Close()
	}()

	for tick := range countdown.C {
		payload, _ := json.Marshal(tick)
		data, _ := json.Marshal(&Message{Type: MsgCountdownTick, Payload: payload})

		wsConn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := wsConn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	wsConn.SetWriteDeadline(time.Now().Add(writeWait))
	wsConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "expired"))
}

func (h *Handler) readPump(wsConn *websocket.Conn, onClose func()) {
	defer func() {
		onClose()
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}
		// Clients only listen; incoming frames are ignored
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

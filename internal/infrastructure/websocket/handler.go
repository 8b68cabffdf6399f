package websocket

import (
	"net/http"
	"sync"
	"time"

	"auction-platform/internal/domain"
	"auction-platform/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

const (
	defaultPongWait   = 60 * time.Second
	defaultPingPeriod = 50 * time.Second
	writeWait         = 10 * time.Second
)

// Handler upgrades HTTP requests into auction-room subscriptions. Bids are
// placed through the gateway API; the stream only carries server pushes and
// ping/pong.
type Handler struct {
	auctionStore domain.AuctionStore
	connManager  domain.ConnectionManager
	log          logger.Logger

	// Keepalive: a client that answers neither protocol pings nor sends
	// anything within pongWait is torn down.
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewHandler(auctionStore domain.AuctionStore, connManager domain.ConnectionManager, log logger.Logger) *Handler {
	return &Handler{
		auctionStore: auctionStore,
		connManager:  connManager,
		log:          log,
		pongWait:     defaultPongWait,
		pingPeriod:   defaultPingPeriod,
	}
}

func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	auctionID := vars["auctionID"]

	auction, err := h.auctionStore.GetAuction(r.Context(), auctionID)
	if err != nil {
		h.log.Error("Failed to find auction", "error", err, "auction_id", auctionID)
		http.Error(w, "auction not found", http.StatusNotFound)
		return
	}

	if time.Now().After(auction.EndTime) || auction.Status == domain.AuctionEnded || auction.Status == domain.AuctionCancelled {
		h.log.Info("Rejected connection - auction has ended", "auction_id", auctionID)
		http.Error(w, "auction has already ended", http.StatusForbidden)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wsConn := NewConnection(conn, userID, auctionID, h.log)

	if err := h.connManager.RegisterConnection(userID, auctionID, wsConn); err != nil {
		h.log.Error("Failed to register connection", "error", err)
		conn.Close()
		return
	}

	go h.readLoop(wsConn, userID, auctionID)
}

func (h *Handler) readLoop(conn *Connection, userID, auctionID string) {
	done := make(chan struct{})
	defer func() {
		close(done)
		h.connManager.UnregisterConnection(userID, auctionID)
		conn.Close()
	}()

	conn.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})
	go h.pingLoop(conn, done)

	for {
		var msg map[string]interface{}
		if err := conn.conn.ReadJSON(&msg); err != nil {
			return
		}
		conn.conn.SetReadDeadline(time.Now().Add(h.pongWait))

		msgType, ok := msg["type"].(string)
		if !ok {
			continue
		}

		if msgType == "ping" {
			conn.Send(map[string]string{"type": "pong"})
		}
	}
}

// pingLoop keeps the read deadline alive for healthy clients. A dead client
// stops answering, the deadline in readLoop expires and the room slot is
// reclaimed.
func (h *Handler) pingLoop(conn *Connection, done <-chan struct{}) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

type Connection struct {
	conn      *websocket.Conn
	userID    string
	auctionID string
	log       logger.Logger
	writeMu   sync.Mutex
}

func NewConnection(conn *websocket.Conn, userID, auctionID string, log logger.Logger) *Connection {
	return &Connection{
		conn:      conn,
		userID:    userID,
		auctionID: auctionID,
		log:       log,
	}
}

// Send serializes writers; gorilla/websocket allows one concurrent writer
// per connection. Pre-marshalled payloads go out as-is, anything else is
// JSON-encoded.
func (c *Connection) Send(message interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if data, ok := message.([]byte); ok {
		return c.conn.WriteMessage(websocket.TextMessage, data)
	}
	return c.conn.WriteJSON(message)
}

func (c *Connection) Close() error {
	return c.conn.Close()
}

func (c *Connection) UserID() string {
	return c.userID
}

func (c *Connection) AuctionID() string {
	return c.auctionID
}

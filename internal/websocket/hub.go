package websocket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/telllate/snipcast/internal/domain"
	"github.com/telllate/snipcast/internal/metrics"
)

const maxClients = 1000

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	connectionID string
	conn         *websocket.Conn
	errCh        chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	connectionID string
}

func (cmdUnregister) hubCmd() {}

type cmdPost struct {
	connectionID string
	data         []byte
	errCh        chan error
}

func (cmdPost) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Hub ---

// Hub tracks open WebSocket connections by connection id and pushes payloads
// to individual connections. It implements domain.DeliverySink: posting to an
// id the hub does not know returns domain.ErrConnectionGone.
type Hub struct {
	cmdCh   chan hubCmd
	stopped chan struct{}
	clock   clockwork.Clock
	clients map[string]*clientWriter
}

var _ domain.DeliverySink = (*Hub)(nil)

func NewHub(clock clockwork.Clock) *Hub {
	hub := &Hub{
		cmdCh:   make(chan hubCmd, 256),
		stopped: make(chan struct{}),
		clock:   clock,
		clients: make(map[string]*clientWriter),
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	defer close(h.stopped)
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.connectionID)
		case cmdPost:
			c.errCh <- h.handlePost(c)
		case cmdClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if len(h.clients) >= maxClients {
		slog.Warn("Rejecting client: max clients reached", "max", maxClients)
		_ = c.conn.Close()
		c.errCh <- fmt.Errorf("max clients (%d) reached", maxClients)
		return
	}

	// A reconnect under the same id replaces the old connection so a dead
	// socket cannot shadow the live one.
	if old, exists := h.clients[c.connectionID]; exists {
		old.stop()
	}

	h.clients[c.connectionID] = newClientWriter(c.conn, h.clock)
	metrics.HubConnectedClients.Set(float64(len(h.clients)))
	slog.Debug("Client registered", "connection_id", c.connectionID, "total", len(h.clients))
	c.errCh <- nil
}

func (h *Hub) handleUnregister(connectionID string) {
	cw, exists := h.clients[connectionID]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, connectionID)
	metrics.HubConnectedClients.Set(float64(len(h.clients)))
	slog.Debug("Client unregistered", "connection_id", connectionID, "remaining", len(h.clients))
}

func (h *Hub) handlePost(c cmdPost) error {
	cw, exists := h.clients[c.connectionID]
	if !exists {
		return domain.ErrConnectionGone
	}

	select {
	case cw.sendChannel <- c.data:
		return nil
	default:
		// Full buffer means the client stopped draining; evict it.
		slog.Warn("Disconnecting slow client", "connection_id", c.connectionID)
		metrics.HubSlowClientDisconnects.Inc()
		h.handleUnregister(c.connectionID)
		return fmt.Errorf("send buffer full for connection %s", c.connectionID)
	}
}

func (h *Hub) handleStop() {
	for connectionID, cw := range h.clients {
		cw.stop()
		delete(h.clients, connectionID)
	}
	metrics.HubConnectedClients.Set(0)
}

// --- Public API ---

func (h *Hub) Register(connectionID string, conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	select {
	case h.cmdCh <- cmdRegister{connectionID: connectionID, conn: conn, errCh: errCh}:
	case <-h.stopped:
		_ = conn.Close()
		return fmt.Errorf("hub stopped")
	}
	select {
	case err := <-errCh:
		return err
	case <-h.stopped:
		_ = conn.Close()
		return fmt.Errorf("hub stopped")
	}
}

func (h *Hub) Unregister(connectionID string) {
	select {
	case h.cmdCh <- cmdUnregister{connectionID: connectionID}:
	case <-h.stopped:
	}
}

// Post implements domain.DeliverySink.
func (h *Hub) Post(_ context.Context, connectionID string, data []byte) error {
	errCh := make(chan error, 1)
	select {
	case h.cmdCh <- cmdPost{connectionID: connectionID, data: data, errCh: errCh}:
	case <-h.stopped:
		return domain.ErrConnectionGone
	}
	select {
	case err := <-errCh:
		return err
	case <-h.stopped:
		return domain.ErrConnectionGone
	}
}

func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	select {
	case h.cmdCh <- cmdClientCount{replyCh: replyCh}:
	case <-h.stopped:
		return 0
	}
	select {
	case n := <-replyCh:
		return n
	case <-h.stopped:
		return 0
	}
}

func (h *Hub) Stop() {
	select {
	case h.cmdCh <- cmdStop{}:
		<-h.stopped
	case <-h.stopped:
	}
}

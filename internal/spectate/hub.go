// Package spectate streams table updates to read-only websocket spectators.
package spectate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
)

// Hub is a game.Renderer that broadcasts every update to connected
// spectators. Hole cards are masked until they are revealed at showdown.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	players map[int]PlayerData
	board   []string
	pot     int
	dealer  int
}

// NewHub creates a hub with no spectators
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// Spectating is read-only, any origin may watch
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  logger.WithPrefix("spectate"),
		clients: make(map[*client]struct{}),
		players: make(map[int]PlayerData),
		dealer:  -1,
	}
}

// Handler serves the websocket endpoint on /ws and a health check on /health
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	})
	return mux
}

// Serve accepts spectators on addr until ctx is cancelled
func (h *Hub) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return h.ServeListener(ctx, ln)
}

// ServeListener accepts spectators on ln until ctx is cancelled
func (h *Hub) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: h.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("Accepting spectators", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		h.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close disconnects every spectator and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		c.close()
	}
}

// Clients returns the number of connected spectators
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn, h.logger)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	snapshot, err := NewFrame(FrameSnapshot, h.snapshotLocked())
	if err == nil {
		err = c.enqueue(snapshot)
	}
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	if err != nil {
		h.logger.Error("Failed to send snapshot", "error", err)
	}
	h.logger.Info("Spectator connected", "remote", r.RemoteAddr, "total", total)
	c.start()

	go func() {
		<-c.ctx.Done()
		h.mu.Lock()
		delete(h.clients, c)
		total := len(h.clients)
		h.mu.Unlock()
		h.logger.Info("Spectator disconnected", "remote", r.RemoteAddr, "total", total)
	}()
}

func (h *Hub) snapshotLocked() SnapshotData {
	seats := make([]int, 0, len(h.players))
	for seat := range h.players {
		seats = append(seats, seat)
	}
	sort.Ints(seats)

	snap := SnapshotData{
		Players: make([]PlayerData, 0, len(seats)),
		Board:   append([]string{}, h.board...),
		Pot:     h.pot,
		Dealer:  h.dealer,
	}
	for _, seat := range seats {
		snap.Players = append(snap.Players, h.players[seat])
	}
	return snap
}

// broadcast records state with update and sends the frame to every spectator
func (h *Hub) broadcast(t FrameType, data any, update func()) {
	frame, err := NewFrame(t, data)
	if err != nil {
		h.logger.Error("Failed to encode frame", "type", t, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if update != nil {
		update()
	}
	count := 0
	for c := range h.clients {
		if err := c.enqueue(frame); err == nil {
			count++
		}
	}
	h.logger.Debug("Broadcast frame", "type", t, "recipients", count)
}

func (h *Hub) RenderPlayer(p game.PlayerView, phase game.Phase) {
	data := playerData(p, phase)
	h.broadcast(FramePlayer, data, func() { h.players[p.Seat] = data })
}

func (h *Hub) RenderCommunityCards(cards []deck.Card) {
	board := cardStrings(cards)
	h.broadcast(FrameBoard, BoardData{Cards: board}, func() { h.board = board })
}

func (h *Hub) RenderPot(amount int) {
	h.broadcast(FramePot, PotData{Amount: amount}, func() { h.pot = amount })
}

func (h *Hub) RenderDealerMarker(seat int) {
	h.broadcast(FrameDealer, DealerData{Seat: seat}, func() { h.dealer = seat })
}

func (h *Hub) RenderActionControls(opts game.ActionOptions) {
	actions := make([]string, len(opts.Actions))
	for i, a := range opts.Actions {
		actions[i] = a.String()
	}
	h.broadcast(FrameTurn, TurnData{
		Seat:     opts.Seat,
		Actions:  actions,
		ToCall:   opts.ToCall,
		MinRaise: opts.MinRaise,
		MaxRaise: opts.MaxRaise,
	}, nil)
}

func (h *Hub) DisableActionControls() {
	h.broadcast(FrameWaiting, nil, nil)
}

func (h *Hub) RenderMessage(msg string) {
	h.broadcast(FrameMessage, MessageData{Text: msg}, nil)
}

// DealCardAnimation announces the card without delaying the deal
func (h *Hub) DealCardAnimation(ctx context.Context, target game.DealTarget, card deck.Card, _ bool) error {
	data := DealData{Seat: target.Seat, Board: target.IsBoard(), Index: target.Index}
	if target.IsBoard() {
		data.Card = card.String()
	}
	h.broadcast(FrameDeal, data, nil)
	return ctx.Err()
}

var _ game.Renderer = (*Hub)(nil)

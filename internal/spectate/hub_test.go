package spectate

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(log.New(io.Discard))
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn, data any) FrameType {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	if data != nil {
		require.NoError(t, json.Unmarshal(frame.Data, data))
	}
	return frame.Type
}

func TestSnapshotOnConnect(t *testing.T) {
	t.Parallel()
	hub, srv := newTestHub(t)

	hub.RenderDealerMarker(1)
	hub.RenderPot(30)
	hub.RenderCommunityCards(deck.MustParseCards("As Kd 7c"))
	hub.RenderPlayer(game.PlayerView{Seat: 1, Name: "Bob", Chips: 990, CardCount: 2}, game.Flop)
	hub.RenderPlayer(game.PlayerView{Seat: 0, Name: "Alice", Chips: 980, CardCount: 2}, game.Flop)

	var snap SnapshotData
	conn := dial(t, srv)
	require.Equal(t, FrameSnapshot, readFrame(t, conn, &snap))

	assert.Equal(t, 1, snap.Dealer)
	assert.Equal(t, 30, snap.Pot)
	assert.Equal(t, []string{"A♠", "K♦", "7♣"}, snap.Board)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, "Alice", snap.Players[0].Name, "players are ordered by seat")
	assert.Equal(t, "flop", snap.Players[1].Phase)
	assert.Equal(t, 1, hub.Clients())
}

func TestBroadcastMasksHoleCards(t *testing.T) {
	t.Parallel()
	hub, srv := newTestHub(t)
	conn := dial(t, srv)
	require.Equal(t, FrameSnapshot, readFrame(t, conn, nil))

	hole := deck.MustParseCards("Ah Kh")
	hub.RenderPlayer(game.PlayerView{Seat: 0, Name: "You", Human: true, CardCount: 2, Hand: hole}, game.Preflop)
	require.NoError(t, hub.DealCardAnimation(context.Background(), game.DealTarget{Seat: 0, Index: 1}, hole[1], false))
	require.NoError(t, hub.DealCardAnimation(context.Background(), game.Board(2), deck.NewCard(deck.Two, deck.Clubs), false))
	hub.RenderPlayer(game.PlayerView{Seat: 0, Name: "You", CardCount: 2, Hand: hole, Revealed: true}, game.Showdown)

	var p PlayerData
	require.Equal(t, FramePlayer, readFrame(t, conn, &p))
	assert.Equal(t, 2, p.CardCount)
	assert.Empty(t, p.Cards, "unrevealed cards are never broadcast")

	var d DealData
	require.Equal(t, FrameDeal, readFrame(t, conn, &d))
	assert.Equal(t, DealData{Seat: 0, Index: 1}, d)

	require.Equal(t, FrameDeal, readFrame(t, conn, &d))
	assert.Equal(t, DealData{Seat: -1, Board: true, Index: 2, Card: "2♣"}, d)

	require.Equal(t, FramePlayer, readFrame(t, conn, &p))
	assert.Equal(t, []string{"A♥", "K♥"}, p.Cards)
}

func TestBroadcastTurnAndMessages(t *testing.T) {
	t.Parallel()
	hub, srv := newTestHub(t)
	first, second := dial(t, srv), dial(t, srv)
	readFrame(t, first, nil)
	readFrame(t, second, nil)

	hub.RenderActionControls(game.ActionOptions{
		Seat:     2,
		Actions:  []game.ActionType{game.Fold, game.Call, game.Raise, game.AllIn},
		ToCall:   20,
		MinRaise: 40,
		MaxRaise: 500,
	})
	hub.DisableActionControls()
	hub.RenderMessage("Bob calls 20")

	for _, conn := range []*websocket.Conn{first, second} {
		var turn TurnData
		require.Equal(t, FrameTurn, readFrame(t, conn, &turn))
		assert.Equal(t, TurnData{Seat: 2, Actions: []string{"fold", "call", "raise", "allin"}, ToCall: 20, MinRaise: 40, MaxRaise: 500}, turn)

		assert.Equal(t, FrameWaiting, readFrame(t, conn, nil))

		var msg MessageData
		require.Equal(t, FrameMessage, readFrame(t, conn, &msg))
		assert.Equal(t, "Bob calls 20", msg.Text)
	}
}

func TestSpectatorDisconnect(t *testing.T) {
	t.Parallel()
	hub, srv := newTestHub(t)
	conn := dial(t, srv)
	readFrame(t, conn, nil)
	require.Equal(t, 1, hub.Clients())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 5*time.Second, 10*time.Millisecond)

	hub.RenderMessage("nobody is watching")
}

func TestServeListener(t *testing.T) {
	t.Parallel()
	hub := NewHub(log.New(io.Discard))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.ServeListener(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ServeListener did not return after cancel")
	}
}

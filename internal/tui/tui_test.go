package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/display"
	"github.com/lox/holdem/internal/game"
)

type submitCall struct {
	seat   int
	t      game.ActionType
	amount int
}

type fakeEngine struct {
	mu    sync.Mutex
	calls []submitCall
	err   error
}

func (f *fakeEngine) submit(_ context.Context, seat int, t game.ActionType, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, submitCall{seat, t, amount})
	return f.err
}

func newTestModel(t *testing.T, engine *fakeEngine) *Model {
	t.Helper()
	styles := display.NewStyles(display.NewRenderer(io.Discard, false))
	m := NewModel(context.Background(), engine.submit, styles, log.New(io.Discard))
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func typeLine(m *Model, line string) tea.Cmd {
	m.actionInput.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestParseInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    game.Action
		wantErr string
	}{
		{input: "fold", want: game.Action{Type: game.Fold}},
		{input: "  Check ", want: game.Action{Type: game.Check}},
		{input: "c", want: game.Action{Type: game.Call}},
		{input: "allin", want: game.Action{Type: game.AllIn}},
		{input: "all-in", want: game.Action{Type: game.AllIn}},
		{input: "bet 40", want: game.Action{Type: game.Bet, Amount: 40}},
		{input: "raise 80", want: game.Action{Type: game.Raise, Amount: 80}},
		{input: "raise to 120", want: game.Action{Type: game.Raise, Amount: 120}},
		{input: "r $60", want: game.Action{Type: game.Raise, Amount: 60}},
		{input: "", wantErr: "enter an action"},
		{input: "shove", wantErr: "unknown action"},
		{input: "raise", wantErr: "usage: raise"},
		{input: "bet lots", wantErr: "invalid amount"},
		{input: "bet -5", wantErr: "invalid amount"},
		{input: "call 20", wantErr: "takes no amount"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseInput(tc.input)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRendererForwardsMessages(t *testing.T) {
	t.Parallel()
	var msgs []tea.Msg
	r := NewRenderer(func(msg tea.Msg) { msgs = append(msgs, msg) })

	board := deck.MustParseCards("As Kd 7c")
	r.RenderPlayer(game.PlayerView{Seat: 1, Name: "Bob"}, game.Flop)
	r.RenderCommunityCards(board)
	r.RenderPot(60)
	r.RenderDealerMarker(2)
	r.RenderActionControls(game.ActionOptions{Seat: 0})
	r.DisableActionControls()
	r.RenderMessage("hello")
	require.NoError(t, r.DealCardAnimation(context.Background(), game.Board(0), board[0], false))

	require.Len(t, msgs, 8)
	assert.Equal(t, playerMsg{player: game.PlayerView{Seat: 1, Name: "Bob"}, phase: game.Flop}, msgs[0])
	assert.Equal(t, boardMsg{cards: board}, msgs[1])
	assert.Equal(t, potMsg{amount: 60}, msgs[2])
	assert.Equal(t, dealerMsg{seat: 2}, msgs[3])
	assert.Equal(t, controlsMsg{opts: game.ActionOptions{Seat: 0}}, msgs[4])
	assert.Equal(t, disableMsg{}, msgs[5])
	assert.Equal(t, logMsg{text: "hello"}, msgs[6])
	assert.Equal(t, dealMsg{target: game.Board(0), card: board[0]}, msgs[7])
}

func TestModelTracksTable(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, &fakeEngine{})

	m.Update(playerMsg{player: game.PlayerView{Seat: 0, Name: "You", Chips: 980, CardCount: 2,
		Hand: deck.MustParseCards("Ah Kh")}, phase: game.Flop})
	m.Update(playerMsg{player: game.PlayerView{Seat: 1, Name: "AI Player 1", Chips: 980, CardCount: 2}, phase: game.Flop})
	m.Update(dealerMsg{seat: 1})
	m.Update(potMsg{amount: 40})
	m.Update(boardMsg{cards: deck.MustParseCards("2c 3d 4s")})
	m.Update(boardMsg{cards: deck.MustParseCards("2c 3d 4s")})
	m.Update(logMsg{text: "You checks"})

	assert.Equal(t, []string{"Board: [2♣ 3♦ 4♠]", "You checks"}, m.Log())

	sidebar := m.renderSidebarPane()
	assert.Contains(t, sidebar, "Pot: $40")
	assert.Contains(t, sidebar, "[A♥ K♥]")
	assert.Contains(t, sidebar, "D AI Player 1")
	assert.Contains(t, sidebar, "[## ##]")
	assert.Less(t, strings.Index(sidebar, "You"), strings.Index(sidebar, "AI Player 1"))

	view := m.View()
	assert.Contains(t, view, "Waiting...")
	assert.Contains(t, view, "You checks")
}

func TestModelSubmitsActions(t *testing.T) {
	t.Parallel()
	engine := &fakeEngine{}
	m := newTestModel(t, engine)

	typeLine(m, "call")
	assert.Contains(t, m.Log(), "Not your turn")
	assert.Empty(t, engine.calls, "no submission before controls are shown")

	m.Update(controlsMsg{opts: game.ActionOptions{
		Seat:     2,
		Actions:  []game.ActionType{game.Fold, game.Call, game.Raise, game.AllIn},
		ToCall:   20,
		MinRaise: 40,
		MaxRaise: 1000,
	}})
	assert.Contains(t, m.View(), "Actions: [fold] [call 20] [raise 40-1000] [allin]")

	cmd := typeLine(m, "raise to 60")
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, submitResultMsg{}, msg)
	assert.Equal(t, []submitCall{{seat: 2, t: game.Raise, amount: 60}}, engine.calls)
	assert.Empty(t, m.actionInput.Value())

	m.Update(msg)
	m.Update(disableMsg{})
	assert.Nil(t, m.options)
}

func TestModelShowsValidationErrors(t *testing.T) {
	t.Parallel()
	engine := &fakeEngine{err: &game.ActionError{Seat: 0, Action: game.Action{Type: game.Check}, Reason: "cannot check facing a bet"}}
	m := newTestModel(t, engine)
	m.Update(controlsMsg{opts: game.ActionOptions{Seat: 0, Actions: []game.ActionType{game.Fold, game.Call}}})

	typeLine(m, "bet")
	assert.Contains(t, m.Log(), "usage: bet <amount>")
	assert.Empty(t, engine.calls, "parse errors never reach the engine")

	cmd := typeLine(m, "check")
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Contains(t, m.Log(), "Invalid action: cannot check facing a bet")
	assert.NotNil(t, m.options, "controls stay up after a rejected action")
}

func TestModelEngineDone(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, &fakeEngine{})
	m.Update(controlsMsg{opts: game.ActionOptions{Seat: 0}})

	m.Update(EngineDoneMsg{Err: errors.New("boom")})
	assert.Nil(t, m.options)
	assert.Contains(t, m.Log(), "Engine stopped: boom")
	assert.Contains(t, m.View(), "Game finished")

	cmd := typeLine(m, "")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestModelFocusAndQuit(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, &fakeEngine{})

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, logPane, m.focusedPane)
	assert.False(t, m.actionInput.Focused())
	assert.Contains(t, m.View(), "Log focused")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, inputPane, m.focusedPane)
	assert.True(t, m.actionInput.Focused())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}

// Package tui is the interactive terminal front end for a human seat.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/display"
	"github.com/lox/holdem/internal/game"
)

// SubmitFunc delivers a decision to the engine, see game.Engine.SubmitAction
type SubmitFunc func(ctx context.Context, seat int, t game.ActionType, amount int) error

const (
	logPane = iota
	inputPane
)

const actionPlaceholder = "Enter your action (fold, check, call, bet 40, raise to 80, allin)"

// Model is the bubbletea model for the table
type Model struct {
	ctx    context.Context
	submit SubmitFunc
	styles display.Styles
	logger *log.Logger

	logViewport viewport.Model
	actionInput textinput.Model

	gameLog     []string
	focusedPane int
	quitting    bool
	finished    bool
	dealing     bool

	players map[int]game.PlayerView
	phase   game.Phase
	board   []deck.Card
	pot     int
	dealer  int
	options *game.ActionOptions

	width       int
	height      int
	initialized bool
}

// NewModel creates a model that submits actions through submit
func NewModel(ctx context.Context, submit SubmitFunc, styles display.Styles, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = actionPlaceholder
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = styles.Success
	ti.TextStyle = styles.Log
	ti.Prompt = "> "

	return &Model{
		ctx:         ctx,
		submit:      submit,
		styles:      styles,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: inputPane,
		players:     make(map[int]game.PlayerView),
		dealer:      -1,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case playerMsg:
		m.players[msg.player.Seat] = msg.player
		m.phase = msg.phase

	case boardMsg:
		if len(msg.cards) != len(m.board) && len(msg.cards) > 0 {
			m.AddLogEntry(m.styles.HandInfo.Render("Board: ") + m.styles.Cards(msg.cards))
		}
		m.board = msg.cards

	case potMsg:
		m.pot = msg.amount

	case dealerMsg:
		m.dealer = msg.seat

	case dealMsg:
		m.dealing = true

	case controlsMsg:
		opts := msg.opts
		m.options = &opts
		m.dealing = false

	case disableMsg:
		m.options = nil

	case logMsg:
		m.AddLogEntry(m.styles.Log.Render(msg.text))

	case submitResultMsg:
		if msg.err != nil {
			m.AddLogEntry(m.styles.Error.Render(describeError(msg.err)))
		}

	case EngineDoneMsg:
		m.finished = true
		m.options = nil
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.AddLogEntry(m.styles.Error.Render("Engine stopped: " + msg.Err.Error()))
		}
		m.AddLogEntry(m.styles.Info.Render("Press Enter or Ctrl+C to exit"))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == logPane {
				m.focusedPane = inputPane
				m.actionInput.Focus()
			} else {
				m.focusedPane = logPane
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == inputPane {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.processInput(input); cmd != nil {
					return m, cmd
				}
			}
		}

		if m.focusedPane == logPane {
			switch msg.String() {
			case "up", "k":
				m.logViewport.ScrollUp(1)
			case "down", "j":
				m.logViewport.ScrollDown(1)
			case "pgup", "b":
				m.logViewport.HalfPageUp()
			case "pgdown", "f":
				m.logViewport.HalfPageDown()
			case "home", "g":
				m.logViewport.GotoTop()
			case "end", "G":
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == inputPane {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// processInput handles a submitted line and returns the command to run
func (m *Model) processInput(input string) tea.Cmd {
	if m.finished || input == "quit" || input == "exit" {
		m.quitting = true
		return tea.Quit
	}
	if m.options == nil {
		if input != "" {
			m.AddLogEntry(m.styles.Warning.Render("Not your turn"))
		}
		return nil
	}

	action, err := ParseInput(input)
	if err != nil {
		m.AddLogEntry(m.styles.Error.Render(err.Error()))
		return nil
	}

	seat := m.options.Seat
	m.logger.Debug("Submitting action", "seat", seat, "action", action)
	ctx, submit := m.ctx, m.submit
	return func() tea.Msg {
		return submitResultMsg{err: submit(ctx, seat, action.Type, action.Amount)}
	}
}

func describeError(err error) string {
	var actionErr *game.ActionError
	if errors.As(err, &actionErr) {
		return "Invalid action: " + actionErr.Reason
	}
	return err.Error()
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	if m.focusedPane == inputPane {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	actionPane := actionStyle.Render(actionContent)

	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == logPane {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPaneView := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPaneView, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane lists the seats, the board and the pot
func (m *Model) renderSidebarPane() string {
	var content strings.Builder

	content.WriteString(m.styles.Header.Render(strings.ToUpper(m.phase.String())))
	content.WriteString(" ")
	content.WriteString(m.styles.Warning.Render(fmt.Sprintf("Pot: $%d", m.pot)))
	content.WriteString("\n\n")

	seats := make([]int, 0, len(m.players))
	for seat := range m.players {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	for _, seat := range seats {
		content.WriteString(m.styles.PlayerLine(m.players[seat], seat == m.dealer))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(m.styles.HandInfo.Render("Board: "))
	content.WriteString(m.styles.Cards(m.board))
	return content.String()
}

// renderActionPane shows the human's options and the input field
func (m *Model) renderActionPane() string {
	var content strings.Builder

	switch {
	case m.finished:
		content.WriteString(m.styles.HandInfo.Render("Game finished"))
		m.actionInput.Placeholder = "Enter to exit"
	case m.options != nil:
		if p, ok := m.players[m.options.Seat]; ok {
			content.WriteString(m.styles.HandInfo.Render(fmt.Sprintf("Hand: %s  Pot: $%d", m.styles.Cards(p.Hand), m.pot)))
			content.WriteString("\n")
		}
		content.WriteString(m.styles.ActionList(*m.options))
		m.actionInput.Placeholder = actionPlaceholder
	case m.dealing:
		content.WriteString(m.styles.HandInfo.Render("Dealing..."))
		m.actionInput.Placeholder = ""
	default:
		content.WriteString(m.styles.HandInfo.Render("Waiting..."))
		m.actionInput.Placeholder = ""
	}
	content.WriteString("\n")
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Ctrl+C to quit"
	if m.focusedPane == logPane {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	} else if m.options != nil {
		help = "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	}
	content.WriteString(m.styles.Info.Render(help))
	return content.String()
}

// AddLogEntry appends to the game log and scrolls to the bottom
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns the game log entries
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

package spectate

import (
	"encoding/json"
	"time"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
)

// FrameType identifies the payload of a Frame
type FrameType string

const (
	FrameSnapshot FrameType = "snapshot"
	FramePlayer   FrameType = "player"
	FrameBoard    FrameType = "board"
	FramePot      FrameType = "pot"
	FrameDealer   FrameType = "dealer"
	FrameTurn     FrameType = "turn"
	FrameWaiting  FrameType = "waiting"
	FrameMessage  FrameType = "message"
	FrameDeal     FrameType = "deal"
)

// Frame is the envelope written to spectators
type Frame struct {
	Type      FrameType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewFrame marshals data into a frame stamped with the current time
func NewFrame(t FrameType, data any) (*Frame, error) {
	frame := &Frame{Type: t, Timestamp: time.Now()}
	if data == nil {
		return frame, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	frame.Data = raw
	return frame, nil
}

// PlayerData is a seat as seen by spectators. Cards are only present once
// revealed at showdown.
type PlayerData struct {
	Seat       int      `json:"seat"`
	Name       string   `json:"name"`
	Chips      int      `json:"chips"`
	CurrentBet int      `json:"currentBet"`
	Folded     bool     `json:"folded"`
	AllIn      bool     `json:"allIn"`
	LastAction string   `json:"lastAction,omitempty"`
	CardCount  int      `json:"cardCount"`
	Cards      []string `json:"cards,omitempty"`
	Phase      string   `json:"phase"`
}

type BoardData struct {
	Cards []string `json:"cards"`
}

type PotData struct {
	Amount int `json:"amount"`
}

type DealerData struct {
	Seat int `json:"seat"`
}

// TurnData announces the seat to act and its options
type TurnData struct {
	Seat     int      `json:"seat"`
	Actions  []string `json:"actions"`
	ToCall   int      `json:"toCall,omitempty"`
	MinRaise int      `json:"minRaise,omitempty"`
	MaxRaise int      `json:"maxRaise,omitempty"`
}

type MessageData struct {
	Text string `json:"text"`
}

// DealData describes one dealt card. Hole cards are never included.
type DealData struct {
	Seat  int    `json:"seat"`
	Board bool   `json:"board"`
	Index int    `json:"index"`
	Card  string `json:"card,omitempty"`
}

// SnapshotData is sent to a spectator when it connects
type SnapshotData struct {
	Players []PlayerData `json:"players"`
	Board   []string     `json:"board"`
	Pot     int          `json:"pot"`
	Dealer  int          `json:"dealer"`
}

func playerData(p game.PlayerView, phase game.Phase) PlayerData {
	d := PlayerData{
		Seat:       p.Seat,
		Name:       p.Name,
		Chips:      p.Chips,
		CurrentBet: p.CurrentBet,
		Folded:     p.Folded,
		AllIn:      p.IsAllIn,
		LastAction: p.LastAction.String(),
		CardCount:  p.CardCount,
		Phase:      phase.String(),
	}
	if p.Revealed {
		d.Cards = cardStrings(p.Hand)
	}
	return d
}

func cardStrings(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// Package game implements a No-Limit Texas Hold'em table for a multi-hand
// session.
//
// Table is a synchronous state machine. It posts blinds, deals, validates and
// applies actions, and awards the pot, but never waits on anything itself:
//
//	t, _ := game.NewTable(seats, game.DefaultOptions, deck.New(rng))
//	_ = t.StartHand(ctx)
//	for t.Status() != game.HandComplete {
//	    switch t.Status() {
//	    case game.AwaitingAction:
//	        _ = t.Submit(t.Actor(), game.Action{Type: game.Call})
//	    case game.RoundComplete:
//	        _ = t.Advance(ctx)
//	    }
//	}
//
// Engine wraps a Table in a single goroutine loop. AI seats are driven by
// their Policy after a think delay on a quartz clock; human seats wait for
// SubmitAction. Every scheduled step carries the Token it was created under
// and is dropped if the table has moved on. A rejected SubmitAction changes
// nothing and schedules nothing.
//
// Folded and all-in players are never the current actor; the turn skips them.
//
// All chips live in one pot. Uneven all-ins are not split into side pots:
// the showdown winners share the whole pot.
package game

package game

// Pot holds every chip committed during a hand. There are no side pots: all
// contributions go into one shared pot that is split among the winners.
type Pot struct {
	Amount int
}

// Payout records chips awarded to a seat
type Payout struct {
	Seat   int
	Amount int
}

// PostBlind posts a forced bet of up to amount and returns the chips moved.
// A short stack posts what it has and is all-in.
func (pot *Pot) PostBlind(p *Player, amount int) int {
	if p == nil || p.Chips == 0 {
		return 0
	}
	moved := p.commit(amount)
	pot.Amount += moved
	return moved
}

// PlaceBet moves up to delta chips from the player into the pot and returns the
// actual amount moved, which is less than delta for an all-in short bet.
func (pot *Pot) PlaceBet(p *Player, delta int) int {
	moved := p.commit(delta)
	pot.Amount += moved
	return moved
}

// Award splits the pot evenly between winners. Any odd chips go to the first
// winner in seat order starting left of the dealer. numSeats is the session's
// seat count and defines that order. The pot is empty afterwards.
func (pot *Pot) Award(winners []*Player, dealer, numSeats int) []Payout {
	if len(winners) == 0 || pot.Amount == 0 {
		pot.Amount = 0
		return nil
	}

	ordered := orderFromDealer(winners, dealer, numSeats)
	share := pot.Amount / len(ordered)
	remainder := pot.Amount % len(ordered)

	payouts := make([]Payout, 0, len(ordered))
	for i, w := range ordered {
		amount := share
		if i == 0 {
			amount += remainder
		}
		w.Chips += amount
		payouts = append(payouts, Payout{Seat: w.Seat, Amount: amount})
	}

	pot.Amount = 0
	return payouts
}

// Refund returns every player's contribution for this hand. It is used when a
// hand has to be abandoned.
func (pot *Pot) Refund(players []*Player) {
	for _, p := range players {
		if p.TotalContributed == 0 {
			continue
		}
		p.Chips += p.TotalContributed
		pot.Amount -= p.TotalContributed
		p.TotalContributed = 0
		p.CurrentBet = 0
		p.IsAllIn = false
	}
	pot.Amount = 0
}

// orderFromDealer sorts players by distance clockwise from the seat left of the dealer
func orderFromDealer(players []*Player, dealer, numSeats int) []*Player {
	if numSeats <= 0 {
		numSeats = 1
	}
	dist := func(p *Player) int {
		return ((p.Seat-dealer-1)%numSeats + numSeats) % numSeats
	}

	ordered := append([]*Player(nil), players...)
	// Insertion sort: at most ten seats
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && dist(ordered[j]) < dist(ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}

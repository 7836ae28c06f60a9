// Package statistics accumulates per-hand results from simulated sessions.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// BigPotBB is the size from which a pot counts as a big pot
const BigPotBB = 50

// HandResult is one seat's outcome of a single hand
type HandResult struct {
	NetChips       int    // chips won or lost this hand
	BigBlind       int    // big blind the hand was played at
	Seat           int    // seat index at the table
	WentToShowdown bool   // did the hand reach a showdown
	Pot            int    // pot awarded, in chips
	Street         string // furthest street reached
}

// NetBB returns the result in big blinds
func (r HandResult) NetBB() float64 {
	if r.BigBlind <= 0 {
		return 0
	}
	return float64(r.NetChips) / float64(r.BigBlind)
}

// SeatStats tracks results for one seat
type SeatStats struct {
	Hands  int
	SumBB  float64
	SumBB2 float64
}

// Statistics tracks running results in big blinds per hand
type Statistics struct {
	Hands  int
	SumBB  float64
	SumBB2 float64   // sum of squares for variance
	Values []float64 // every result, for median and percentiles

	ShowdownWins    int     // hands won at showdown
	NonShowdownWins int     // hands won without showdown
	ShowdownBB      float64 // BB from showdown hands, wins and losses
	NonShowdownBB   float64 // BB from hands ending before showdown
	AllBB           float64

	SeatResults map[int]*SeatStats
	Streets     map[string]int

	MaxPotChips int
	MaxPotBB    float64
	BigPots     int
	BigPotsBB   float64
}

// Mean returns the arithmetic mean in big blinds per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a hand result
func (s *Statistics) Add(result HandResult) {
	netBB := result.NetBB()
	s.Hands++
	s.SumBB += netBB
	s.SumBB2 += netBB * netBB
	s.Values = append(s.Values, netBB)

	if netBB > 0 {
		if result.WentToShowdown {
			s.ShowdownWins++
		} else {
			s.NonShowdownWins++
		}
	}
	if result.WentToShowdown {
		s.ShowdownBB += netBB
	} else {
		s.NonShowdownBB += netBB
	}
	s.AllBB += netBB

	if s.SeatResults == nil {
		s.SeatResults = make(map[int]*SeatStats)
	}
	seat, ok := s.SeatResults[result.Seat]
	if !ok {
		seat = &SeatStats{}
		s.SeatResults[result.Seat] = seat
	}
	seat.Hands++
	seat.SumBB += netBB
	seat.SumBB2 += netBB * netBB

	if result.Street != "" {
		if s.Streets == nil {
			s.Streets = make(map[string]int)
		}
		s.Streets[result.Street]++
	}

	potBB := 0.0
	if result.BigBlind > 0 {
		potBB = float64(result.Pot) / float64(result.BigBlind)
	}
	if result.Pot > s.MaxPotChips {
		s.MaxPotChips = result.Pot
		s.MaxPotBB = potBB
	}
	if potBB >= BigPotBB {
		s.BigPots++
		s.BigPotsBB += netBB
	}
}

// Merge folds other into s
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}
	s.Hands += other.Hands
	s.SumBB += other.SumBB
	s.SumBB2 += other.SumBB2
	s.Values = append(s.Values, other.Values...)
	s.ShowdownWins += other.ShowdownWins
	s.NonShowdownWins += other.NonShowdownWins
	s.ShowdownBB += other.ShowdownBB
	s.NonShowdownBB += other.NonShowdownBB
	s.AllBB += other.AllBB

	if len(other.SeatResults) > 0 && s.SeatResults == nil {
		s.SeatResults = make(map[int]*SeatStats)
	}
	for seat, o := range other.SeatResults {
		ss, ok := s.SeatResults[seat]
		if !ok {
			ss = &SeatStats{}
			s.SeatResults[seat] = ss
		}
		ss.Hands += o.Hands
		ss.SumBB += o.SumBB
		ss.SumBB2 += o.SumBB2
	}

	if len(other.Streets) > 0 && s.Streets == nil {
		s.Streets = make(map[string]int)
	}
	for street, n := range other.Streets {
		s.Streets[street] += n
	}

	if other.MaxPotChips > s.MaxPotChips {
		s.MaxPotChips = other.MaxPotChips
		s.MaxPotBB = other.MaxPotBB
	}
	s.BigPots += other.BigPots
	s.BigPotsBB += other.BigPotsBB
}

// Median returns the median of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// SeatMean returns the mean result for a seat
func (s *Statistics) SeatMean(seat int) float64 {
	ss, ok := s.SeatResults[seat]
	if !ok || ss.Hands == 0 {
		return 0
	}
	return ss.SumBB / float64(ss.Hands)
}

// Seats returns the seats with results in ascending order
func (s *Statistics) Seats() []int {
	seats := make([]int, 0, len(s.SeatResults))
	for seat := range s.SeatResults {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	return seats
}

// IsLedgerBalanced checks the showdown split adds up to the total
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) <= 1e-6
}

// Validate checks the accumulated data is internally consistent
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllBB=%.6f, ShowdownBB=%.6f, NonShowdownBB=%.6f",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)", len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("total wins (%d) exceeds total hands (%d)", wins, s.Hands)
	}
	seatHands := 0
	for _, ss := range s.SeatResults {
		seatHands += ss.Hands
	}
	if seatHands != s.Hands {
		return fmt.Errorf("seat hands total (%d) does not match total hands (%d)", seatHands, s.Hands)
	}
	return nil
}

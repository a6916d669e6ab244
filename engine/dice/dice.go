// Package dice implements the seeded dice roller used by the movement module.
package dice

import (
	"errors"
	"math/rand"
)

// ErrInvalidShape indicates a roller was requested with a dice shape the
// rules do not allow.
var ErrInvalidShape = errors.New("dice must have 1-4 dice of 2-20 sides")

// Roll captures the result of throwing every die once.
type Roll struct {
	Values  []int `json:"values"`
	Total   int   `json:"total"`
	Doubles bool  `json:"doubles"`
}

// Roller throws a fixed set of dice from a session-owned random source.
// Sessions seed it once at start so replays under the same seed are
// deterministic.
type Roller struct {
	rng   *rand.Rand
	count int
	sides int
}

// NewRoller builds a roller for count dice of the given number of sides.
func NewRoller(seed int64, count, sides int) (*Roller, error) {
	if count < 1 || count > 4 || sides < 2 || sides > 20 {
		return nil, ErrInvalidShape
	}
	return &Roller{
		rng:   rand.New(rand.NewSource(seed)),
		count: count,
		sides: sides,
	}, nil
}

// Roll throws every die once. Doubles is set only when more than one die
// was thrown and all of them landed on the same face.
func (r *Roller) Roll() Roll {
	roll := Roll{Values: make([]int, r.count)}
	for i := range roll.Values {
		roll.Values[i] = r.rng.Intn(r.sides) + 1
		roll.Total += roll.Values[i]
	}
	if r.count > 1 {
		roll.Doubles = true
		for _, v := range roll.Values[1:] {
			if v != roll.Values[0] {
				roll.Doubles = false
				break
			}
		}
	}
	return roll
}

// Shuffle reorders n elements using the roller's random source. The card
// decks borrow it so one seed drives the whole session.
func (r *Roller) Shuffle(n int, swap func(i, j int)) {
	r.rng.Shuffle(n, swap)
}

// Intn exposes the underlying source for modules that need a raw draw.
func (r *Roller) Intn(n int) int {
	return r.rng.Intn(n)
}

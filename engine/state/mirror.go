package state

import (
	"errors"
	"fmt"
)

// ErrDeltaGap indicates a delta arrived out of order. The transport
// guarantees ordered delivery, so a gap means the mirror missed a
// broadcast and must resync.
var ErrDeltaGap = errors.New("delta out of sequence")

// MirrorBoard is the client-visible view of one combat grid: attack
// results and placement progress only.
type MirrorBoard struct {
	ShipsPlaced int
	Hits        map[Coord]bool
	Misses      map[Coord]bool
}

// Mirror is a client's read-only reconstruction of session state. It is
// built exclusively by applying broadcast deltas in order; it never holds
// deck order or ship placements.
type Mirror struct {
	Phase     Phase
	Turn      int
	Winner    string
	Players   map[string]PlayerRecord
	Ownership map[string]CellOwnership
	Trade     *TradeProposal
	Boards    map[string]*MirrorBoard
	seq       uint64
}

// NewMirror builds an empty mirror awaiting the first delta.
func NewMirror() *Mirror {
	return &Mirror{
		Phase:     PhaseWaiting,
		Players:   make(map[string]PlayerRecord),
		Ownership: make(map[string]CellOwnership),
		Boards:    make(map[string]*MirrorBoard),
	}
}

// Seq returns the sequence number of the last applied delta.
func (m *Mirror) Seq() uint64 { return m.seq }

// Apply folds one delta into the mirror. Records are overwritten
// field-wise keyed by their stable id; absent fields keep their prior
// value.
func (m *Mirror) Apply(d Delta) error {
	if d.Seq != m.seq+1 {
		return fmt.Errorf("%w: have %d, got %d", ErrDeltaGap, m.seq, d.Seq)
	}
	m.seq = d.Seq

	if d.Phase != nil {
		m.Phase = *d.Phase
	}
	if d.Turn != nil {
		m.Turn = *d.Turn
	}
	if d.Winner != nil {
		m.Winner = *d.Winner
	}
	for _, p := range d.Players {
		rec := m.Players[p.ID]
		rec.ID = p.ID
		if p.Seat != nil {
			rec.Seat = *p.Seat
		}
		if p.Name != nil {
			rec.Name = *p.Name
		}
		if p.Position != nil {
			rec.Position = *p.Position
		}
		if p.Money != nil {
			rec.Money = *p.Money
		}
		if p.InJail != nil {
			rec.InJail = *p.InJail
		}
		if p.JailTurns != nil {
			rec.JailTurns = *p.JailTurns
		}
		if p.JailTokens != nil {
			rec.JailTokens = *p.JailTokens
		}
		if p.Bankrupt != nil {
			rec.Bankrupt = *p.Bankrupt
		}
		if p.Eliminated != nil {
			rec.Eliminated = *p.Eliminated
		}
		if p.Resources != nil {
			rec.Resources = make(map[string]int, len(p.Resources))
			for k, v := range p.Resources {
				rec.Resources[k] = v
			}
		}
		m.Players[p.ID] = rec
	}
	for _, c := range d.Cells {
		if c.Cleared {
			delete(m.Ownership, c.CellID)
			continue
		}
		rec := m.Ownership[c.CellID]
		rec.CellID = c.CellID
		if c.OwnerID != nil {
			rec.OwnerID = *c.OwnerID
		}
		if c.Houses != nil {
			rec.Houses = *c.Houses
		}
		if c.Hotel != nil {
			rec.Hotel = *c.Hotel
		}
		if c.Mortgaged != nil {
			rec.Mortgaged = *c.Mortgaged
		}
		m.Ownership[c.CellID] = rec
	}
	if d.Trade != nil {
		if d.Trade.Proposal == nil {
			m.Trade = nil
		} else {
			prop := *d.Trade.Proposal
			m.Trade = &prop
		}
	}
	for _, cb := range d.Combat {
		board := m.Boards[cb.PlayerID]
		if board == nil {
			board = &MirrorBoard{Hits: make(map[Coord]bool), Misses: make(map[Coord]bool)}
			m.Boards[cb.PlayerID] = board
		}
		if cb.ShipsPlaced != nil {
			board.ShipsPlaced = *cb.ShipsPlaced
		}
		for _, h := range cb.Hits {
			board.Hits[h] = true
		}
		for _, ms := range cb.Misses {
			board.Misses[ms] = true
		}
	}
	return nil
}

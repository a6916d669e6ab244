// Package state holds the replicated session data. The host owns the one
// authoritative SessionState; clients hold a Mirror rebuilt from broadcast
// deltas and never mutate records themselves.
package state

import "sort"

// Phase is the coarse lifecycle of a session.
type Phase string

const (
	PhaseWaiting      Phase = "waiting"
	PhasePlacingShips Phase = "placing-ships"
	PhaseInProgress   Phase = "in-progress"
	PhaseGameOver     Phase = "game-over"
)

// PlayerRecord is the replicated per-player state. Compared and replicated
// by value; the stable key is ID.
type PlayerRecord struct {
	ID         string         `json:"id"`
	Seat       int            `json:"seat"`
	Name       string         `json:"name"`
	Position   int            `json:"position"`
	Money      int            `json:"money"`
	InJail     bool           `json:"in_jail"`
	JailTurns  int            `json:"jail_turns"`
	JailTokens int            `json:"jail_tokens"`
	Bankrupt   bool           `json:"bankrupt"`
	Eliminated bool           `json:"eliminated"`
	Resources  map[string]int `json:"resources,omitempty"`
}

// Active reports whether the player still takes turns.
func (p PlayerRecord) Active() bool {
	return !p.Bankrupt && !p.Eliminated
}

// CellOwnership records who owns a cell and what stands on it. At most one
// record exists per cell; a hotel replaces the four houses it consumed.
type CellOwnership struct {
	CellID    string `json:"cell_id"`
	OwnerID   string `json:"owner_id"`
	Houses    int    `json:"houses"`
	Hotel     bool   `json:"hotel"`
	Mortgaged bool   `json:"mortgaged"`
}

// TradeProposal is the single session-wide trade slot. Active is cleared on
// accept, reject or cancel, never silently overwritten.
type TradeProposal struct {
	ProposerID     string   `json:"proposer_id"`
	TargetID       string   `json:"target_id"`
	OfferedCells   []string `json:"offered_cells"`
	RequestedCells []string `json:"requested_cells"`
	OfferedMoney   int      `json:"offered_money"`
	RequestedMoney int      `json:"requested_money"`
	Active         bool     `json:"active"`
}

// Coord addresses one tile of a combat grid.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Ship is one placed ship. Cells never leave the host; only hit results
// are replicated.
type Ship struct {
	Name  string
	Cells []Coord
}

// CombatBoard is one player's grid: placements, and the attacked-cell
// record split into hits and misses.
type CombatBoard struct {
	Width  int
	Height int
	Ships  []Ship
	Hits   map[Coord]bool
	Misses map[Coord]bool
}

// NewCombatBoard builds an empty board of the given size.
func NewCombatBoard(width, height int) *CombatBoard {
	return &CombatBoard{
		Width:  width,
		Height: height,
		Hits:   make(map[Coord]bool),
		Misses: make(map[Coord]bool),
	}
}

// InBounds reports whether the coordinate lies on the board.
func (b *CombatBoard) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < b.Height && c.Col >= 0 && c.Col < b.Width
}

// Attacked reports whether the cell was ever attacked.
func (b *CombatBoard) Attacked(c Coord) bool {
	return b.Hits[c] || b.Misses[c]
}

// Occupied reports whether any ship covers the cell.
func (b *CombatBoard) Occupied(c Coord) bool {
	for _, s := range b.Ships {
		for _, sc := range s.Cells {
			if sc == c {
				return true
			}
		}
	}
	return false
}

// ShipAt returns the ship covering the cell, if any.
func (b *CombatBoard) ShipAt(c Coord) (Ship, bool) {
	for _, s := range b.Ships {
		for _, sc := range s.Cells {
			if sc == c {
				return s, true
			}
		}
	}
	return Ship{}, false
}

// Sunk reports whether every cell of the ship is in the hit set.
func (b *CombatBoard) Sunk(s Ship) bool {
	for _, c := range s.Cells {
		if !b.Hits[c] {
			return false
		}
	}
	return len(s.Cells) > 0
}

// AllSunk reports whether every placed ship is fully hit.
func (b *CombatBoard) AllSunk() bool {
	for _, s := range b.Ships {
		if !b.Sunk(s) {
			return false
		}
	}
	return len(b.Ships) > 0
}

// DeckState is a shuffled draw order plus a cyclic cursor. Host-private:
// it is never included in a delta, so clients cannot observe future draws.
type DeckState struct {
	Order  []int
	Cursor int
}

// Draw returns the next card index and advances the cursor, wrapping after
// the last card.
func (d *DeckState) Draw() int {
	idx := d.Order[d.Cursor]
	d.Cursor = (d.Cursor + 1) % len(d.Order)
	return idx
}

// SessionState is the authoritative replicated state. Exactly one exists
// per session, mutated only by the host's command loop.
type SessionState struct {
	Phase     Phase
	Players   map[string]*PlayerRecord
	Order     []string
	Turn      int
	Ownership map[string]*CellOwnership
	Trade     *TradeProposal
	Boards    map[string]*CombatBoard
	Chance    DeckState
	Chest     DeckState
	Winner    string
	Seq       uint64
}

// NewSessionState builds an empty waiting-phase state.
func NewSessionState() *SessionState {
	return &SessionState{
		Phase:     PhaseWaiting,
		Players:   make(map[string]*PlayerRecord),
		Ownership: make(map[string]*CellOwnership),
		Boards:    make(map[string]*CombatBoard),
	}
}

// Player returns a value copy of the record, so callers can never alias
// authoritative state.
func (s *SessionState) Player(id string) (PlayerRecord, bool) {
	p, ok := s.Players[id]
	if !ok {
		return PlayerRecord{}, false
	}
	return *p, true
}

// CurrentPlayer returns the id owning the turn cursor.
func (s *SessionState) CurrentPlayer() string {
	if len(s.Order) == 0 {
		return ""
	}
	return s.Order[s.Turn]
}

// Owner returns a value copy of a cell's ownership record.
func (s *SessionState) Owner(cellID string) (CellOwnership, bool) {
	o, ok := s.Ownership[cellID]
	if !ok {
		return CellOwnership{}, false
	}
	return *o, true
}

// PropertiesOf lists the cell ids owned by a player, sorted for stable
// iteration.
func (s *SessionState) PropertiesOf(playerID string) []string {
	var out []string
	for id, o := range s.Ownership {
		if o.OwnerID == playerID {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// ActiveCount counts players still in turn rotation.
func (s *SessionState) ActiveCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Active() {
			n++
		}
	}
	return n
}

// LastActive returns the sole remaining active player, if exactly one.
func (s *SessionState) LastActive() (string, bool) {
	last := ""
	for _, id := range s.Order {
		if s.Players[id].Active() {
			if last != "" {
				return "", false
			}
			last = id
		}
	}
	return last, last != ""
}

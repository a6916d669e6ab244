package state

// Delta is the changed-fields patch produced by one host-side mutation and
// broadcast to every client in mutation order. Pointer fields distinguish
// "unchanged" from "set to zero value". Hidden information (deck order,
// ship placements) never appears in a delta.
type Delta struct {
	Seq     uint64        `json:"seq"`
	Phase   *Phase        `json:"phase,omitempty"`
	Turn    *int          `json:"turn,omitempty"`
	Winner  *string       `json:"winner,omitempty"`
	Players []PlayerPatch `json:"players,omitempty"`
	Cells   []CellPatch   `json:"cells,omitempty"`
	Trade   *TradePatch   `json:"trade,omitempty"`
	Combat  []CombatPatch `json:"combat,omitempty"`
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return d.Phase == nil && d.Turn == nil && d.Winner == nil &&
		len(d.Players) == 0 && len(d.Cells) == 0 && d.Trade == nil && len(d.Combat) == 0
}

// PlayerPatch is a field-wise overwrite of one player record, keyed by id.
type PlayerPatch struct {
	ID         string         `json:"id"`
	Seat       *int           `json:"seat,omitempty"`
	Name       *string        `json:"name,omitempty"`
	Position   *int           `json:"position,omitempty"`
	Money      *int           `json:"money,omitempty"`
	InJail     *bool          `json:"in_jail,omitempty"`
	JailTurns  *int           `json:"jail_turns,omitempty"`
	JailTokens *int           `json:"jail_tokens,omitempty"`
	Bankrupt   *bool          `json:"bankrupt,omitempty"`
	Eliminated *bool          `json:"eliminated,omitempty"`
	Resources  map[string]int `json:"resources,omitempty"`
}

// CellPatch is a field-wise overwrite of one ownership record. A patch
// with Cleared set removes the record (property released to the bank).
type CellPatch struct {
	CellID    string  `json:"cell_id"`
	Cleared   bool    `json:"cleared,omitempty"`
	OwnerID   *string `json:"owner_id,omitempty"`
	Houses    *int    `json:"houses,omitempty"`
	Hotel     *bool   `json:"hotel,omitempty"`
	Mortgaged *bool   `json:"mortgaged,omitempty"`
}

// TradePatch replaces the trade slot wholesale; the proposal is small and
// its lifecycle is all-or-nothing.
type TradePatch struct {
	Proposal *TradeProposal `json:"proposal"`
}

// CombatPatch reveals attack outcomes on one player's grid. Ship cells are
// deliberately absent.
type CombatPatch struct {
	PlayerID    string  `json:"player_id"`
	ShipsPlaced *int    `json:"ships_placed,omitempty"`
	Hits        []Coord `json:"hits,omitempty"`
	Misses      []Coord `json:"misses,omitempty"`
}

// Patch construction helpers. Modules build patches from the values they
// just wrote, so the delta always reflects the post-mutation record.

func IntPtr(v int) *int       { return &v }
func BoolPtr(v bool) *bool    { return &v }
func StrPtr(v string) *string { return &v }
func PhasePtr(p Phase) *Phase { return &p }

// OwnershipPatch snapshots a full ownership record into a patch.
func OwnershipPatch(o CellOwnership) CellPatch {
	return CellPatch{
		CellID:    o.CellID,
		OwnerID:   StrPtr(o.OwnerID),
		Houses:    IntPtr(o.Houses),
		Hotel:     BoolPtr(o.Hotel),
		Mortgaged: BoolPtr(o.Mortgaged),
	}
}

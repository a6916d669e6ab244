package engine

import "github.com/hybridboard/gametable-backend/engine/state"

// Command is a player-issued request. Commands are validated against
// current state and turn ownership before any mutation happens.
type Command interface {
	name() string
}

// RollDice throws the session dice and moves the player's pawn.
type RollDice struct{}

// EndTurn yields the turn to the next eligible player.
type EndTurn struct{}

// PurchaseProperty buys the cell the player is standing on.
type PurchaseProperty struct{}

// BuildHouse adds one house to an owned cell.
type BuildHouse struct {
	CellID string
}

// BuildHotel converts four houses on an owned cell into a hotel.
type BuildHotel struct {
	CellID string
}

// UseJailToken spends a release token to leave jail.
type UseJailToken struct{}

// PayJailFine buys the player out of jail.
type PayJailFine struct{}

// PlaceShip places one ship during the placement phase. Phase-gated, not
// turn-gated.
type PlaceShip struct {
	Ship       string
	At         state.Coord
	Horizontal bool
}

// Attack fires at one cell of another player's grid.
type Attack struct {
	TargetID string
	At       state.Coord
}

// ProposeTrade opens the session's single trade slot. Not turn-gated.
type ProposeTrade struct {
	TargetID       string
	OfferedCells   []string
	RequestedCells []string
	OfferedMoney   int
	RequestedMoney int
}

// RespondTrade accepts or rejects the active proposal. Not turn-gated.
type RespondTrade struct {
	Accept bool
}

// CancelTrade withdraws the active proposal. Not turn-gated.
type CancelTrade struct{}

func (RollDice) name() string         { return "roll-dice" }
func (EndTurn) name() string          { return "end-turn" }
func (PurchaseProperty) name() string { return "request-buy" }
func (BuildHouse) name() string       { return "buy-house" }
func (BuildHotel) name() string       { return "buy-hotel" }
func (UseJailToken) name() string     { return "use-jail-card" }
func (PayJailFine) name() string      { return "pay-out-jail" }
func (PlaceShip) name() string        { return "place-ship" }
func (Attack) name() string           { return "attack" }
func (ProposeTrade) name() string     { return "propose-trade" }
func (RespondTrade) name() string     { return "respond-trade" }
func (CancelTrade) name() string      { return "cancel-trade" }

// turnGated reports whether the command requires holding the turn cursor.
// Trade commands run under their own sub-machine; ship placement is gated
// by phase instead.
func turnGated(cmd Command) bool {
	switch cmd.(type) {
	case PlaceShip, ProposeTrade, RespondTrade, CancelTrade:
		return false
	}
	return true
}

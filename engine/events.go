package engine

import "github.com/hybridboard/gametable-backend/engine/state"

// Event is one entry of the notification surface. The transport marshals
// the payload and broadcasts it to the session's room under EventName.
type Event interface {
	EventName() string
}

// TurnChanged announces the player now holding the turn cursor.
type TurnChanged struct {
	PlayerID string `json:"player_id"`
}

func (TurnChanged) EventName() string { return "turn-changed" }

// DiceRolled reports the throw that just resolved.
type DiceRolled struct {
	PlayerID string `json:"player_id"`
	Values   []int  `json:"values"`
	Total    int    `json:"total"`
	Doubles  bool   `json:"doubles"`
}

func (DiceRolled) EventName() string { return "dice-rolled" }

// PlayerMoved reports a pawn's new board position.
type PlayerMoved struct {
	PlayerID    string `json:"player_id"`
	Position    int    `json:"position"`
	PassedStart bool   `json:"passed_start"`
}

func (PlayerMoved) EventName() string { return "player-moved" }

// MoneyChanged reports a player's new balance.
type MoneyChanged struct {
	PlayerID string `json:"player_id"`
	Money    int    `json:"money"`
}

func (MoneyChanged) EventName() string { return "money-changed" }

// PropertyPurchased reports a completed purchase.
type PropertyPurchased struct {
	PlayerID string `json:"player_id"`
	CellID   string `json:"cell_id"`
}

func (PropertyPurchased) EventName() string { return "property-purchased" }

// BuildingChanged reports a cell's new building state.
type BuildingChanged struct {
	CellID string `json:"cell_id"`
	Houses int    `json:"houses"`
	Hotel  bool   `json:"hotel"`
}

func (BuildingChanged) EventName() string { return "building-changed" }

// CardDrawn reveals a drawn card's effect. Future deck order stays hidden.
type CardDrawn struct {
	PlayerID    string `json:"player_id"`
	Deck        string `json:"deck"`
	Description string `json:"description"`
}

func (CardDrawn) EventName() string { return "card-drawn" }

// ShipPlaced reports placement progress without revealing cells.
type ShipPlaced struct {
	PlayerID  string `json:"player_id"`
	Remaining int    `json:"remaining"`
}

func (ShipPlaced) EventName() string { return "ship-placed" }

// Attack outcomes.
const (
	AttackMiss       = "miss"
	AttackHit        = "hit"
	AttackSunk       = "sunk"
	AttackEliminated = "eliminated"
)

// AttackResolved reports one attack and its outcome.
type AttackResolved struct {
	AttackerID string      `json:"attacker_id"`
	TargetID   string      `json:"target_id"`
	Cell       state.Coord `json:"cell"`
	Result     string      `json:"result"`
}

func (AttackResolved) EventName() string { return "attack-resolved" }

// PlayerEliminated reports removal from turn rotation.
type PlayerEliminated struct {
	PlayerID string `json:"player_id"`
}

func (PlayerEliminated) EventName() string { return "player-eliminated" }

// TradeProposed announces the new active proposal.
type TradeProposed struct {
	Proposal state.TradeProposal `json:"proposal"`
}

func (TradeProposed) EventName() string { return "trade-proposed" }

// Trade resolutions.
const (
	TradeAccepted  = "accepted"
	TradeRejected  = "rejected"
	TradeCancelled = "cancelled"
)

// TradeResolved announces how the active proposal ended.
type TradeResolved struct {
	Status string `json:"status"`
}

func (TradeResolved) EventName() string { return "trade-resolved" }

// GameMessage is free-form informational text for the display layer.
type GameMessage struct {
	Text string `json:"text"`
}

func (GameMessage) EventName() string { return "game-message" }

// GameOver is terminal. WinnerID is empty when no winner is determinable.
type GameOver struct {
	WinnerID string `json:"winner_id"`
}

func (GameOver) EventName() string { return "game-over" }

// StateDelta carries the changed-fields patch for client mirrors. Emitted
// last for every mutating command, in mutation order.
type StateDelta struct {
	Delta state.Delta `json:"delta"`
}

func (StateDelta) EventName() string { return "state-delta" }

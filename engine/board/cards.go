package board

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Card effect kinds, dispatched by the card module.
const (
	CardMoveTo      = "move-to"       // absolute position
	CardMoveNearest = "move-nearest"  // forward to nearest cell of TargetKind
	CardMoveBy      = "move-by"       // relative, may be negative
	CardMoney       = "money"         // collect (positive) or pay (negative)
	CardMoneyEach   = "money-each"    // collect from / pay to every other player
	CardGoToJail    = "go-to-jail"    //
	CardJailToken   = "jail-token"    // grant a release token
	CardRepairs     = "repairs"       // PerHouse/PerHotel across all buildings
)

// Card is one entry of a deck.
type Card struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Amount      int    `json:"amount"`
	Position    int    `json:"position"`
	TargetKind  string `json:"target_kind"`
	PerHouse    int    `json:"per_house"`
	PerHotel    int    `json:"per_hotel"`
}

// Decks holds the two effect card decks in their printed order. Sessions
// shuffle a copy of the indexes, never the decks themselves.
type Decks struct {
	Chance []Card `json:"chance"`
	Chest  []Card `json:"chest"`
}

//go:embed cards.json
var cardsJSON []byte

// LoadDecks parses the embedded card definitions.
func LoadDecks() (*Decks, error) {
	var d Decks
	if err := json.Unmarshal(cardsJSON, &d); err != nil {
		return nil, fmt.Errorf("card decks: %w", err)
	}
	if len(d.Chance) == 0 || len(d.Chest) == 0 {
		return nil, fmt.Errorf("card decks: both decks must be non-empty")
	}
	return &d, nil
}

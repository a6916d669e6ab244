// Package rules defines the declarative rule configuration a session is
// composed from. A Config is pure data: it is validated once before a
// session starts and never mutated afterwards.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Victory enumerates the supported win conditions.
type Victory string

const (
	// VictoryLastSolvent ends the game when one non-bankrupt player remains.
	VictoryLastSolvent Victory = "last-solvent"
	// VictoryLastStanding ends the game when one non-eliminated player
	// remains on the combat boards.
	VictoryLastStanding Victory = "last-standing"
	// VictoryMoneyThreshold ends the game when any player's balance reaches
	// MoneyThreshold.
	VictoryMoneyThreshold Victory = "money-threshold"
)

// ShipSpec describes one ship type available during placement.
type ShipSpec struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
	Count  int    `json:"count"`
}

// Config enumerates which mechanics are active for a session. Immutable
// once a session starts; persisted as a flat JSON record when saved as a
// named preset.
type Config struct {
	MinPlayers int `json:"min_players"`
	MaxPlayers int `json:"max_players"`

	CurrencyEnabled bool `json:"currency_enabled"`
	StartingBalance int  `json:"starting_balance"`
	PassStartBonus  int  `json:"pass_start_bonus"`
	JailFine        int  `json:"jail_fine"`

	SharedBoard     bool `json:"shared_board"`
	PropertyEnabled bool `json:"property_enabled"`
	TradingEnabled  bool `json:"trading_enabled"`
	CardsEnabled    bool `json:"cards_enabled"`

	CombatEnabled bool       `json:"combat_enabled"`
	GridWidth     int        `json:"grid_width"`
	GridHeight    int        `json:"grid_height"`
	Ships         []ShipSpec `json:"ships"`

	DiceCount int `json:"dice_count"`
	DiceSides int `json:"dice_sides"`

	Resources []string `json:"resources"`

	Victory        Victory `json:"victory"`
	MoneyThreshold int     `json:"money_threshold"`
}

// ErrInvalidConfig wraps every validation failure so callers can detect
// configuration errors as a class.
var ErrInvalidConfig = errors.New("invalid rule configuration")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks the configuration for self-consistency. It is the only
// place a rule set can fail; composing modules from a validated config
// cannot.
func (c Config) Validate() error {
	if c.MinPlayers < 2 || c.MaxPlayers > 8 || c.MinPlayers > c.MaxPlayers {
		return invalid("player bounds %d-%d outside 2-8", c.MinPlayers, c.MaxPlayers)
	}
	if c.DiceCount < 1 || c.DiceCount > 4 || c.DiceSides < 2 || c.DiceSides > 20 {
		return invalid("dice shape %dd%d outside 1-4 dice of 2-20 sides", c.DiceCount, c.DiceSides)
	}
	if c.CurrencyEnabled && c.StartingBalance <= 0 {
		return invalid("currency requires a positive starting balance")
	}
	if c.PropertyEnabled && !c.SharedBoard {
		return invalid("property rules require the shared board")
	}
	if c.PropertyEnabled && !c.CurrencyEnabled {
		return invalid("property rules require currency")
	}
	if c.TradingEnabled && !c.PropertyEnabled {
		return invalid("trading requires property rules")
	}
	if c.CardsEnabled && !c.SharedBoard {
		return invalid("card decks require the shared board")
	}
	if c.CombatEnabled {
		if c.GridWidth < 5 || c.GridWidth > 26 || c.GridHeight < 5 || c.GridHeight > 26 {
			return invalid("combat grid %dx%d outside 5-26", c.GridWidth, c.GridHeight)
		}
		if len(c.Ships) == 0 {
			return invalid("combat requires at least one ship type")
		}
		for _, s := range c.Ships {
			if s.Name == "" || s.Count < 1 {
				return invalid("ship %q must be named with a positive count", s.Name)
			}
			if s.Length < 1 || s.Length > c.GridWidth || s.Length > c.GridHeight {
				return invalid("ship %q length %d does not fit the grid", s.Name, s.Length)
			}
		}
	}
	seen := map[string]bool{}
	for _, r := range c.Resources {
		if r == "" {
			return invalid("resource names must be non-empty")
		}
		if seen[r] {
			return invalid("duplicate resource %q", r)
		}
		seen[r] = true
	}
	switch c.Victory {
	case VictoryLastSolvent:
		if !c.CurrencyEnabled {
			return invalid("last-solvent victory requires currency")
		}
	case VictoryMoneyThreshold:
		if !c.CurrencyEnabled {
			return invalid("money-threshold victory requires currency")
		}
		if c.MoneyThreshold <= c.StartingBalance {
			return invalid("money threshold must exceed the starting balance")
		}
	case VictoryLastStanding:
		if !c.CombatEnabled {
			return invalid("last-standing victory requires combat")
		}
	default:
		return invalid("unknown victory condition %q", c.Victory)
	}
	return nil
}

// Marshal renders the config as the flat JSON record stored in presets.
func (c Config) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal parses and validates a stored preset record.
func Unmarshal(data []byte) (Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, invalid("malformed preset: %v", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// DefaultShips is the placement set used when a combat preset does not
// override it.
func DefaultShips() []ShipSpec {
	return []ShipSpec{
		{Name: "carrier", Length: 5, Count: 1},
		{Name: "battleship", Length: 4, Count: 1},
		{Name: "cruiser", Length: 3, Count: 1},
		{Name: "submarine", Length: 3, Count: 1},
		{Name: "destroyer", Length: 2, Count: 1},
	}
}

// ClassicProperty is the shared-board trading economy game.
func ClassicProperty() Config {
	return Config{
		MinPlayers: 2, MaxPlayers: 8,
		CurrencyEnabled: true, StartingBalance: 1500, PassStartBonus: 200, JailFine: 50,
		SharedBoard: true, PropertyEnabled: true, TradingEnabled: true, CardsEnabled: true,
		DiceCount: 2, DiceSides: 6,
		Victory: VictoryLastSolvent,
	}
}

// DiceRace is the shared-board race with currency but no property rules.
func DiceRace() Config {
	return Config{
		MinPlayers: 2, MaxPlayers: 8,
		CurrencyEnabled: true, StartingBalance: 500, PassStartBonus: 100, JailFine: 25,
		SharedBoard: true, CardsEnabled: true,
		DiceCount: 2, DiceSides: 6,
		Victory: VictoryMoneyThreshold, MoneyThreshold: 1500,
	}
}

// GridCombat is the separate-board combat game.
func GridCombat() Config {
	return Config{
		MinPlayers: 2, MaxPlayers: 4,
		CombatEnabled: true, GridWidth: 10, GridHeight: 10, Ships: DefaultShips(),
		DiceCount: 1, DiceSides: 6,
		Victory: VictoryLastStanding,
	}
}

// Hybrid composes property, cards and combat into one session.
func Hybrid() Config {
	c := ClassicProperty()
	c.CombatEnabled = true
	c.GridWidth = 8
	c.GridHeight = 8
	c.Ships = []ShipSpec{
		{Name: "cruiser", Length: 3, Count: 1},
		{Name: "destroyer", Length: 2, Count: 2},
	}
	c.Victory = VictoryLastSolvent
	return c
}

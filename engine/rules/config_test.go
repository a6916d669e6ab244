package rules

import (
	"errors"
	"testing"
)

func TestBuiltinPresetsValidate(t *testing.T) {
	for name, preset := range map[string]func() Config{
		"classic-property": ClassicProperty,
		"dice-race":        DiceRace,
		"grid-combat":      GridCombat,
		"hybrid":           Hybrid,
	} {
		if err := preset().Validate(); err != nil {
			t.Fatalf("%s preset failed validation: %v", name, err)
		}
	}
}

func TestValidateRejectsContradictions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted player bounds", func(c *Config) { c.MinPlayers = 5; c.MaxPlayers = 3 }},
		{"too many players", func(c *Config) { c.MaxPlayers = 9 }},
		{"money victory without currency", func(c *Config) {
			c.CurrencyEnabled = false
			c.PropertyEnabled = false
			c.TradingEnabled = false
			c.Victory = VictoryMoneyThreshold
			c.MoneyThreshold = 2000
		}},
		{"threshold below starting balance", func(c *Config) {
			c.Victory = VictoryMoneyThreshold
			c.MoneyThreshold = 100
		}},
		{"trading without property", func(c *Config) { c.PropertyEnabled = false }},
		{"property without currency", func(c *Config) { c.CurrencyEnabled = false; c.TradingEnabled = false }},
		{"bad dice", func(c *Config) { c.DiceSides = 1 }},
		{"combat without ships", func(c *Config) {
			c.CombatEnabled = true
			c.GridWidth = 10
			c.GridHeight = 10
			c.Ships = nil
		}},
		{"ship longer than grid", func(c *Config) {
			c.CombatEnabled = true
			c.GridWidth = 5
			c.GridHeight = 5
			c.Ships = []ShipSpec{{Name: "leviathan", Length: 9, Count: 1}}
		}},
		{"duplicate resources", func(c *Config) { c.Resources = []string{"wood", "wood"} }},
		{"empty resource name", func(c *Config) { c.Resources = []string{""} }},
		{"unknown victory", func(c *Config) { c.Victory = "coin-flip" }},
	}
	for _, tc := range cases {
		cfg := ClassicProperty()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: error %v is not ErrInvalidConfig", tc.name, err)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Hybrid()
	raw, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	got, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if got.GridWidth != cfg.GridWidth || len(got.Ships) != len(cfg.Ships) {
		t.Fatalf("round trip lost combat config: %+v", got)
	}
	if got.Victory != cfg.Victory {
		t.Fatalf("round trip lost victory condition: %q", got.Victory)
	}
}

func TestUnmarshalRejectsMalformed(t *testing.T) {
	if _, err := Unmarshal([]byte("{")); err == nil {
		t.Fatal("malformed JSON accepted")
	}
	if _, err := Unmarshal([]byte(`{"min_players":1}`)); err == nil {
		t.Fatal("invalid config accepted")
	}
}

package engine

// ModuleSet is the subset of rule modules a session's configuration
// activates. Modules are independent: none assumes another exists, which
// is what lets one engine host structurally different games without a
// game-type tag anywhere.
type ModuleSet struct {
	Movement *movementModule
	Currency *currencyModule
	Property *propertyModule
	Trade    *tradeModule
	Combat   *combatModule
	Cards    *cardsModule
}

// Compose activates the modules the validated configuration implies.
// Composition itself cannot fail; contradictory flag combinations are
// caught by rules.Config.Validate before a session is built.
func Compose(s *Session) ModuleSet {
	cfg := s.cfg
	// Movement (and the board layout it moves over) is always present;
	// rolls on sessions without a shared board resolve to nothing but a
	// throw.
	m := ModuleSet{Movement: &movementModule{s: s}}
	if cfg.CurrencyEnabled {
		m.Currency = &currencyModule{s: s}
	}
	if cfg.PropertyEnabled || cfg.TradingEnabled {
		m.Property = &propertyModule{s: s}
	}
	if cfg.TradingEnabled {
		m.Trade = &tradeModule{s: s}
	}
	if cfg.CombatEnabled {
		m.Combat = &combatModule{s: s}
	}
	if cfg.CardsEnabled {
		m.Cards = &cardsModule{s: s}
	}
	return m
}

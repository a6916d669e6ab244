package models

// RulePreset is a named, saved rule configuration. The Rules column holds
// the flat JSON record produced by engine/rules.Config.Marshal; it is the
// only engine artifact that survives outside a live session.
type RulePreset struct {
	Id      string
	Name    string
	OwnerId string
	Rules   string
}

type PresetCreateDto struct {
	Name  string `json:"name"`
	Rules string `json:"rules"`
}

package models

// Game statuses as stored in the lobby table.
const (
	GameOpen       = "open"
	GameInProgress = "in progress"
	GameDone       = "done"
)

// Game is one lobby entry. Rules holds the flat JSON rule configuration
// the session will be composed from.
type Game struct {
	Id     string
	Name   string
	Status string
	Rules  string
}

type GameCreateDto struct {
	Name   string `json:"name"`
	Preset string `json:"preset"`
	Rules  string `json:"rules"`
}

type VerifyGameDto struct {
	Code    string `query:"code"`
	User_id string `query:"user_id"`
}

package models

// Player is one seat of a lobby: the roster row that exists before and
// during a session. Live game state never touches the database.
type Player struct {
	User_id  string
	Game_id  string
	Username string
}

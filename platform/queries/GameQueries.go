// Package queries holds the lobby persistence operations: games, rosters
// and users. Live session state is the engine's alone and never touches
// these tables.
package queries

import (
	"github.com/go-pg/pg/v10"

	"github.com/hybridboard/gametable-backend/app/models"
	"github.com/hybridboard/gametable-backend/engine/rules"
)

// GameByID loads one lobby row.
func GameByID(id string, db *pg.DB) (*models.Game, error) {
	game := &models.Game{Id: id}
	if err := db.Model(game).WherePK().Select(); err != nil {
		return nil, err
	}
	return game, nil
}

// GameRules parses the rule configuration stored with the lobby.
func GameRules(game *models.Game) (rules.Config, error) {
	return rules.Unmarshal([]byte(game.Rules))
}

// VerifyGame reports whether a lobby row exists.
func VerifyGame(id string, db *pg.DB) bool {
	_, err := GameByID(id, db)
	return err == nil
}

// SetGameStatus flips the lobby status.
func SetGameStatus(id, status string, db *pg.DB) error {
	game := &models.Game{Id: id}
	_, err := db.Model(game).WherePK().Set("status = ?", status).Update()
	return err
}

// GetUserData loads the account behind a player id.
func GetUserData(userID string, db *pg.DB) (*models.User, error) {
	user := &models.User{Id: userID}
	if err := db.Model(user).WherePK().Select(); err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePlayer seats a user in a lobby roster.
func CreatePlayer(player models.Player, db *pg.DB) error {
	_, err := db.Model(&player).Insert()
	return err
}

// DeletePlayer removes one roster row; an emptied lobby is deleted with
// it.
func DeletePlayer(userID, gameID string, db *pg.DB) error {
	player := new(models.Player)
	_, err := db.Model(player).Where("user_id = ? and game_id = ?", userID, gameID).Delete()

	var players []models.Player
	if cErr := db.Model(&players).Where("game_id = ?", gameID).Select(); cErr != nil || len(players) == 0 {
		game := new(models.Game)
		db.Model(game).Where("id = ?", gameID).Delete()
	}
	return err
}

// DeleteGamePlayers clears the whole roster of a finished game.
func DeleteGamePlayers(gameID string, db *pg.DB) error {
	player := new(models.Player)
	_, err := db.Model(player).Where("game_id = ?", gameID).Delete()
	return err
}

package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/hybridboard/gametable-backend/app/models"
	"github.com/hybridboard/gametable-backend/engine/rules"
	"github.com/hybridboard/gametable-backend/pkg"
	"github.com/hybridboard/gametable-backend/platform/cache"
	"github.com/hybridboard/gametable-backend/platform/database"
)

// builtinPresets maps the named rule sets every server offers.
var builtinPresets = map[string]func() rules.Config{
	"classic-property": rules.ClassicProperty,
	"dice-race":        rules.DiceRace,
	"grid-combat":      rules.GridCombat,
	"hybrid":           rules.Hybrid,
}

// CreateGame opens a lobby entry. The rule configuration comes either
// from a built-in preset name or from an inline JSON record; it is
// validated here so a session can never be started from a bad config.
func CreateGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	gameCreateDto := new(models.GameCreateDto)
	if err := c.BodyParser(gameCreateDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	var cfg rules.Config
	switch {
	case gameCreateDto.Rules != "":
		var err error
		cfg, err = rules.Unmarshal([]byte(gameCreateDto.Rules))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	case gameCreateDto.Preset != "":
		preset, ok := builtinPresets[gameCreateDto.Preset]
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown preset"})
		}
		cfg = preset()
	default:
		cfg = rules.ClassicProperty()
	}

	raw, err := cfg.Marshal()
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	game := &models.Game{
		Id:     pkg.RandString(8),
		Name:   gameCreateDto.Name,
		Status: models.GameOpen,
		Rules:  string(raw),
	}
	if _, err := db.Model(game).Insert(); err != nil {
		logrus.WithError(err).Error("failed creating game")
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{"id": game.Id})
}

// seatedCount reads how many players the session registry has seated in
// a lobby. The socket layer keeps the roster in redis under "<id>.order";
// a missing key just means nobody joined yet.
func seatedCount(gameID string) int {
	conn, err := cache.CreateRedisConnection()
	if err != nil {
		logrus.WithError(err).Warn("redis unavailable, reporting empty roster")
		return 0
	}
	defer conn.Close()

	n, err := cache.LLEN(gameID+".order", conn)
	if err != nil {
		return 0
	}
	return n
}

// GetAllAvailGames lists lobbies still waiting for players, with the
// live seat count from the session registry attached to each.
func GetAllAvailGames(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	var games []models.Game
	if err := db.Model(&games).Where("status = ?", models.GameOpen).Select(); err != nil {
		logrus.WithError(err).Error("failed listing games")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	out := make([]fiber.Map, 0, len(games))
	for _, g := range games {
		out = append(out, fiber.Map{
			"id":     g.Id,
			"name":   g.Name,
			"rules":  g.Rules,
			"seated": seatedCount(g.Id),
		})
	}
	return c.JSON(out)
}

// FindAvailGame returns one joinable lobby, if any. A lobby whose
// roster already holds the rule set's player cap is not joinable even
// while the host has not started it yet.
func FindAvailGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	var games []models.Game
	if err := db.Model(&games).Where("status = ?", models.GameOpen).Select(); err != nil {
		return c.JSON(fiber.Map{"id": ""})
	}
	for _, g := range games {
		cfg, err := rules.Unmarshal([]byte(g.Rules))
		if err != nil {
			logrus.WithField("game", g.Id).WithError(err).Error("stored rules unreadable")
			continue
		}
		if seatedCount(g.Id) < cfg.MaxPlayers {
			return c.JSON(fiber.Map{"id": g.Id})
		}
	}
	return c.JSON(fiber.Map{"id": ""})
}

// VerifyGame reports whether a game code refers to a joinable lobby,
// along with who is already seated at it.
func VerifyGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	verifyGameDto := new(models.VerifyGameDto)
	if err := c.QueryParser(verifyGameDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	game := &models.Game{Id: verifyGameDto.Code}
	if err := db.Model(game).WherePK().Select(); err != nil {
		return c.JSON(fiber.Map{"status": false})
	}

	var roster []string
	if conn, err := cache.CreateRedisConnection(); err == nil {
		roster, _ = cache.LGET(game.Id+".order", conn)
		conn.Close()
	}
	return c.JSON(fiber.Map{
		"status": game.Status == models.GameOpen,
		"seated": roster,
	})
}

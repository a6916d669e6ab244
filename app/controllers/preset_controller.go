package controllers

import (
	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/gofiber/fiber/v2"
	uuid "github.com/satori/go.uuid"

	"github.com/hybridboard/gametable-backend/app/models"
	"github.com/hybridboard/gametable-backend/engine/rules"
	"github.com/hybridboard/gametable-backend/platform/database"
)

func authedUser(c *fiber.Ctx) string {
	user, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims := user.Claims.(jwt.MapClaims)
	id, _ := claims["user_id"].(string)
	return id
}

// CreatePreset saves a validated rule configuration under a name.
func CreatePreset(c *fiber.Ctx) error {
	ownerID := authedUser(c)
	if ownerID == "" {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	dto := new(models.PresetCreateDto)
	if err := c.BodyParser(dto); err != nil || dto.Name == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	cfg, err := rules.Unmarshal([]byte(dto.Rules))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	raw, err := cfg.Marshal()
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	db := database.PostgreSQLConnection()
	defer db.Close()

	preset := &models.RulePreset{
		Id:      uuid.NewV4().String(),
		Name:    dto.Name,
		OwnerId: ownerID,
		Rules:   string(raw),
	}
	if _, err := db.Model(preset).Insert(); err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": preset.Id})
}

// GetPresets lists the authenticated user's saved presets.
func GetPresets(c *fiber.Ctx) error {
	ownerID := authedUser(c)
	if ownerID == "" {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	db := database.PostgreSQLConnection()
	defer db.Close()

	var presets []models.RulePreset
	if err := db.Model(&presets).Where("owner_id = ?", ownerID).Select(); err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.JSON(presets)
}

// GetPreset fetches one preset by id.
func GetPreset(c *fiber.Ctx) error {
	ownerID := authedUser(c)
	if ownerID == "" {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	db := database.PostgreSQLConnection()
	defer db.Close()

	preset := &models.RulePreset{Id: c.Query("id")}
	if err := db.Model(preset).WherePK().Select(); err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if preset.OwnerId != ownerID {
		return c.SendStatus(fiber.StatusForbidden)
	}
	return c.JSON(preset)
}

package controllers

import (
	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/gofiber/fiber/v2"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hybridboard/gametable-backend/app/models"
	"github.com/hybridboard/gametable-backend/platform/config"
	"github.com/hybridboard/gametable-backend/platform/database"
)

// CreateUser registers an account with a bcrypt-hashed password.
func CreateUser(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	userDto := new(models.UserDto)
	if err := c.BodyParser(userDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if userDto.Email == "" || userDto.Pass == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(userDto.Pass), bcrypt.DefaultCost)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	_, err = db.Model(&models.User{
		Id:       uuid.NewV4().String(),
		Email:    userDto.Email,
		Password: string(hash),
	}).Insert()
	if err != nil {
		return c.SendStatus(fiber.StatusConflict)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// Login verifies credentials and mints a JWT carrying the user id.
func Login(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	userDto := new(models.UserDto)
	if err := c.BodyParser(userDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	user := new(models.User)
	if err := db.Model(user).Where("email = ?", userDto.Email).Select(); err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(userDto.Pass)) != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	cfg, err := config.Load()
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = user.Id
	t, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{"access_token": t})
}

// Cur returns the authenticated user's id.
func Cur(c *fiber.Ctx) error {
	user := c.Locals("user").(*jwt.Token)
	claims := user.Claims.(jwt.MapClaims)
	return c.SendString(claims["user_id"].(string))
}

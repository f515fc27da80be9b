package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"crmapi/models"
	"crmapi/utils"
)

type AuthController struct {
	DB           *gorm.DB
	TokenManager *utils.TokenManager
	Logger       *logrus.Logger
}

func NewAuthController(db *gorm.DB, tm *utils.TokenManager, logger *logrus.Logger) *AuthController {
	return &AuthController{
		DB:           db,
		TokenManager: tm,
		Logger:       logger,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

// Register creates a new account with a bcrypt-hashed password. The
// plaintext password is never persisted or logged.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	// Advisory duplicate check; the unique index on username stays the
	// source of truth under concurrent registration
	var existingUser models.User
	if err := ac.DB.Where("username = ?", req.Username).First(&existingUser).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "username already registered", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create user", nil)
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "username already registered", nil)
		}
		ac.Logger.WithError(err).Error("failed to create user")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create user", nil)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login verifies the credentials and issues an access token. Unknown user
// and wrong password are indistinguishable to the caller; only a known,
// correctly authenticated but deactivated account gets the activation hint.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var user models.User
	if err := ac.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return ac.rejectLogin(c, "Incorrect username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return ac.rejectLogin(c, "Incorrect username or password")
	}

	if !user.IsActive {
		return ac.rejectLogin(c, "Ask for account activation")
	}

	accessToken, err := ac.TokenManager.Generate(user.Username)
	if err != nil {
		ac.Logger.WithError(err).Error("failed to generate token")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate token", nil)
	}

	return c.JSON(AuthResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		User:        &user,
	})
}

// GetCurrentUser returns the account resolved by the access gate
func (ac *AuthController) GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(user)
}

func (ac *AuthController) rejectLogin(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return utils.ErrorResponse(c, fiber.StatusUnauthorized, message, nil)
}

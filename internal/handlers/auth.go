package handlers

import (
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lay2al/movie-and--series-managment-system/internal/database"
	"github.com/lay2al/movie-and--series-managment-system/internal/middleware"
	"github.com/lay2al/movie-and--series-managment-system/internal/models"
	"github.com/lay2al/movie-and--series-managment-system/pkg/logger"
	"github.com/lay2al/movie-and--series-managment-system/pkg/utils"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{DB: db}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	return h.register(c, models.UserRoleUser)
}

// RegisterAdmin is routed behind AdminOnly; only an existing admin can mint
// another one.
func (h *AuthHandler) RegisterAdmin(c *fiber.Ctx) error {
	return h.register(c, models.UserRoleAdmin)
}

func (h *AuthHandler) register(c *fiber.Ctx, role models.UserRole) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid email address")
	}
	if len(req.Password) < 6 {
		return utils.Error(c, fiber.StatusBadRequest, "password must be at least 6 characters")
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return utils.Error(c, fiber.StatusBadRequest, "name must be at least 2 characters")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed hashing password")
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return utils.Error(c, fiber.StatusConflict, "email already registered")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating user")
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
	})

	return utils.Success(c, fiber.StatusCreated, user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	// One generic failure for unknown email and wrong password alike, so the
	// endpoint cannot be used to probe which addresses are registered.
	var user models.User
	err := h.DB.First(&user, "email = ?", normalizeEmail(req.Email)).Error
	if err != nil || !utils.CheckPassword(req.Password, user.PasswordHash) {
		logger.Warn("login_failed", map[string]interface{}{"ip": c.IP()})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	logger.InfoWithUser(user.ID.String(), "login_succeeded", map[string]interface{}{
		"role": string(user.Role),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", identity.UserID).Error; err != nil {
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	}

	return utils.Success(c, fiber.StatusOK, user)
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 {
			return utils.Error(c, fiber.StatusBadRequest, "name must be at least 2 characters")
		}
		updates["name"] = name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid email address")
		}
		updates["email"] = email
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return utils.Error(c, fiber.StatusBadRequest, "password must be at least 6 characters")
		}
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed hashing password")
		}
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	result := h.DB.Model(&models.User{}).Where("id = ?", identity.UserID).Updates(updates)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return utils.Error(c, fiber.StatusConflict, "email already registered")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating profile")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", identity.UserID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching updated profile")
	}

	return utils.Success(c, fiber.StatusOK, user)
}

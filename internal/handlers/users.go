package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lay2al/movie-and--series-managment-system/internal/middleware"
	"github.com/lay2al/movie-and--series-managment-system/internal/models"
	"github.com/lay2al/movie-and--series-managment-system/pkg/logger"
	"github.com/lay2al/movie-and--series-managment-system/pkg/utils"
	"gorm.io/gorm"
)

type UsersHandler struct {
	DB *gorm.DB
}

func NewUsersHandler(db *gorm.DB) *UsersHandler {
	return &UsersHandler{DB: db}
}

func (h *UsersHandler) List(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	query := h.DB.Model(&models.User{})
	if search != "" {
		searchValue := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", searchValue, searchValue)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed counting users")
	}

	var users []models.User
	if err := utils.ApplyPagination(query.Order("created_at DESC"), p).Find(&users).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing users")
	}

	return utils.Paginated(c, users, p.Page, p.Limit, total)
}

type updateRoleRequest struct {
	Role models.UserRole `json:"role"`
}

func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !models.ValidUserRole(req.Role) {
		return utils.Error(c, fiber.StatusBadRequest, "invalid role")
	}

	result := h.DB.Model(&models.User{}).Where("id = ?", userID).Update("role", req.Role)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating role")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	}

	// The change only reaches the holder once their current token expires;
	// claims issued before this update still carry the old role.
	logger.Info("user_role_changed", map[string]interface{}{
		"user_id": userID.String(),
		"role":    string(req.Role),
	})

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching updated user")
	}

	return utils.Success(c, fiber.StatusOK, user)
}

// Delete removes an account. Regular users may delete only themselves;
// admins may delete anyone. The account's watchlist entries go with it.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	if identity.Role != models.UserRoleAdmin && identity.UserID != userID {
		return utils.Error(c, fiber.StatusForbidden, "can only delete your own account")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.WatchlistEntry{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.User{}, "id = ?", userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting user")
	}

	logger.InfoWithUser(identity.UserID.String(), "user_deleted", map[string]interface{}{
		"deleted_user_id": userID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "user deleted"})
}

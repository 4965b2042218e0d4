package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lay2al/movie-and--series-managment-system/internal/middleware"
	"github.com/lay2al/movie-and--series-managment-system/internal/models"
	"github.com/lay2al/movie-and--series-managment-system/internal/services"
	"github.com/lay2al/movie-and--series-managment-system/pkg/logger"
	"github.com/lay2al/movie-and--series-managment-system/pkg/utils"
)

type WatchlistHandler struct {
	Service *services.WatchlistService
}

func NewWatchlistHandler(service *services.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{Service: service}
}

func watchlistError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidReference),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidRating):
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrCatalogItemNotFound),
		errors.Is(err, services.ErrEntryNotFound):
		return utils.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateEntry):
		return utils.Error(c, fiber.StatusConflict, err.Error())
	default:
		return utils.Error(c, fiber.StatusInternalServerError, "watchlist operation failed")
	}
}

type createEntryRequest struct {
	MovieID  *uuid.UUID          `json:"movieID"`
	SeriesID *uuid.UUID          `json:"seriesID"`
	Status   *models.WatchStatus `json:"status"`
}

func (h *WatchlistHandler) Create(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	var req createEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := h.Service.Add(c.Context(), identity.UserID, services.AddEntryParams{
		MovieID:  req.MovieID,
		SeriesID: req.SeriesID,
		Status:   req.Status,
	})
	if err != nil {
		return watchlistError(c, err)
	}

	logger.InfoWithUser(identity.UserID.String(), "watchlist_entry_added", map[string]interface{}{
		"entry_id": entry.ID.String(),
		"status":   string(entry.Status),
	})

	return utils.Success(c, fiber.StatusCreated, entry)
}

func (h *WatchlistHandler) List(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	entries, err := h.Service.List(c.Context(), identity.UserID)
	if err != nil {
		return watchlistError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, entries)
}

func (h *WatchlistHandler) ListMovies(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	entries, err := h.Service.ListMovies(c.Context(), identity.UserID)
	if err != nil {
		return watchlistError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, entries)
}

func (h *WatchlistHandler) ListSeries(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	entries, err := h.Service.ListSeries(c.Context(), identity.UserID)
	if err != nil {
		return watchlistError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, entries)
}

func (h *WatchlistHandler) ListByStatus(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	entries, err := h.Service.ListByStatus(c.Context(), identity.UserID, models.WatchStatus(c.Params("status")))
	if err != nil {
		return watchlistError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, entries)
}

func (h *WatchlistHandler) Get(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	entryID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid entry id")
	}

	entry, err := h.Service.Get(c.Context(), entryID, identity.UserID)
	if err != nil {
		return watchlistError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, entry)
}

type updateEntryRequest struct {
	Status *models.WatchStatus `json:"status"`
	Rating *float64            `json:"rating"`
	Notes  *string             `json:"notes"`
}

func (h *WatchlistHandler) Update(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	entryID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid entry id")
	}

	var req updateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := h.Service.Update(c.Context(), entryID, identity.UserID, services.UpdateEntryParams{
		Status: req.Status,
		Rating: req.Rating,
		Notes:  req.Notes,
	})
	if err != nil {
		return watchlistError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, entry)
}

func (h *WatchlistHandler) Delete(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	entryID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid entry id")
	}

	if err := h.Service.Remove(c.Context(), entryID, identity.UserID); err != nil {
		return watchlistError(c, err)
	}

	logger.InfoWithUser(identity.UserID.String(), "watchlist_entry_removed", map[string]interface{}{
		"entry_id": entryID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "item removed from watchlist"})
}

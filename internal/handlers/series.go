package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lay2al/movie-and--series-managment-system/internal/middleware"
	"github.com/lay2al/movie-and--series-managment-system/internal/models"
	"github.com/lay2al/movie-and--series-managment-system/internal/storage"
	"github.com/lay2al/movie-and--series-managment-system/pkg/logger"
	"github.com/lay2al/movie-and--series-managment-system/pkg/utils"
	"gorm.io/gorm"
)

type SeriesHandler struct {
	DB      *gorm.DB
	Storage *storage.MinIOClient
}

func NewSeriesHandler(db *gorm.DB, store *storage.MinIOClient) *SeriesHandler {
	return &SeriesHandler{DB: db, Storage: store}
}

func (h *SeriesHandler) List(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	query := h.DB.Model(&models.Series{})
	if search != "" {
		searchValue := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(genre) LIKE ?", searchValue, searchValue)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed counting series")
	}

	var series []models.Series
	if err := utils.ApplyPagination(query.Order("created_at DESC"), p).Find(&series).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing series")
	}

	return utils.Paginated(c, series, p.Page, p.Limit, total)
}

func (h *SeriesHandler) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return utils.Error(c, fiber.StatusBadRequest, "query parameter q is required")
	}

	searchValue := "%" + strings.ToLower(q) + "%"
	var series []models.Series
	err := h.DB.
		Where("LOWER(title) LIKE ? OR LOWER(genre) LIKE ? OR LOWER(synopsis) LIKE ?",
			searchValue, searchValue, searchValue).
		Order("rating DESC").
		Find(&series).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed searching series")
	}

	return utils.Success(c, fiber.StatusOK, series)
}

func (h *SeriesHandler) Get(c *fiber.Ctx) error {
	seriesID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid series id")
	}

	var series models.Series
	if err := h.DB.First(&series, "id = ?", seriesID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "series not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching series")
	}

	return utils.Success(c, fiber.StatusOK, series)
}

type createSeriesRequest struct {
	Title            string   `json:"title"`
	StartYear        int      `json:"startYear"`
	EndYear          *int     `json:"endYear"`
	Genre            string   `json:"genre"`
	Synopsis         string   `json:"synopsis"`
	Creator          *string  `json:"creator"`
	Cast             []string `json:"cast"`
	NumberOfSeasons  int      `json:"numberOfSeasons"`
	NumberOfEpisodes *int     `json:"numberOfEpisodes"`
	Rating           *float64 `json:"rating"`
	Poster           *string  `json:"poster"`
}

func (h *SeriesHandler) Create(c *fiber.Ctx) error {
	var req createSeriesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Title) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "title is required")
	}
	if req.StartYear < 1900 {
		return utils.Error(c, fiber.StatusBadRequest, "startYear is required")
	}
	if req.EndYear != nil && *req.EndYear < req.StartYear {
		return utils.Error(c, fiber.StatusBadRequest, "endYear cannot precede startYear")
	}
	if strings.TrimSpace(req.Genre) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "genre is required")
	}
	if strings.TrimSpace(req.Synopsis) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "synopsis is required")
	}
	if req.NumberOfSeasons < 1 {
		return utils.Error(c, fiber.StatusBadRequest, "numberOfSeasons must be at least 1")
	}
	if req.NumberOfEpisodes != nil && *req.NumberOfEpisodes < 1 {
		return utils.Error(c, fiber.StatusBadRequest, "numberOfEpisodes must be at least 1")
	}
	if req.Rating != nil && !isValidRating(*req.Rating) {
		return utils.Error(c, fiber.StatusBadRequest, "rating must be between 0 and 10")
	}

	series := models.Series{
		Title:            strings.TrimSpace(req.Title),
		StartYear:        req.StartYear,
		EndYear:          req.EndYear,
		Genre:            strings.TrimSpace(req.Genre),
		Synopsis:         req.Synopsis,
		Creator:          req.Creator,
		Cast:             req.Cast,
		NumberOfSeasons:  req.NumberOfSeasons,
		NumberOfEpisodes: req.NumberOfEpisodes,
		Rating:           req.Rating,
		Poster:           req.Poster,
	}
	if err := h.DB.Create(&series).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating series")
	}

	identity := middleware.GetIdentity(c)
	logger.InfoWithUser(identity.UserID.String(), "series_created", map[string]interface{}{
		"series_id": series.ID.String(),
		"title":     series.Title,
	})

	return utils.Success(c, fiber.StatusCreated, series)
}

type updateSeriesRequest struct {
	Title            *string  `json:"title"`
	StartYear        *int     `json:"startYear"`
	EndYear          *int     `json:"endYear"`
	Genre            *string  `json:"genre"`
	Synopsis         *string  `json:"synopsis"`
	Creator          *string  `json:"creator"`
	Cast             []string `json:"cast"`
	NumberOfSeasons  *int     `json:"numberOfSeasons"`
	NumberOfEpisodes *int     `json:"numberOfEpisodes"`
	Rating           *float64 `json:"rating"`
	Poster           *string  `json:"poster"`
}

func (h *SeriesHandler) Update(c *fiber.Ctx) error {
	seriesID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid series id")
	}

	var req updateSeriesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return utils.Error(c, fiber.StatusBadRequest, "title cannot be empty")
		}
		updates["title"] = title
	}
	if req.StartYear != nil {
		if *req.StartYear < 1900 {
			return utils.Error(c, fiber.StatusBadRequest, "invalid startYear")
		}
		updates["start_year"] = *req.StartYear
	}
	if req.EndYear != nil {
		updates["end_year"] = *req.EndYear
	}
	if req.Genre != nil {
		genre := strings.TrimSpace(*req.Genre)
		if genre == "" {
			return utils.Error(c, fiber.StatusBadRequest, "genre cannot be empty")
		}
		updates["genre"] = genre
	}
	if req.Synopsis != nil {
		updates["synopsis"] = *req.Synopsis
	}
	if req.Creator != nil {
		updates["creator"] = *req.Creator
	}
	if req.Cast != nil {
		updates["cast"] = models.StringList(req.Cast)
	}
	if req.NumberOfSeasons != nil {
		if *req.NumberOfSeasons < 1 {
			return utils.Error(c, fiber.StatusBadRequest, "numberOfSeasons must be at least 1")
		}
		updates["number_of_seasons"] = *req.NumberOfSeasons
	}
	if req.NumberOfEpisodes != nil {
		if *req.NumberOfEpisodes < 1 {
			return utils.Error(c, fiber.StatusBadRequest, "numberOfEpisodes must be at least 1")
		}
		updates["number_of_episodes"] = *req.NumberOfEpisodes
	}
	if req.Rating != nil {
		if !isValidRating(*req.Rating) {
			return utils.Error(c, fiber.StatusBadRequest, "rating must be between 0 and 10")
		}
		updates["rating"] = *req.Rating
	}
	if req.Poster != nil {
		updates["poster"] = *req.Poster
	}

	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	result := h.DB.Model(&models.Series{}).Where("id = ?", seriesID).Updates(updates)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating series")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "series not found")
	}

	var series models.Series
	if err := h.DB.First(&series, "id = ?", seriesID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching updated series")
	}

	return utils.Success(c, fiber.StatusOK, series)
}

func (h *SeriesHandler) Delete(c *fiber.Ctx) error {
	seriesID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid series id")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.WatchlistEntry{}, "series_id = ?", seriesID).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Series{}, "id = ?", seriesID)
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
			return utils.Error(c, fiber.StatusNotFound, "series not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting series")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "series deleted"})
}

func (h *SeriesHandler) UploadPoster(c *fiber.Ctx) error {
	seriesID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid series id")
	}

	var series models.Series
	if err := h.DB.First(&series, "id = ?", seriesID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "series not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching series")
	}

	fileHeader, err := c.FormFile("poster")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "no poster file uploaded")
	}
	if fileHeader.Size > maxPosterSize {
		return utils.Error(c, fiber.StatusBadRequest, "poster exceeds the 5MB limit")
	}
	contentType := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedPosterTypes[contentType]
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "poster must be a jpeg, png or webp image")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed reading poster file")
	}
	defer file.Close()

	objectName := fmt.Sprintf("series/%s%s", seriesID, ext)
	if err := h.Storage.Upload(c.Context(), objectName, file, fileHeader.Size, contentType); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed storing poster")
	}

	posterURL := h.Storage.PublicURL(objectName)
	if err := h.DB.Model(&series).Update("poster", posterURL).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed saving poster reference")
	}
	series.Poster = &posterURL

	return utils.Success(c, fiber.StatusOK, series)
}

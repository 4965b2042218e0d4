package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lay2al/movie-and--series-managment-system/internal/middleware"
	"github.com/lay2al/movie-and--series-managment-system/internal/models"
	"github.com/lay2al/movie-and--series-managment-system/internal/storage"
	"github.com/lay2al/movie-and--series-managment-system/pkg/logger"
	"github.com/lay2al/movie-and--series-managment-system/pkg/utils"
	"gorm.io/gorm"
)

type MoviesHandler struct {
	DB      *gorm.DB
	Storage *storage.MinIOClient
}

func NewMoviesHandler(db *gorm.DB, store *storage.MinIOClient) *MoviesHandler {
	return &MoviesHandler{DB: db, Storage: store}
}

func (h *MoviesHandler) List(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	query := h.DB.Model(&models.Movie{})
	if search != "" {
		searchValue := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(genre) LIKE ?", searchValue, searchValue)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed counting movies")
	}

	var movies []models.Movie
	if err := utils.ApplyPagination(query.Order("created_at DESC"), p).Find(&movies).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing movies")
	}

	return utils.Paginated(c, movies, p.Page, p.Limit, total)
}

func (h *MoviesHandler) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return utils.Error(c, fiber.StatusBadRequest, "query parameter q is required")
	}

	searchValue := "%" + strings.ToLower(q) + "%"
	var movies []models.Movie
	err := h.DB.
		Where("LOWER(title) LIKE ? OR LOWER(genre) LIKE ? OR LOWER(synopsis) LIKE ?",
			searchValue, searchValue, searchValue).
		Order("rating DESC").
		Find(&movies).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed searching movies")
	}

	return utils.Success(c, fiber.StatusOK, movies)
}

func (h *MoviesHandler) Get(c *fiber.Ctx) error {
	movieID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid movie id")
	}

	var movie models.Movie
	if err := h.DB.First(&movie, "id = ?", movieID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "movie not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching movie")
	}

	return utils.Success(c, fiber.StatusOK, movie)
}

type createMovieRequest struct {
	Title       string   `json:"title"`
	ReleaseDate string   `json:"releaseDate"`
	Genre       string   `json:"genre"`
	Synopsis    string   `json:"synopsis"`
	Director    *string  `json:"director"`
	Cast        []string `json:"cast"`
	Duration    *int     `json:"duration"`
	Rating      *float64 `json:"rating"`
	Poster      *string  `json:"poster"`
}

func (h *MoviesHandler) Create(c *fiber.Ctx) error {
	var req createMovieRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Title) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "title is required")
	}
	releaseDate, err := time.Parse("2006-01-02", req.ReleaseDate)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "releaseDate must be formatted YYYY-MM-DD")
	}
	if strings.TrimSpace(req.Genre) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "genre is required")
	}
	if strings.TrimSpace(req.Synopsis) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "synopsis is required")
	}
	if req.Duration != nil && *req.Duration < 1 {
		return utils.Error(c, fiber.StatusBadRequest, "duration must be at least 1 minute")
	}
	if req.Rating != nil && !isValidRating(*req.Rating) {
		return utils.Error(c, fiber.StatusBadRequest, "rating must be between 0 and 10")
	}

	movie := models.Movie{
		Title:       strings.TrimSpace(req.Title),
		ReleaseDate: releaseDate,
		Genre:       strings.TrimSpace(req.Genre),
		Synopsis:    req.Synopsis,
		Director:    req.Director,
		Cast:        req.Cast,
		Duration:    req.Duration,
		Rating:      req.Rating,
		Poster:      req.Poster,
	}
	if err := h.DB.Create(&movie).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating movie")
	}

	identity := middleware.GetIdentity(c)
	logger.InfoWithUser(identity.UserID.String(), "movie_created", map[string]interface{}{
		"movie_id": movie.ID.String(),
		"title":    movie.Title,
	})

	return utils.Success(c, fiber.StatusCreated, movie)
}

type updateMovieRequest struct {
	Title       *string  `json:"title"`
	ReleaseDate *string  `json:"releaseDate"`
	Genre       *string  `json:"genre"`
	Synopsis    *string  `json:"synopsis"`
	Director    *string  `json:"director"`
	Cast        []string `json:"cast"`
	Duration    *int     `json:"duration"`
	Rating      *float64 `json:"rating"`
	Poster      *string  `json:"poster"`
}

func (h *MoviesHandler) Update(c *fiber.Ctx) error {
	movieID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid movie id")
	}

	var req updateMovieRequest
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
	if req.ReleaseDate != nil {
		releaseDate, err := time.Parse("2006-01-02", *req.ReleaseDate)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "releaseDate must be formatted YYYY-MM-DD")
		}
		updates["release_date"] = releaseDate
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
	if req.Director != nil {
		updates["director"] = *req.Director
	}
	if req.Cast != nil {
		updates["cast"] = models.StringList(req.Cast)
	}
	if req.Duration != nil {
		if *req.Duration < 1 {
			return utils.Error(c, fiber.StatusBadRequest, "duration must be at least 1 minute")
		}
		updates["duration"] = *req.Duration
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

	result := h.DB.Model(&models.Movie{}).Where("id = ?", movieID).Updates(updates)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating movie")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "movie not found")
	}

	var movie models.Movie
	if err := h.DB.First(&movie, "id = ?", movieID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching updated movie")
	}

	return utils.Success(c, fiber.StatusOK, movie)
}

// Delete removes a movie and every watchlist entry referencing it, in one
// transaction, so no entry is left pointing at a missing catalog item.
func (h *MoviesHandler) Delete(c *fiber.Ctx) error {
	movieID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid movie id")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.WatchlistEntry{}, "movie_id = ?", movieID).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Movie{}, "id = ?", movieID)
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
			return utils.Error(c, fiber.StatusNotFound, "movie not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting movie")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "movie deleted"})
}

func (h *MoviesHandler) UploadPoster(c *fiber.Ctx) error {
	movieID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid movie id")
	}

	var movie models.Movie
	if err := h.DB.First(&movie, "id = ?", movieID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "movie not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching movie")
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

	objectName := fmt.Sprintf("movies/%s%s", movieID, ext)
	if err := h.Storage.Upload(c.Context(), objectName, file, fileHeader.Size, contentType); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed storing poster")
	}

	posterURL := h.Storage.PublicURL(objectName)
	if err := h.DB.Model(&movie).Update("poster", posterURL).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed saving poster reference")
	}
	movie.Poster = &posterURL

	return utils.Success(c, fiber.StatusOK, movie)
}

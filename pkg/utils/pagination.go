package utils

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Pagination struct {
	Page  int
	Limit int
}

func ParsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return Pagination{Page: page, Limit: limit}
}

func ApplyPagination(query *gorm.DB, p Pagination) *gorm.DB {
	return query.Offset((p.Page - 1) * p.Limit).Limit(p.Limit)
}

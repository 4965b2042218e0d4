package models

import "github.com/google/uuid"

type WatchStatus string

const (
	WatchStatusNotWatched  WatchStatus = "NOT_WATCHED"
	WatchStatusWantToWatch WatchStatus = "WANT_TO_WATCH"
	WatchStatusWatching    WatchStatus = "WATCHING"
	WatchStatusCompleted   WatchStatus = "COMPLETED"
)

func ValidWatchStatus(status WatchStatus) bool {
	switch status {
	case WatchStatusNotWatched, WatchStatusWantToWatch, WatchStatusWatching, WatchStatusCompleted:
		return true
	default:
		return false
	}
}

// WatchlistEntry tracks one user's progress against a single catalog item.
// Exactly one of MovieID and SeriesID is set; the storage layer enforces
// both the XOR shape and per-user uniqueness of the referenced item.
type WatchlistEntry struct {
	BaseModel
	UserID   uuid.UUID   `json:"userID" gorm:"type:uuid;not null;index"`
	MovieID  *uuid.UUID  `json:"movieID,omitempty" gorm:"type:uuid;index"`
	SeriesID *uuid.UUID  `json:"seriesID,omitempty" gorm:"type:uuid;index"`
	Status   WatchStatus `json:"status" gorm:"type:varchar(20);not null;default:'NOT_WATCHED'"`
	Rating   *float64    `json:"rating,omitempty"`
	Notes    *string     `json:"notes,omitempty" gorm:"type:text"`

	User   User    `json:"-" gorm:"foreignKey:UserID;references:ID"`
	Movie  *Movie  `json:"movie,omitempty" gorm:"foreignKey:MovieID;references:ID"`
	Series *Series `json:"series,omitempty" gorm:"foreignKey:SeriesID;references:ID"`
}

func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}

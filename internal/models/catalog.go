package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a string slice as a JSON column so the same model works
// against postgres and the sqlite test database.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
}

type Movie struct {
	BaseModel
	Title       string     `json:"title" gorm:"type:varchar(255);not null;index"`
	ReleaseDate time.Time  `json:"releaseDate" gorm:"not null"`
	Genre       string     `json:"genre" gorm:"type:varchar(100);not null;index"`
	Synopsis    string     `json:"synopsis" gorm:"type:text;not null"`
	Director    *string    `json:"director,omitempty" gorm:"type:varchar(255)"`
	Cast        StringList `json:"cast,omitempty" gorm:"type:text"`
	Duration    *int       `json:"duration,omitempty"`
	Rating      *float64   `json:"rating,omitempty"`
	Poster      *string    `json:"poster,omitempty" gorm:"type:text"`

	WatchlistEntries []WatchlistEntry `json:"-" gorm:"foreignKey:MovieID"`
}

func (Movie) TableName() string {
	return "movies"
}

type Series struct {
	BaseModel
	Title            string     `json:"title" gorm:"type:varchar(255);not null;index"`
	StartYear        int        `json:"startYear" gorm:"not null"`
	EndYear          *int       `json:"endYear,omitempty"`
	Genre            string     `json:"genre" gorm:"type:varchar(100);not null;index"`
	Synopsis         string     `json:"synopsis" gorm:"type:text;not null"`
	Creator          *string    `json:"creator,omitempty" gorm:"type:varchar(255)"`
	Cast             StringList `json:"cast,omitempty" gorm:"type:text"`
	NumberOfSeasons  int        `json:"numberOfSeasons" gorm:"not null"`
	NumberOfEpisodes *int       `json:"numberOfEpisodes,omitempty"`
	Rating           *float64   `json:"rating,omitempty"`
	Poster           *string    `json:"poster,omitempty" gorm:"type:text"`

	WatchlistEntries []WatchlistEntry `json:"-" gorm:"foreignKey:SeriesID"`
}

func (Series) TableName() string {
	return "series"
}

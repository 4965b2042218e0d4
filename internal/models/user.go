package models

type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleUser  UserRole = "USER"
)

func ValidUserRole(role UserRole) bool {
	return role == UserRoleAdmin || role == UserRoleUser
}

type User struct {
	BaseModel
	Email            string           `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash     string           `json:"-" gorm:"type:text;not null"`
	Name             string           `json:"name" gorm:"type:varchar(100);not null"`
	Role             UserRole         `json:"role" gorm:"type:varchar(20);not null;default:'USER'"`
	WatchlistEntries []WatchlistEntry `json:"-" gorm:"foreignKey:UserID"`
}

package model

import "time"

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// User carries just enough identity for the progress engine: credentials
// and registration live with the external identity provider, phone-OTP
// login is the only flow handled here.
// swagger:model User
type User struct {
	BaseModel
	Name     string    `gorm:"size:100" json:"name"`
	Phone    string    `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	Email    string    `gorm:"size:100" json:"email"`
	Role     UserRole  `gorm:"type:enum('student','admin');default:'student'" json:"role"`
	Disabled bool      `gorm:"default:false" json:"disabled"`
	LastSeen time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

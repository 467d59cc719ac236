package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Accounts & roles
// ============================================================

// User represents users table. ManagerID links every account but the root to
// the account that created it; the links form a forest.
type User struct {
	ID             uint          `gorm:"primaryKey" json:"-"`
	Username       string        `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email          string        `gorm:"size:100" json:"email,omitempty"`
	Password       string        `gorm:"size:255;not null" json:"-"`
	Role           string        `gorm:"size:20;index;not null" json:"role"`
	ManageLocation string        `gorm:"size:16;index;not null" json:"manage_location"`
	ManagerID      *uint         `gorm:"index" json:"-"`
	Active         bool          `gorm:"not null;default:false" json:"active"`
	SurveyTime     DeclareWindow `gorm:"embedded;embeddedPrefix:survey_time_" json:"survey_time"`
	IsFinish       bool          `gorm:"not null;default:false" json:"is_finish"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DeclareWindow is the survey_time sub-object; both ends are unset until a
// manager opens a window.
type DeclareWindow struct {
	Start *time.Time `gorm:"column:start" json:"start,omitempty"`
	End   *time.Time `gorm:"column:end" json:"end,omitempty"`
}

// IsSet reports whether a window has been opened.
func (w DeclareWindow) IsSet() bool {
	return w.Start != nil && w.End != nil
}

// UserResponse DTO
type UserResponse struct {
	Username       string        `json:"username"`
	Email          string        `json:"email,omitempty"`
	Role           string        `json:"role"`
	ManageLocation string        `json:"manage_location"`
	Active         bool          `json:"active"`
	SurveyTime     DeclareWindow `json:"survey_time"`
	IsFinish       bool          `json:"is_finish"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		ManageLocation: u.ManageLocation,
		Active:         u.Active,
		SurveyTime:     u.SurveyTime,
		IsFinish:       u.IsFinish,
		CreatedAt:      u.CreatedAt,
	}
}

// Role represents roles table
type Role struct {
	Name        string `gorm:"primaryKey;size:20" json:"name"`
	Description string `gorm:"size:100" json:"description"`
}

func (Role) TableName() string {
	return "roles"
}

// RoleChild is one edge of the role graph: Parent may assign Child.
type RoleChild struct {
	Parent string `gorm:"primaryKey;size:20" json:"parent"`
	Child  string `gorm:"primaryKey;size:20" json:"child"`
}

func (RoleChild) TableName() string {
	return "role_children"
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Role{},
		&RoleChild{},
		&RefreshToken{},
		&Country{},
		&City{},
		&District{},
		&Ward{},
		&CivilGroup{},
		&LocationLink{},
		&Survey{},
	)
}

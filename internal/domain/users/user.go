package users

import (
	"time"

	"github.com/hackhub-dev/server/internal/auth"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

type SocialLinks struct {
	GitHub   string `json:"github" validate:"omitempty,weburl"`
	LinkedIn string `json:"linkedin" validate:"omitempty,weburl"`
	Twitter  string `json:"twitter" validate:"omitempty,weburl"`
	Website  string `json:"website" validate:"omitempty,weburl"`
}

type Notifications struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

type Preferences struct {
	Theme         Theme         `json:"theme" validate:"oneof=light dark auto"`
	Notifications Notifications `json:"notifications"`
}

// DefaultPreferences are assigned at signup.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         ThemeAuto,
		Notifications: Notifications{Email: true, Push: false},
	}
}

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Bio          string
	SocialLinks  SocialLinks
	Preferences  Preferences
	Role         auth.Role
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public projection of a user. It never carries credentials.
type Profile struct {
	ID          string      `json:"id"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Email       string      `json:"email"`
	Bio         string      `json:"bio"`
	SocialLinks SocialLinks `json:"socialLinks"`
	Preferences Preferences `json:"preferences"`
	Role        auth.Role   `json:"role"`
	IsActive    bool        `json:"isActive"`
	LastLogin   *time.Time  `json:"lastLogin"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Bio:         u.Bio,
		SocialLinks: u.SocialLinks,
		Preferences: u.Preferences,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Stats summarizes a member's participation.
type Stats struct {
	MemberSince     time.Time  `json:"memberSince"`
	LastLogin       *time.Time `json:"lastLogin"`
	TotalEvents     int        `json:"totalEvents"`
	CompletedEvents int        `json:"completedEvents"`
	TotalWins       int        `json:"totalWins"`
	AverageScore    float64    `json:"averageScore"`
}

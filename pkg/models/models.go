package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered community member.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	Username     string    `json:"username" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role" gorm:"default:member"` // member, admin
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is a server-side login session referenced by an opaque cookie token.
type Session struct {
	Token     string    `json:"-" gorm:"primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is a forum post. Body is stored already sanitized.
type Post struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	AuthorID  uuid.UUID `json:"author_id" gorm:"type:uuid;index"`
	Title     string    `json:"title"`
	Body      string    `json:"body" gorm:"type:text"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event is a community meetup or workshop.
type Event struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedBy   uuid.UUID  `json:"created_by" gorm:"type:uuid;index"`
	Title       string     `json:"title"`
	Description string     `json:"description" gorm:"type:text"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at" gorm:"index"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Resource is an educational link or article reference.
type Resource struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid;index"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Category    string    `json:"category" gorm:"index"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

// Business is a directory entry for a merchant accepting BTC.
// Submissions start unapproved and only appear publicly once approved.
type Business struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	SubmittedBy uuid.UUID `json:"submitted_by" gorm:"type:uuid;index"`
	Name        string    `json:"name"`
	Category    string    `json:"category" gorm:"index"`
	District    string    `json:"district"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Website     string    `json:"website"`
	Description string    `json:"description" gorm:"type:text"`
	Approved    bool      `json:"approved" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CarouselSlide is a homepage media carousel entry.
type CarouselSlide struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	ImageURL  string    `json:"image_url"`
	Caption   string    `json:"caption"`
	LinkURL   string    `json:"link_url"`
	Position  int       `json:"position" gorm:"index"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Username    string `json:"username" binding:"required,min=3,max=30,alphanum"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=80"`
}

// LoginRequest accepts email or username in the login field.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PostRequest is the payload for creating or updating a forum post.
type PostRequest struct {
	Title string `json:"title" binding:"required,min=3,max=200"`
	Body  string `json:"body" binding:"required,min=1"`
}

// EventRequest is the payload for creating or updating an event.
type EventRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=200"`
	Description string     `json:"description" binding:"required"`
	Location    string     `json:"location" binding:"required,max=200"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

// ResourceRequest is the payload for submitting a resource.
type ResourceRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	URL         string `json:"url" binding:"required,url"`
	Category    string `json:"category" binding:"required,max=60"`
	Description string `json:"description" binding:"max=2000"`
}

// BusinessRequest is the payload for submitting a directory entry.
type BusinessRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Category    string `json:"category" binding:"required,max=60"`
	District    string `json:"district" binding:"required,max=80"`
	Address     string `json:"address" binding:"max=200"`
	Phone       string `json:"phone" binding:"max=30"`
	Website     string `json:"website" binding:"omitempty,url"`
	Description string `json:"description" binding:"max=2000"`
}

// SlideRequest is the payload for managing a carousel slide.
type SlideRequest struct {
	ImageURL string `json:"image_url" binding:"required,url"`
	Caption  string `json:"caption" binding:"max=200"`
	LinkURL  string `json:"link_url" binding:"omitempty,url"`
	Position int    `json:"position" binding:"min=0"`
	Active   bool   `json:"active"`
}

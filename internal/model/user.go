package model

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID         int64     `db:"id" json:"id"`
	Username   string    `db:"username" json:"username"`
	Email      string    `db:"email" json:"-"`
	Password   string    `db:"password" json:"-"` // bcrypt hash
	FirstName  string    `db:"first_name" json:"firstName"`
	LastName   string    `db:"last_name" json:"lastName"`
	NArticles  int       `db:"n_articles" json:"nArticles"`
	NComments  int       `db:"n_comments" json:"nComments"`
	NLikes     int       `db:"n_likes" json:"nLikes"`
	NFollowers int       `db:"n_followers" json:"nFollowers"`
	NFollowing int       `db:"n_following" json:"nFollowing"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"-"`
}

// PublicProfile is what other users see. Comment and like counters are
// private to the owner.
type PublicProfile struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	NArticles  int       `json:"nArticles"`
	NFollowers int       `json:"nFollowers"`
	NFollowing int       `json:"nFollowing"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		NArticles:  u.NArticles,
		NFollowers: u.NFollowers,
		NFollowing: u.NFollowing,
		CreatedAt:  u.CreatedAt,
	}
}

// UserSummary is the author/user reference embedded in other views.
type UserSummary struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=20,username"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required,alpha"`
	LastName  string `json:"lastName" validate:"required,alpha"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID int64  `json:"userId"`
	Token  string `json:"token"`
}

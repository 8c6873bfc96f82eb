package user

import "time"

type Status string

const (
	// StatusProspect is the initial state; first attended class in a
	// program converts the member to active.
	StatusProspect Status = "prospect"
	StatusActive   Status = "active"
)

type User struct {
	ID              int        `db:"id" json:"id"`
	GymID           int        `db:"gym_id" json:"gym_id"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Role            string     `db:"role" json:"role"`
	Status          Status     `db:"status" json:"status"`
	ClassCredits    int        `db:"class_credits" json:"class_credits"`
	AttendanceCount int        `db:"attendance_count" json:"attendance_count"`
	ConvertedAt     *time.Time `db:"converted_at" json:"converted_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	GymID    int    `json:"gym_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

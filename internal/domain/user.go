package domain

import "time"

// User is a registered account. Publishers own bootcamps and courses; users write reviews.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor returns the identity used for authorization decisions.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// UserFilter pages through users.
type UserFilter struct {
	Role   string
	Limit  int
	Offset int
}

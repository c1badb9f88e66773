package user

import (
	"errors"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	BirthDate    time.Time `json:"birthDate"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	RoleID       string    `json:"roleId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already exists")
)

type CreateUserRequest struct {
	FirstName   string    `json:"firstName" binding:"required,min=1,max=80"`
	LastName    string    `json:"lastName" binding:"required,min=1,max=80"`
	Email       string    `json:"email" binding:"required,email"`
	Password    string    `json:"password" binding:"required,min=8"`
	BirthDate   time.Time `json:"birthDate" binding:"required"`
	PhoneNumber string    `json:"phoneNumber" binding:"omitempty,min=7,max=20"`
	RoleID      string    `json:"roleId" binding:"required,uuid"`
}

// a full update payload; password is optional and is re-hashed when present.
type UpdateUserRequest struct {
	FirstName   string    `json:"firstName" binding:"required,min=1,max=80"`
	LastName    string    `json:"lastName" binding:"required,min=1,max=80"`
	Email       string    `json:"email" binding:"required,email"`
	Password    string    `json:"password" binding:"omitempty,min=8"`
	BirthDate   time.Time `json:"birthDate" binding:"required"`
	PhoneNumber string    `json:"phoneNumber" binding:"omitempty,min=7,max=20"`
	RoleID      string    `json:"roleId" binding:"required,uuid"`
}

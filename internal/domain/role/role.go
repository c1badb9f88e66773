package role

import (
	"errors"
	"time"
)

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

const (
	NameAdmin = "admin"
	NameUser  = "user"
)

var ErrNotFound = errors.New("role not found")

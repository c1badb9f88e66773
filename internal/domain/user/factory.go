package user

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateUserRequest, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		BirthDate:    req.BirthDate,
		PhoneNumber:  req.PhoneNumber,
		RoleID:       req.RoleID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

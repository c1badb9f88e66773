package handlers

import (
	"context"

	"github.com/geocoder89/accounthub/internal/cache"
	"github.com/geocoder89/accounthub/internal/domain/role"
	"github.com/geocoder89/accounthub/internal/domain/user"
)

// The "email must be unique" and "role must exist" checks are shared by
// create, update and register, so they live here instead of being inlined
// three times.

type EmailChecker interface {
	EmailInUse(ctx context.Context, email, excludeID string) (bool, error)
}

type RoleReader interface {
	GetByID(ctx context.Context, id string) (role.Role, error)
}

// checkEmailAvailable returns user.ErrEmailTaken when another record holds
// the email. excludeID is empty on create/register, and set to the target
// id on update so a user can keep their own email.
func checkEmailAvailable(ctx context.Context, users EmailChecker, email, excludeID string) error {
	taken, err := users.EmailInUse(ctx, email, excludeID)

	if err != nil {
		return err
	}

	if taken {
		return user.ErrEmailTaken
	}

	return nil
}

// resolveRole looks a role up through the TTL cache; roles are seeded and
// effectively immutable, so a short cache window is safe.
func resolveRole(ctx context.Context, roles RoleReader, c *cache.Cache, roleID string) (role.Role, error) {
	if c != nil {
		if v, ok := c.Get("role:" + roleID); ok {
			if ro, ok := v.(role.Role); ok {
				return ro, nil
			}
		}
	}

	ro, err := roles.GetByID(ctx, roleID)

	if err != nil {
		return role.Role{}, err
	}

	if c != nil {
		c.Set("role:"+roleID, ro)
	}

	return ro, nil
}

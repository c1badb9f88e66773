package db

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/domain/role"
	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/repo/postgres"
	"github.com/geocoder89/accounthub/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureRoles inserts the built-in roles if they are missing. Roles are
// read-only from the service's point of view, so seeding is the only writer.
func EnsureRoles(ctx context.Context, pool *pgxpool.Pool) error {
	repo := postgres.NewRolesRepo(pool, nil)

	seed := []role.Role{
		{ID: uuid.NewString(), Name: role.NameAdmin, Description: "full account administration", CreatedAt: time.Now().UTC()},
		{ID: uuid.NewString(), Name: role.NameUser, Description: "regular account", CreatedAt: time.Now().UTC()},
	}

	for _, ro := range seed {
		if err := repo.Insert(ctx, ro); err != nil {
			return err
		}
	}

	return nil
}

func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, hasher *security.Hasher) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	adminRole, err := postgres.NewRolesRepo(pool, nil).GetByName(ctx, role.NameAdmin)

	if err != nil {
		return err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		FirstName:    cfg.AdminFirstName,
		LastName:     cfg.AdminLastName,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		BirthDate:    now,
		RoleID:       adminRole.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name, email, password_hash, birth_date, phone_number, role_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.BirthDate, u.PhoneNumber, u.RoleID, u.CreatedAt, u.UpdatedAt,
	)

	return err
}

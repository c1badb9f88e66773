package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, first_name, last_name, email, password_hash, birth_date, phone_number, role_id, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	obs  *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, obs *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, obs: obs}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.obs.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (`+userColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash,
			u.BirthDate, u.PhoneNumber, u.RoleID, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		// the unique index on email is the final authority; the handler's
		// pre-check only exists for a friendlier error message
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB("users.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		).Scan(
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
			&u.BirthDate, &u.PhoneNumber, &u.RoleID, &u.CreatedAt, &u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB("users.get_by_email", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		).Scan(
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
			&u.BirthDate, &u.PhoneNumber, &u.RoleID, &u.CreatedAt, &u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.obs.ObserveDB("users.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]user.User, 0)

		for rows.Next() {
			var u user.User

			err = rows.Scan(
				&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
				&u.BirthDate, &u.PhoneNumber, &u.RoleID, &u.CreatedAt, &u.UpdatedAt,
			)

			if err != nil {
				return err
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// EmailInUse reports whether another user already holds the email.
// excludeID keeps a record's own email from counting against it on update.
func (r *UsersRepo) EmailInUse(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool

	err := r.obs.ObserveDB("users.email_in_use", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM users WHERE email = $1 AND ($2::text = '' OR id::text <> $2::text)
			)`,
			email, excludeID,
		).Scan(&exists)
	})

	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB("users.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE users
				SET first_name = $2,
						last_name = $3,
						email = $4,
						password_hash = COALESCE($5, password_hash),
						birth_date = $6,
						phone_number = $7,
						role_id = $8,
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id,
			req.FirstName,
			req.LastName,
			req.Email,
			passwordHash,
			req.BirthDate,
			req.PhoneNumber,
			req.RoleID,
		).Scan(
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
			&u.BirthDate, &u.PhoneNumber, &u.RoleID, &u.CreatedAt, &u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.obs.ObserveDB("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return user.ErrNotFound
	}

	return nil
}

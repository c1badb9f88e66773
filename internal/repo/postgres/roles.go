package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/accounthub/internal/domain/role"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RolesRepo struct {
	pool *pgxpool.Pool
	obs  *observability.Prom
}

func NewRolesRepo(pool *pgxpool.Pool, obs *observability.Prom) *RolesRepo {
	return &RolesRepo{pool: pool, obs: obs}
}

func (r *RolesRepo) GetByID(ctx context.Context, id string) (role.Role, error) {
	var out role.Role

	err := r.obs.ObserveDB("roles.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, description, created_at FROM roles WHERE id = $1`,
			id,
		).Scan(&out.ID, &out.Name, &out.Description, &out.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return role.Role{}, role.ErrNotFound
		}

		return role.Role{}, err
	}

	return out, nil
}

func (r *RolesRepo) GetByName(ctx context.Context, name string) (role.Role, error) {
	var out role.Role

	err := r.obs.ObserveDB("roles.get_by_name", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, description, created_at FROM roles WHERE name = $1`,
			name,
		).Scan(&out.ID, &out.Name, &out.Description, &out.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return role.Role{}, role.ErrNotFound
		}

		return role.Role{}, err
	}

	return out, nil
}

func (r *RolesRepo) List(ctx context.Context) ([]role.Role, error) {
	var out []role.Role

	err := r.obs.ObserveDB("roles.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, description, created_at FROM roles ORDER BY name ASC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]role.Role, 0)

		for rows.Next() {
			var ro role.Role

			if err = rows.Scan(&ro.ID, &ro.Name, &ro.Description, &ro.CreatedAt); err != nil {
				return err
			}

			out = append(out, ro)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Insert exists for seeding; roles are otherwise read-only to the service.
func (r *RolesRepo) Insert(ctx context.Context, ro role.Role) error {
	return r.obs.ObserveDB("roles.insert", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO roles (id, name, description, created_at)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (name) DO NOTHING`,
			ro.ID, ro.Name, ro.Description, ro.CreatedAt,
		)
		return err
	})
}

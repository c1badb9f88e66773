package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrRefreshTokenMismatch = errors.New("refresh token hash mismatch")
)

type RefreshTokenRow struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string
	CreatedAt  time.Time
}

type RefreshTokensRepo struct {
	pool *pgxpool.Pool
	obs  *observability.Prom
}

func NewRefreshTokensRepo(pool *pgxpool.Pool, obs *observability.Prom) *RefreshTokensRepo {
	return &RefreshTokensRepo{pool: pool, obs: obs}
}

func (r *RefreshTokensRepo) Create(ctx context.Context, row RefreshTokenRow) error {
	return r.obs.ObserveDB("refresh_tokens.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			row.ID, row.UserID, row.TokenHash, row.ExpiresAt, row.RevokedAt, row.ReplacedBy, row.CreatedAt,
		)
		return err
	})
}

// Rotate revokes the presented token and inserts its replacement in one
// transaction. The old row is locked so two concurrent refreshes of the
// same token cannot both succeed.
func (r *RefreshTokensRepo) Rotate(ctx context.Context, oldID, presentedHash string, newRow RefreshTokenRow) error {
	return r.obs.ObserveDB("refresh_tokens.rotate", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		var row RefreshTokenRow

		err = tx.QueryRow(ctx, `
			SELECT id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at
			FROM refresh_tokens
			WHERE id = $1
			FOR UPDATE
		`, oldID).Scan(
			&row.ID,
			&row.UserID,
			&row.TokenHash,
			&row.ExpiresAt,
			&row.RevokedAt,
			&row.ReplacedBy,
			&row.CreatedAt,
		)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRefreshTokenNotFound
			}

			return err
		}

		if row.RevokedAt != nil {
			return ErrRefreshTokenRevoked
		}

		if time.Now().UTC().After(row.ExpiresAt) {
			return ErrRefreshTokenExpired
		}

		// prevents token substitution: the JTI alone is not enough
		if row.TokenHash != presentedHash {
			return ErrRefreshTokenMismatch
		}

		_, err = tx.Exec(ctx, `
			UPDATE refresh_tokens
			SET revoked_at = NOW(), replaced_by = $2
			WHERE id = $1
		`, oldID, newRow.ID)

		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			newRow.ID, newRow.UserID, newRow.TokenHash, newRow.ExpiresAt, newRow.RevokedAt, newRow.ReplacedBy, newRow.CreatedAt,
		)

		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
}

// Revoke is idempotent; revoking an already revoked or missing id is a no-op.
func (r *RefreshTokensRepo) Revoke(ctx context.Context, id string) error {
	return r.obs.ObserveDB("refresh_tokens.revoke", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE refresh_tokens
			SET revoked_at = NOW()
			WHERE id = $1 AND revoked_at IS NULL
		`, id)

		return err
	})
}

// Used when a user record is deleted so its sessions die with it.
func (r *RefreshTokensRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	return r.obs.ObserveDB("refresh_tokens.revoke_all_for_user", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE refresh_tokens
			SET revoked_at = NOW()
			WHERE user_id = $1 AND revoked_at IS NULL
		`, userID)

		return err
	})
}

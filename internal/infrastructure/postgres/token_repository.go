package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"plata/internal/domain/connection"
	"plata/internal/infrastructure/crypto"
)

// TokenRepository stores one provider token record per user. Access and
// refresh tokens are encrypted at rest.
type TokenRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

func NewTokenRepository(db *DB, encryptor *crypto.Encryptor) *TokenRepository {
	return &TokenRepository{db: db, encryptor: encryptor}
}

func (r *TokenRepository) Get(ctx context.Context, userID int64) (*connection.TokenRecord, error) {
	query := `
		SELECT user_id, provider_user_id, access_token, refresh_token, token_type, scope,
		       expires_at, created_at, updated_at
		FROM mercadopago_tokens
		WHERE user_id = $1
	`

	var record connection.TokenRecord
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&record.UserID, &record.ProviderUserID, &record.AccessToken, &record.RefreshToken,
		&record.TokenType, &record.Scope, &record.ExpiresAt, &record.CreatedAt, &record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token record: %w", err)
	}

	if record.AccessToken, err = r.encryptor.Decrypt(record.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	if record.RefreshToken, err = r.encryptor.Decrypt(record.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	return &record, nil
}

func (r *TokenRepository) Upsert(ctx context.Context, record *connection.TokenRecord) error {
	accessToken, err := r.encryptor.Encrypt(record.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refreshToken, err := r.encryptor.Encrypt(record.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	query := `
		INSERT INTO mercadopago_tokens (user_id, provider_user_id, access_token, refresh_token,
		                                token_type, scope, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (user_id) DO UPDATE SET
			provider_user_id = EXCLUDED.provider_user_id,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			scope = EXCLUDED.scope,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()
	`

	_, err = r.db.ExecContext(ctx, query,
		record.UserID, record.ProviderUserID, accessToken, refreshToken,
		record.TokenType, record.Scope, record.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert token record: %w", err)
	}
	return nil
}

// ListUserIDs returns the ids of every user with a stored token record.
// Used by the admin CLI to run batch imports across connected accounts.
func (r *TokenRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM mercadopago_tokens ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list connected users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *TokenRepository) Delete(ctx context.Context, userID int64) error {
	// Idempotent: deleting a missing record is a no-op.
	_, err := r.db.ExecContext(ctx, `DELETE FROM mercadopago_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete token record: %w", err)
	}
	return nil
}

package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/crewlog/crewlog/internal/repository"
)

// TokenRepository resolves API bearer tokens to user IDs for the HTTP
// transport. Tokens are stored hashed; the plaintext never touches disk.
type TokenRepository struct {
	db *DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// ResolveUser returns the user ID a token authenticates, updating the
// token's last-used timestamp.
func (r *TokenRepository) ResolveUser(ctx context.Context, token string) (string, error) {
	hash := hashToken(token)

	var userID string
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT user_id FROM api_tokens WHERE token_hash = ?`, hash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve token: %w", err)
	}

	_, _ = r.db.conn(ctx).ExecContext(ctx,
		`UPDATE api_tokens SET last_used = ? WHERE token_hash = ?`, time.Now(), hash)

	return userID, nil
}

// Create stores a token for a user
func (r *TokenRepository) Create(ctx context.Context, token, userID, description string) error {
	_, err := r.db.conn(ctx).ExecContext(ctx,
		`INSERT INTO api_tokens (token_hash, user_id, description, created_at) VALUES (?, ?, ?, ?)`,
		hashToken(token), userID, description, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

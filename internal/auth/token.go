package auth

import (
	"context"
	"mikroblog/internal/models"
	"time"

	"github.com/jaevor/go-nanoid"
)

// TokenLength is the fixed length of API tokens handed out to clients.
const TokenLength = 32

// GenerateToken returns a fresh opaque bearer token from a crypto/rand
// backed nanoid generator.
func GenerateToken() (string, error) {
	generateID, err := nanoid.Standard(TokenLength)
	if err != nil {
		return "", err
	}
	return generateID(), nil
}

// TokenStore is the slice of the database layer the token manager needs.
type TokenStore interface {
	UpsertUserToken(ctx context.Context, userID int64, candidate string, expiry time.Time, reuseBuffer time.Duration) (string, error)
	GetUserByToken(ctx context.Context, token string) (*models.User, error)
	ClearUserToken(ctx context.Context, userID int64) error
}

type TokenManager struct {
	store       TokenStore
	ttl         time.Duration
	reuseBuffer time.Duration
}

func NewTokenManager(store TokenStore, ttl, reuseBuffer time.Duration) *TokenManager {
	return &TokenManager{
		store:       store,
		ttl:         ttl,
		reuseBuffer: reuseBuffer,
	}
}

// GetOrIssue returns the user's stored token when it still has more than the
// reuse buffer of lifetime left, otherwise stores a fresh token expiring at
// now+ttl and returns that. The keep-or-swap decision happens in a single
// UPDATE, so two concurrent calls never leave two different valid tokens.
func (tm *TokenManager) GetOrIssue(ctx context.Context, userID int64) (string, error) {
	candidate, err := GenerateToken()
	if err != nil {
		return "", err
	}
	return tm.store.UpsertUserToken(ctx, userID, candidate, time.Now().Add(tm.ttl), tm.reuseBuffer)
}

// Resolve returns the user holding a non-expired token exactly equal to the
// given string, or nil. Comparison is case-sensitive and whole-string only.
func (tm *TokenManager) Resolve(ctx context.Context, token string) (*models.User, error) {
	if len(token) != TokenLength {
		return nil, nil
	}
	return tm.store.GetUserByToken(ctx, token)
}

// Revoke clears the user's token so Resolve stops matching it immediately.
// Revoking an absent token is a no-op.
func (tm *TokenManager) Revoke(ctx context.Context, userID int64) error {
	return tm.store.ClearUserToken(ctx, userID)
}

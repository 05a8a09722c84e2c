package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"mikroblog/internal/models"
	"strings"
)

// ErrUnauthenticated covers every credential failure: missing header,
// unknown scheme, unknown user, wrong password, bad or expired token.
// Callers must not leak which of those it was.
var ErrUnauthenticated = errors.New("authentication required")

type StrategyKind string

const (
	StrategyBasic StrategyKind = "basic"
	StrategyToken StrategyKind = "token"
)

// CredentialStore resolves usernames for the Basic strategy.
type CredentialStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Resolver turns the Authorization header of a request into an acting user.
// Strategies are tried in the configured order; the first one whose scheme
// matches the header decides the outcome.
type Resolver struct {
	store      CredentialStore
	tokens     *TokenManager
	strategies []StrategyKind
}

func NewResolver(store CredentialStore, tokens *TokenManager, strategies []string) *Resolver {
	kinds := make([]StrategyKind, 0, len(strategies))
	for _, s := range strategies {
		kinds = append(kinds, StrategyKind(strings.ToLower(strings.TrimSpace(s))))
	}
	return &Resolver{store: store, tokens: tokens, strategies: kinds}
}

// Enabled reports whether any strategy is configured. When false the service
// runs in the legacy open-posting mode and every request acts anonymously.
func (r *Resolver) Enabled() bool {
	return len(r.strategies) > 0
}

// Resolve returns the acting user for the given Authorization header value.
// A header using a scheme no configured strategy accepts fails with
// ErrUnauthenticated; any other error is a storage problem.
func (r *Resolver) Resolve(ctx context.Context, authHeader string) (*models.User, error) {
	scheme, payload, ok := strings.Cut(authHeader, " ")
	if !ok {
		return nil, ErrUnauthenticated
	}

	for _, kind := range r.strategies {
		switch kind {
		case StrategyBasic:
			if strings.EqualFold(scheme, "Basic") {
				return r.resolveBasic(ctx, payload)
			}
		case StrategyToken:
			if strings.EqualFold(scheme, "Bearer") {
				return r.resolveToken(ctx, payload)
			}
		}
	}

	return nil, ErrUnauthenticated
}

// ResolveBasic accepts Basic credentials only, regardless of the header
// scheme a bearer token would use. Token issuance goes through this so a
// leaked token cannot be used to mint further tokens.
func (r *Resolver) ResolveBasic(ctx context.Context, authHeader string) (*models.User, error) {
	if !r.hasStrategy(StrategyBasic) {
		return nil, ErrUnauthenticated
	}
	scheme, payload, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return nil, ErrUnauthenticated
	}
	return r.resolveBasic(ctx, payload)
}

func (r *Resolver) hasStrategy(kind StrategyKind) bool {
	for _, s := range r.strategies {
		if s == kind {
			return true
		}
	}
	return false
}

func (r *Resolver) resolveBasic(ctx context.Context, payload string) (*models.User, error) {
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil, ErrUnauthenticated
	}

	user, err := r.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	// Unknown username and wrong password are deliberately the same failure.
	if user == nil || !CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrUnauthenticated
	}

	return user, nil
}

func (r *Resolver) resolveToken(ctx context.Context, token string) (*models.User, error) {
	user, err := r.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

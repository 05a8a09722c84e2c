package auth

import (
	"context"
	"encoding/base64"
	"mikroblog/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	password := "mySecretPassword123"
	hash, err := HashPassword(password)

	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, password, hash)

	// Salted: hashing the same input twice must not produce the same value.
	hash2, err := HashPassword(password)
	require.NoError(t, err)
	require.NotEqual(t, hash, hash2)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "mySecretPassword123"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	require.True(t, CheckPasswordHash(password, hash), "Password should match the hash")
	require.False(t, CheckPasswordHash("wrongPassword", hash), "Wrong password should not match the hash")
	require.False(t, CheckPasswordHash(password, ""), "Empty stored hash never matches")
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)
	require.Len(t, token, TokenLength)

	other, err := GenerateToken()
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

// fakeTokenStore mirrors the keep-or-swap semantics of the real
// UpsertUserToken query in memory.
type fakeTokenStore struct {
	users map[int64]*models.User
}

func newFakeTokenStore(users ...*models.User) *fakeTokenStore {
	s := &fakeTokenStore{users: make(map[int64]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeTokenStore) UpsertUserToken(ctx context.Context, userID int64, candidate string, expiry time.Time, reuseBuffer time.Duration) (string, error) {
	u := s.users[userID]
	if u.Token != nil && u.TokenExpiry != nil && u.TokenExpiry.After(time.Now().Add(reuseBuffer)) {
		return *u.Token, nil
	}
	u.Token = &candidate
	u.TokenExpiry = &expiry
	return candidate, nil
}

func (s *fakeTokenStore) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	for _, u := range s.users {
		if u.Token != nil && *u.Token == token && u.TokenExpiry != nil && u.TokenExpiry.After(time.Now()) {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeTokenStore) ClearUserToken(ctx context.Context, userID int64) error {
	u := s.users[userID]
	u.Token = nil
	u.TokenExpiry = nil
	return nil
}

func TestTokenManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: 1, Username: "bob"}
	store := newFakeTokenStore(user)
	tm := NewTokenManager(store, time.Hour, time.Minute)

	token, err := tm.GetOrIssue(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, token, TokenLength)

	resolved, err := tm.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.Equal(t, user.ID, resolved.ID)

	require.NoError(t, tm.Revoke(ctx, user.ID))
	resolved, err = tm.Resolve(ctx, token)
	require.NoError(t, err)
	require.Nil(t, resolved, "Revoked token must stop resolving immediately")

	// Revoking again is a no-op, not an error.
	require.NoError(t, tm.Revoke(ctx, user.ID))
}

func TestTokenManagerReuseWithinBuffer(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: 1, Username: "bob"}
	store := newFakeTokenStore(user)
	tm := NewTokenManager(store, time.Hour, time.Minute)

	first, err := tm.GetOrIssue(ctx, user.ID)
	require.NoError(t, err)

	second, err := tm.GetOrIssue(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, first, second, "Issuing within the reuse buffer must return the same token")
}

func TestTokenManagerReissueNearExpiry(t *testing.T) {
	ctx := context.Background()
	soon := time.Now().Add(10 * time.Second)
	token := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	user := &models.User{ID: 1, Username: "bob", Token: &token, TokenExpiry: &soon}
	store := newFakeTokenStore(user)
	tm := NewTokenManager(store, time.Hour, time.Minute)

	fresh, err := tm.GetOrIssue(ctx, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, token, fresh, "A token inside the reuse buffer must be replaced")
}

func TestTokenManagerResolveRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	store := newFakeTokenStore(&models.User{ID: 1})
	tm := NewTokenManager(store, time.Hour, time.Minute)

	for _, token := range []string{"", "short", "waaaaaaaaay-too-long-to-be-a-real-token-string"} {
		user, err := tm.Resolve(ctx, token)
		require.NoError(t, err)
		require.Nil(t, user)
	}
}

func TestTokenManagerResolveExpired(t *testing.T) {
	ctx := context.Background()
	past := time.Now().Add(-time.Minute)
	token := "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	user := &models.User{ID: 1, Token: &token, TokenExpiry: &past}
	tm := NewTokenManager(newFakeTokenStore(user), time.Hour, time.Minute)

	resolved, err := tm.Resolve(ctx, token)
	require.NoError(t, err)
	require.Nil(t, resolved, "Expired token must not resolve even while still stored")
}

type fakeCredentialStore struct {
	users map[string]*models.User
}

func (s *fakeCredentialStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users[username], nil
}

func basicHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func newTestResolver(t *testing.T, strategies []string) (*Resolver, *models.User) {
	t.Helper()
	hash, err := HashPassword("321")
	require.NoError(t, err)

	user := &models.User{ID: 2, Username: "bob", PasswordHash: hash}
	tokenStore := newFakeTokenStore(user)
	credStore := &fakeCredentialStore{users: map[string]*models.User{"bob": user}}
	tm := NewTokenManager(tokenStore, time.Hour, time.Minute)
	return NewResolver(credStore, tm, strategies), user
}

func TestResolverBasic(t *testing.T) {
	ctx := context.Background()
	resolver, user := newTestResolver(t, []string{"basic", "token"})

	resolved, err := resolver.Resolve(ctx, basicHeader("bob", "321"))
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)

	// Unknown user and wrong password fail identically.
	_, errWrongPass := resolver.Resolve(ctx, basicHeader("bob", "123"))
	_, errNoUser := resolver.Resolve(ctx, basicHeader("nobody", "321"))
	require.ErrorIs(t, errWrongPass, ErrUnauthenticated)
	require.ErrorIs(t, errNoUser, ErrUnauthenticated)
	require.Equal(t, errWrongPass, errNoUser)

	_, err = resolver.Resolve(ctx, "Basic not-base64!!!")
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = resolver.Resolve(ctx, "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolverBearer(t *testing.T) {
	ctx := context.Background()
	resolver, user := newTestResolver(t, []string{"basic", "token"})

	token, err := resolver.tokens.GetOrIssue(ctx, user.ID)
	require.NoError(t, err)

	resolved, err := resolver.Resolve(ctx, "Bearer "+token)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)

	_, err = resolver.Resolve(ctx, "Bearer nonsense")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolverRejectsUnknownScheme(t *testing.T) {
	ctx := context.Background()
	resolver, _ := newTestResolver(t, []string{"basic", "token"})

	_, err := resolver.Resolve(ctx, "Digest abcdef")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolverStrategySubset(t *testing.T) {
	ctx := context.Background()

	// Token-only configuration must reject Basic credentials.
	resolver, user := newTestResolver(t, []string{"token"})
	_, err := resolver.Resolve(ctx, basicHeader("bob", "321"))
	require.ErrorIs(t, err, ErrUnauthenticated)

	token, err := resolver.tokens.GetOrIssue(ctx, user.ID)
	require.NoError(t, err)
	resolved, err := resolver.Resolve(ctx, "Bearer "+token)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)

	// ResolveBasic requires the basic strategy to be configured.
	_, err = resolver.ResolveBasic(ctx, basicHeader("bob", "321"))
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolverDisabled(t *testing.T) {
	resolver, _ := newTestResolver(t, nil)
	require.False(t, resolver.Enabled())
}

func TestResolveBasicIgnoresBearer(t *testing.T) {
	ctx := context.Background()
	resolver, user := newTestResolver(t, []string{"basic", "token"})

	token, err := resolver.tokens.GetOrIssue(ctx, user.ID)
	require.NoError(t, err)

	_, err = resolver.ResolveBasic(ctx, "Bearer "+token)
	require.ErrorIs(t, err, ErrUnauthenticated, "A bearer token must not mint further tokens")
}

func TestCanMutate(t *testing.T) {
	owner := &models.User{ID: 1, Username: "john"}
	other := &models.User{ID: 2, Username: "bob"}
	ownerID := owner.ID

	post := &models.Post{ID: 1, Name: "name 1", Content: "content 1", UserID: &ownerID}
	require.True(t, CanMutate(owner, post))
	require.False(t, CanMutate(other, post))
	require.False(t, CanMutate(nil, post))

	ownerless := &models.Post{ID: 2, Name: "name 2", Content: "content 2"}
	require.False(t, CanMutate(owner, ownerless), "Ownerless legacy posts are denied to everyone")
	require.False(t, CanMutate(nil, ownerless))
}

package database

import (
	"context"
	"errors"
	"mikroblog/internal/models"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrDuplicateUser = errors.New("username or email already taken")

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
}

func (q *Queries) CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, password_hash, token, token_expiry, created_at
	`
	var user models.User

	err := q.db.QueryRow(ctx, query, params.Username, params.Email, params.PasswordHash).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Token,
		&user.TokenExpiry,
		&user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	return &user, nil
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, token, token_expiry, created_at
		FROM users
		WHERE username = $1
	`
	return q.scanUser(q.db.QueryRow(ctx, query, username))
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, token, token_expiry, created_at
		FROM users
		WHERE id = $1
	`
	return q.scanUser(q.db.QueryRow(ctx, query, id))
}

// GetUserByToken matches the whole token string exactly and only while the
// stored expiry is still in the future.
func (q *Queries) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, token, token_expiry, created_at
		FROM users
		WHERE token = $1 AND token_expiry > now()
	`
	return q.scanUser(q.db.QueryRow(ctx, query, token))
}

// UpsertUserToken keeps the stored token when it still has more than
// reuseBuffer of life left, otherwise replaces it with candidate expiring at
// expiry. Single statement, so concurrent issuance cannot end up with two
// valid tokens for one user.
func (q *Queries) UpsertUserToken(ctx context.Context, userID int64, candidate string, expiry time.Time, reuseBuffer time.Duration) (string, error) {
	query := `
		UPDATE users SET
			token = CASE
				WHEN token IS NOT NULL AND token_expiry > now() + ($4 * interval '1 second') THEN token
				ELSE $2
			END,
			token_expiry = CASE
				WHEN token IS NOT NULL AND token_expiry > now() + ($4 * interval '1 second') THEN token_expiry
				ELSE $3
			END
		WHERE id = $1
		RETURNING token
	`
	var token string
	err := q.db.QueryRow(ctx, query, userID, candidate, expiry, reuseBuffer.Seconds()).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errors.New("no such user")
		}
		return "", err
	}
	return token, nil
}

// ClearUserToken revokes the user's token. Clearing an already absent token
// is a no-op.
func (q *Queries) ClearUserToken(ctx context.Context, userID int64) error {
	query := `UPDATE users SET token = NULL, token_expiry = NULL WHERE id = $1`
	_, err := q.db.Exec(ctx, query, userID)
	return err
}

func (q *Queries) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Token,
		&user.TokenExpiry,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

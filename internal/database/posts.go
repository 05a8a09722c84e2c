package database

import (
	"context"
	"errors"
	"mikroblog/internal/models"

	"github.com/jackc/pgx/v5"
)

var ErrPostNotFound = errors.New("post not found")

type CreatePostParams struct {
	Name    string
	Content string
	UserID  *int64
}

func (q *Queries) CreatePost(ctx context.Context, params CreatePostParams) (*models.Post, error) {
	query := `
		INSERT INTO posts (name, content, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, content, user_id, created_at
	`
	var post models.Post
	err := q.db.QueryRow(ctx, query, params.Name, params.Content, params.UserID).Scan(
		&post.ID,
		&post.Name,
		&post.Content,
		&post.UserID,
		&post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (q *Queries) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `
		SELECT id, name, content, user_id, created_at
		FROM posts
		WHERE id = $1
	`
	return q.scanPost(q.db.QueryRow(ctx, query, id))
}

// GetPostForUpdate locks the row for the rest of the transaction. Ownership
// checks against the result stay valid until commit.
func (q *Queries) GetPostForUpdate(ctx context.Context, id int64) (*models.Post, error) {
	query := `
		SELECT id, name, content, user_id, created_at
		FROM posts
		WHERE id = $1
		FOR UPDATE
	`
	return q.scanPost(q.db.QueryRow(ctx, query, id))
}

// ListPosts returns the whole timeline, newest first.
func (q *Queries) ListPosts(ctx context.Context) ([]models.Post, error) {
	query := `
		SELECT id, name, content, user_id, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
	`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		err := rows.Scan(
			&post.ID,
			&post.Name,
			&post.Content,
			&post.UserID,
			&post.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if posts == nil {
		return []models.Post{}, nil
	}

	return posts, nil
}

// UpdatePost mutates name and content in place. user_id and created_at are
// immutable after insert.
func (q *Queries) UpdatePost(ctx context.Context, id int64, name, content string) (*models.Post, error) {
	query := `
		UPDATE posts
		SET name = $2, content = $3
		WHERE id = $1
		RETURNING id, name, content, user_id, created_at
	`
	post, err := q.scanPost(q.db.QueryRow(ctx, query, id, name, content))
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (q *Queries) DeletePost(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM posts WHERE id = $1`
	tag, err := q.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID,
		&post.Name,
		&post.Content,
		&post.UserID,
		&post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

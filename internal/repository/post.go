package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/scribe/scribe/internal/model"
)

// ErrPostNotFound is returned when no post matches the given ID.
var ErrPostNotFound = errors.New("post not found")

// CreatePost inserts a new post. ID and CreatedAt are assigned when empty.
func (r *Repository) CreatePost(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = model.NewID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO posts (id, title, content, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.AuthorID,
		post.CreatedAt,
	)
	if err != nil {
		return wrapError("failed to create post", err)
	}

	return nil
}

// GetPostByID retrieves a post by its ID.
func (r *Repository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	query := `
		SELECT id, title, content, author_id, created_at
		FROM posts
		WHERE id = $1
	`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, wrapError("failed to get post by ID", err)
	}

	return post, nil
}

// ListPosts returns every post, newest first.
// Posts sharing a timestamp are ordered by ID descending.
func (r *Repository) ListPosts(ctx context.Context) ([]*model.Post, error) {
	query := `
		SELECT id, title, content, author_id, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapError("failed to list posts", err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, wrapError("failed to scan post", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapError("failed to iterate posts", err)
	}

	return posts, nil
}

// UpdatePost overwrites title and content. Author and creation time never change.
func (r *Repository) UpdatePost(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE posts
		SET title = $2, content = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, post.ID, post.Title, post.Content)
	if err != nil {
		return wrapError("failed to update post", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// DeletePost removes a post by ID.
func (r *Repository) DeletePost(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return wrapError("failed to delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var post model.Post
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.AuthorID,
		&post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	post.CreatedAt = post.CreatedAt.UTC()
	return &post, nil
}

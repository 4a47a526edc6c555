package service

import (
	"context"
	"time"

	"github.com/scribe/scribe/internal/auth"
	"github.com/scribe/scribe/internal/model"
)

// UserStore persists user identity records.
// CreateUser must return repository.ErrEmailExists atomically on duplicate email.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// PostStore persists posts.
type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context) ([]*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id string) error
}

// PostCache is an optional read-through cache for single posts.
// SetPost must not store a post invalidated after version was read.
type PostCache interface {
	GetPost(ctx context.Context, id string) (*model.Post, error)
	PostVersion(ctx context.Context, id string) (int64, error)
	SetPost(ctx context.Context, post *model.Post, version int64) (bool, error)
	InvalidatePost(ctx context.Context, id string) error
	DeletePost(ctx context.Context, id string) error
	IsNegativelyCached(ctx context.Context, id string) (bool, error)
	SetNegativeCache(ctx context.Context, id string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) bool
	NeedsRehash(encodedHash string) bool
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (*auth.Claims, error)
	NeedsReissue(claims *auth.Claims) bool
}

// withTimeout bounds a store call. A non-positive timeout leaves ctx unchanged.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

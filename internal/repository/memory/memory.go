// Package memory provides an in-process user and post store for local runs
// and tests. Data is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/scribe/scribe/internal/model"
	"github.com/scribe/scribe/internal/repository"
)

// Store keeps users and posts in maps guarded by a single RWMutex.
// Returned values are copies; callers may mutate them freely.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*model.User
	usersByEmail map[string]string
	posts        map[string]*model.Post
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]*model.User),
		usersByEmail: make(map[string]string),
		posts:        make(map[string]*model.Post),
	}
}

// Ping reports the store as always reachable.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// CreateUser inserts user unless its email is taken.
// The email check and insert happen under one lock.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[user.Email]; exists {
		return repository.ErrEmailExists
	}

	if user.ID == "" {
		user.ID = model.NewID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	stored := *user
	s.users[user.ID] = &stored
	s.usersByEmail[user.Email] = user.ID
	return nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

// GetUserByEmail retrieves a user by exact email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *s.users[id]
	return &out, nil
}

// UpdatePasswordHash replaces the stored hash for a user.
func (s *Store) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = hash
	return nil
}

// CreatePost inserts a post, assigning ID and CreatedAt when empty.
func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = model.NewID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	stored := *post
	s.posts[post.ID] = &stored
	return nil
}

// GetPostByID retrieves a post by ID.
func (s *Store) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	out := *post
	return &out, nil
}

// ListPosts returns all posts, newest first with ID as tie-break.
func (s *Store) ListPosts(ctx context.Context) ([]*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}

	s.mu.RLock()
	posts := make([]*model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out := *p
		posts = append(posts, &out)
	}
	s.mu.RUnlock()

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})

	return posts, nil
}

// UpdatePost overwrites title and content of an existing post.
func (s *Store) UpdatePost(ctx context.Context, post *model.Post) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[post.ID]
	if !ok {
		return repository.ErrPostNotFound
	}
	stored.Title = post.Title
	stored.Content = post.Content
	return nil
}

// DeletePost removes a post by ID.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
}

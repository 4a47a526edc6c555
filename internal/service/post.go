package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scribe/scribe/internal/cache"
	"github.com/scribe/scribe/internal/metrics"
	"github.com/scribe/scribe/internal/model"
	"github.com/scribe/scribe/internal/repository"
)

// Post field limits.
const (
	MaxTitleLength   = 200
	MaxContentLength = 100000
)

// PostService handles post business logic.
// Mutations follow load, ownership check, then write.
type PostService struct {
	posts        PostStore
	cache        PostCache
	metrics      metrics.Recorder
	logger       *slog.Logger
	storeTimeout time.Duration
}

// NewPostService creates a new PostService. postCache may be nil.
func NewPostService(posts PostStore, postCache PostCache, recorder metrics.Recorder, logger *slog.Logger, storeTimeout time.Duration) *PostService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		posts:        posts,
		cache:        postCache,
		metrics:      recorder,
		logger:       logger,
		storeTimeout: storeTimeout,
	}
}

// PostInput carries the client-editable fields of a post.
type PostInput struct {
	Title   string
	Content string
}

// Validate checks title and content bounds.
func (in PostInput) Validate() error {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return invalid("title", "is required")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return invalid("title", fmt.Sprintf("must be at most %d characters", MaxTitleLength))
	}

	switch {
	case strings.TrimSpace(in.Content) == "":
		return invalid("content", "is required")
	case utf8.RuneCountInString(in.Content) > MaxContentLength:
		return invalid("content", fmt.Sprintf("must be at most %d characters", MaxContentLength))
	}

	return nil
}

// Create stores a new post owned by caller.
func (s *PostService) Create(ctx context.Context, caller *model.User, input PostInput) (*model.Post, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:        model.NewID(),
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		AuthorID:  caller.ID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	ctx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, storeError("failed to create post", err)
	}

	s.metrics.IncPostCreated()

	return post, nil
}

// Get returns a post by ID. Malformed IDs are reported as not found.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	id, ok := model.CanonicalID(id)
	if !ok {
		return nil, ErrPostNotFound
	}

	ctx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	var (
		version int64
		fill    bool
	)
	if s.cache != nil {
		post, err := s.cache.GetPost(ctx, id)
		if err == nil {
			s.metrics.IncPostCacheHit()
			return post, nil
		}
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.IncPostCacheMiss()
			if negative, _ := s.cache.IsNegativelyCached(ctx, id); negative {
				return nil, ErrPostNotFound
			}
			// The version must be read before the store so a concurrent
			// update or delete makes the backfill below a no-op.
			version, err = s.cache.PostVersion(ctx, id)
			fill = err == nil
		}
		if err != nil {
			s.logger.Warn("post cache read failed", slog.String("post_id", id), slog.String("error", err.Error()))
		}
	}

	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			if s.cache != nil {
				_ = s.cache.SetNegativeCache(ctx, id)
			}
			return nil, ErrPostNotFound
		}
		return nil, storeError("failed to get post", err)
	}

	if fill {
		stored, err := s.cache.SetPost(ctx, post, version)
		switch {
		case err != nil:
			s.logger.Warn("post cache backfill failed", slog.String("post_id", id), slog.String("error", err.Error()))
		case !stored:
			s.logger.Debug("post cache backfill skipped", slog.String("post_id", id))
		}
	}

	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]*model.Post, error) {
	ctx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, storeError("failed to list posts", err)
	}
	return posts, nil
}

// Update replaces title and content of a post owned by caller.
func (s *PostService) Update(ctx context.Context, caller *model.User, id string, input PostInput) (*model.Post, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}

	ctx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	post, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(input.Title)
	post.Content = input.Content

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeError("failed to update post", err)
	}

	s.metrics.IncPostUpdated()
	s.invalidate(ctx, post.ID, false)

	return post, nil
}

// Delete removes a post owned by caller.
func (s *PostService) Delete(ctx context.Context, caller *model.User, id string) error {
	if caller == nil {
		return ErrUnauthenticated
	}

	ctx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	post, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return storeError("failed to delete post", err)
	}

	s.metrics.IncPostDeleted()
	s.invalidate(ctx, post.ID, true)

	return nil
}

// loadOwned reads the post from the store, bypassing the cache, and
// checks that caller is its author.
func (s *PostService) loadOwned(ctx context.Context, caller *model.User, id string) (*model.Post, error) {
	id, ok := model.CanonicalID(id)
	if !ok {
		return nil, ErrPostNotFound
	}

	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeError("failed to load post", err)
	}

	if !post.IsOwnedBy(caller.ID) {
		s.metrics.IncOwnershipDenied()
		return nil, ErrForbidden
	}

	return post, nil
}

// invalidate drops the cached copy of a post after a store write.
// Deleted posts also get a negative entry.
func (s *PostService) invalidate(ctx context.Context, id string, deleted bool) {
	if s.cache == nil {
		return
	}

	var err error
	if deleted {
		err = s.cache.DeletePost(ctx, id)
	} else {
		err = s.cache.InvalidatePost(ctx, id)
	}
	if err != nil {
		s.logger.Warn("post cache invalidation failed", slog.String("post_id", id), slog.String("error", err.Error()))
	}
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/scribe/scribe/internal/model"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewWithClient(client, 0), mr
}

func TestCache_SetAndGetPost(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()

	post := &model.Post{
		ID:        model.NewID(),
		Title:     "Hi",
		Content:   "body",
		AuthorID:  model.NewID(),
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 42, time.UTC),
	}

	if _, err := c.SetPost(ctx, post, 0); err != nil {
		t.Fatalf("SetPost failed: %v", err)
	}

	got, err := c.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.ID != post.ID || got.Title != post.Title || got.Content != post.Content || got.AuthorID != post.AuthorID {
		t.Errorf("GetPost = %+v, want %+v", got, post)
	}
	if !got.CreatedAt.Equal(post.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, post.CreatedAt)
	}

	if ttl := mr.TTL(postKeyPrefix + post.ID); ttl != DefaultPostTTL {
		t.Errorf("TTL = %v, want %v", ttl, DefaultPostTTL)
	}
}

func TestCache_GetPostMiss(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)

	if _, err := c.GetPost(context.Background(), model.NewID()); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got: %v", err)
	}
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()

	post := &model.Post{ID: model.NewID(), Title: "t", Content: "c", AuthorID: model.NewID(), CreatedAt: time.Now()}
	if _, err := c.SetPost(ctx, post, 0); err != nil {
		t.Fatalf("SetPost failed: %v", err)
	}

	mr.FastForward(DefaultPostTTL + time.Second)

	if _, err := c.GetPost(ctx, post.ID); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after TTL, got: %v", err)
	}
}

func TestCache_DeletePost(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	ctx := context.Background()

	post := &model.Post{ID: model.NewID(), Title: "t", Content: "c", AuthorID: model.NewID(), CreatedAt: time.Now()}
	if _, err := c.SetPost(ctx, post, 0); err != nil {
		t.Fatalf("SetPost failed: %v", err)
	}

	if err := c.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}

	if _, err := c.GetPost(ctx, post.ID); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after delete, got: %v", err)
	}
	neg, err := c.IsNegativelyCached(ctx, post.ID)
	if err != nil {
		t.Fatalf("IsNegativelyCached failed: %v", err)
	}
	if !neg {
		t.Error("DeletePost should leave a negative entry")
	}
}

func TestCache_SetPostSkipsStaleVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		invalidate func(c *Cache, ctx context.Context, id string) error
		wantNeg    bool
	}{
		{"update", (*Cache).InvalidatePost, false},
		{"delete", (*Cache).DeletePost, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _ := newTestCache(t)
			ctx := context.Background()
			post := &model.Post{ID: model.NewID(), Title: "old", Content: "c", AuthorID: model.NewID(), CreatedAt: time.Now()}

			// A reader takes the version, then loads the post from the store.
			version, err := c.PostVersion(ctx, post.ID)
			if err != nil {
				t.Fatalf("PostVersion failed: %v", err)
			}

			// The post changes before the reader fills the cache.
			if err := tt.invalidate(c, ctx, post.ID); err != nil {
				t.Fatalf("invalidate failed: %v", err)
			}

			stored, err := c.SetPost(ctx, post, version)
			if err != nil {
				t.Fatalf("SetPost failed: %v", err)
			}
			if stored {
				t.Error("SetPost stored a post read before invalidation")
			}
			if _, err := c.GetPost(ctx, post.ID); !errors.Is(err, ErrCacheMiss) {
				t.Errorf("GetPost error = %v, want ErrCacheMiss", err)
			}
			if neg, _ := c.IsNegativelyCached(ctx, post.ID); neg != tt.wantNeg {
				t.Errorf("IsNegativelyCached = %v, want %v", neg, tt.wantNeg)
			}

			// A fresh read after invalidation fills normally.
			version, err = c.PostVersion(ctx, post.ID)
			if err != nil {
				t.Fatalf("PostVersion failed: %v", err)
			}
			if version != 1 {
				t.Errorf("PostVersion = %d, want 1", version)
			}
			stored, err = c.SetPost(ctx, post, version)
			if err != nil || !stored {
				t.Errorf("SetPost = %v, %v; want true, nil", stored, err)
			}
		})
	}
}

func TestCache_VersionExpiresWithEntry(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()
	id := model.NewID()

	if err := c.InvalidatePost(ctx, id); err != nil {
		t.Fatalf("InvalidatePost failed: %v", err)
	}
	if ttl := mr.TTL(postKeyPrefix + id + versionKeySuffix); ttl != DefaultPostTTL {
		t.Errorf("version TTL = %v, want %v", ttl, DefaultPostTTL)
	}

	mr.FastForward(DefaultPostTTL + time.Second)

	version, err := c.PostVersion(ctx, id)
	if err != nil {
		t.Fatalf("PostVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("PostVersion after expiry = %d, want 0", version)
	}
}

func TestCache_NegativeCache(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()
	id := model.NewID()

	if err := c.SetNegativeCache(ctx, id); err != nil {
		t.Fatalf("SetNegativeCache failed: %v", err)
	}
	neg, err := c.IsNegativelyCached(ctx, id)
	if err != nil || !neg {
		t.Fatalf("IsNegativelyCached = %v, %v; want true, nil", neg, err)
	}

	// SetPost clears the negative entry.
	if _, err := c.SetPost(ctx, &model.Post{ID: id, Title: "t", Content: "c", AuthorID: model.NewID(), CreatedAt: time.Now()}, 0); err != nil {
		t.Fatalf("SetPost failed: %v", err)
	}
	neg, _ = c.IsNegativelyCached(ctx, id)
	if neg {
		t.Error("SetPost should clear the negative entry")
	}

	if err := c.SetNegativeCache(ctx, id); err != nil {
		t.Fatalf("SetNegativeCache failed: %v", err)
	}
	mr.FastForward(NegativeCacheTTL + time.Second)
	neg, _ = c.IsNegativelyCached(ctx, id)
	if neg {
		t.Error("negative entry should expire")
	}
}

func TestCache_ErrorsWhenServerDown(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := c.GetPost(ctx, model.NewID()); err == nil || errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetPost error = %v, want a connection error", err)
	}
	if err := c.Ping(ctx); err == nil {
		t.Error("Ping should fail when the server is down")
	}
}

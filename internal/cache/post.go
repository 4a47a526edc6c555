package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/scribe/scribe/internal/model"
)

// Cache key prefixes and TTLs.
const (
	postKeyPrefix     = "post:"
	negCacheKeySuffix = ":neg"
	versionKeySuffix  = ":ver"

	// DefaultPostTTL is the TTL for cached post data.
	DefaultPostTTL = 10 * time.Minute

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// fillPostScript writes a post hash only if the version counter still holds
// the value the reader saw before loading the post from the store.
var fillPostScript = redis.NewScript(`
	local current = redis.call('GET', KEYS[2]) or '0'
	if current ~= ARGV[1] then
		return 0
	end

	redis.call('HSET', KEYS[1], 'title', ARGV[2], 'content', ARGV[3], 'author_id', ARGV[4], 'created_at', ARGV[5])
	redis.call('PEXPIRE', KEYS[1], ARGV[6])
	if current ~= '0' then
		redis.call('PEXPIRE', KEYS[2], ARGV[6])
	end
	redis.call('DEL', KEYS[3])

	return 1
`)

// GetPost retrieves a post from cache by ID.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetPost(ctx context.Context, id string) (*model.Post, error) {
	cmd := c.client.HGetAll(ctx, postKeyPrefix+id)
	result, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	var cached model.CachedPost
	if err := cmd.Scan(&cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached post: %w", err)
	}

	return cached.ToPost(id), nil
}

// PostVersion returns the invalidation counter for a post ID.
// Read it before loading the post from the store and pass it to SetPost.
func (c *Cache) PostVersion(ctx context.Context, id string) (int64, error) {
	version, err := c.client.Get(ctx, postKeyPrefix+id+versionKeySuffix).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read post version: %w", err)
	}
	return version, nil
}

// SetPost stores a post in cache and clears any negative entry for its ID.
// Nothing is written if the post was invalidated after version was read;
// the returned bool reports whether the entry was stored.
func (c *Cache) SetPost(ctx context.Context, post *model.Post, version int64) (bool, error) {
	key := postKeyPrefix + post.ID
	cached := post.ToCachedPost()

	stored, err := fillPostScript.Run(ctx, c.client,
		[]string{key, key + versionKeySuffix, key + negCacheKeySuffix},
		strconv.FormatInt(version, 10),
		cached.Title,
		cached.Content,
		cached.AuthorID,
		cached.CreatedAt,
		c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache post: %w", err)
	}

	return stored == 1, nil
}

// InvalidatePost drops the cached entry and bumps the version so that
// in-flight reads cannot write an older copy back.
func (c *Cache) InvalidatePost(ctx context.Context, id string) error {
	key := postKeyPrefix + id

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Incr(ctx, key+versionKeySuffix)
	pipe.Expire(ctx, key+versionKeySuffix, c.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate cached post: %w", err)
	}

	return nil
}

// DeletePost invalidates a deleted post and leaves a negative entry for it.
func (c *Cache) DeletePost(ctx context.Context, id string) error {
	key := postKeyPrefix + id

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Incr(ctx, key+versionKeySuffix)
	pipe.Expire(ctx, key+versionKeySuffix, c.ttl)
	pipe.SetEx(ctx, key+negCacheKeySuffix, "", NegativeCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete post from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if a post ID is in negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, id string) (bool, error) {
	exists, err := c.client.Exists(ctx, postKeyPrefix+id+negCacheKeySuffix).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a post ID as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, id string) error {
	err := c.client.SetEx(ctx, postKeyPrefix+id+negCacheKeySuffix, "", NegativeCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}

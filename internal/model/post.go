package model

import (
	"strconv"
	"time"
)

// Post is a blog post owned by exactly one user.
// AuthorID is set from the authenticated caller and never changes.
type Post struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IsOwnedBy reports whether userID is the post's author.
// Both identifiers are compared in canonical form.
func (p *Post) IsOwnedBy(userID string) bool {
	owner, ok := CanonicalID(p.AuthorID)
	if !ok {
		return false
	}
	caller, ok := CanonicalID(userID)
	if !ok {
		return false
	}
	return owner == caller
}

// CachedPost represents post data stored in a Redis hash.
type CachedPost struct {
	Title     string `redis:"title"`
	Content   string `redis:"content"`
	AuthorID  string `redis:"author_id"`
	CreatedAt string `redis:"created_at"` // Unix nanoseconds
}

// ToCachedPost converts a Post to its cache representation.
func (p *Post) ToCachedPost() *CachedPost {
	return &CachedPost{
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		CreatedAt: strconv.FormatInt(p.CreatedAt.UnixNano(), 10),
	}
}

// ToPost rebuilds a Post from cached data.
func (c *CachedPost) ToPost(id string) *Post {
	post := &Post{
		ID:       id,
		Title:    c.Title,
		Content:  c.Content,
		AuthorID: c.AuthorID,
	}

	if ns, err := strconv.ParseInt(c.CreatedAt, 10, 64); err == nil {
		post.CreatedAt = time.Unix(0, ns).UTC()
	}

	return post
}

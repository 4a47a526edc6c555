package dto

import (
	"time"

	"github.com/scribe/scribe/internal/model"
	"github.com/scribe/scribe/internal/service"
)

// PostRequest represents the request body for creating or updating a post.
// Any author field sent by the client is ignored.
type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ToInput converts the request to service input.
func (r PostRequest) ToInput() service.PostInput {
	return service.PostInput{
		Title:   r.Title,
		Content: r.Content,
	}
}

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPostResponse converts a Post model to PostResponse DTO.
func ToPostResponse(post *model.Post) *PostResponse {
	return &PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		AuthorID:  post.AuthorID,
		CreatedAt: post.CreatedAt,
	}
}

// ToPostListResponse converts posts to a JSON array, never null.
func ToPostListResponse(posts []*model.Post) []PostResponse {
	response := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		response = append(response, *ToPostResponse(post))
	}
	return response
}

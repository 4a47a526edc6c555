package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scribe/scribe/internal/auth"
	"github.com/scribe/scribe/internal/handler/dto"
	"github.com/scribe/scribe/internal/model"
	"github.com/scribe/scribe/internal/service"
)

// PostService is the subset of service.PostService used by PostHandler.
type PostService interface {
	Create(ctx context.Context, caller *model.User, input service.PostInput) (*model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context) ([]*model.Post, error)
	Update(ctx context.Context, caller *model.User, id string, input service.PostInput) (*model.Post, error)
	Delete(ctx context.Context, caller *model.User, id string) error
}

// PostHandler handles HTTP requests for post operations.
type PostHandler struct {
	svc    PostService
	logger *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /blog/posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	caller := auth.MustCallerFromContext(r.Context())
	post, err := h.svc.Create(r.Context(), caller, req.ToInput())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("post_created",
		"post_id", post.ID,
		"author_id", post.AuthorID,
	)

	writeJSON(w, http.StatusOK, dto.ToPostResponse(post))
}

// List handles GET /blog/posts.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.List(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPostListResponse(posts))
}

// Get handles GET /blog/posts/{id}.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPostResponse(post))
}

// Update handles PUT /blog/posts/{id}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.PostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	caller := auth.MustCallerFromContext(r.Context())
	post, err := h.svc.Update(r.Context(), caller, chi.URLParam(r, "id"), req.ToInput())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("post_updated", "post_id", post.ID)

	writeJSON(w, http.StatusOK, dto.ToPostResponse(post))
}

// Delete handles DELETE /blog/posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	caller := auth.MustCallerFromContext(r.Context())
	if err := h.svc.Delete(r.Context(), caller, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("post_deleted", "post_id", id)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Post deleted successfully"})
}

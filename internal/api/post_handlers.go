package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"mikroblog/internal/auth"
	"mikroblog/internal/database"
	"mikroblog/internal/models"

	"github.com/go-chi/chi/v5"
)

const msgMissingFields = "must include name and content fields"

// errPermissionDenied marks an authenticated caller touching someone else's
// post. Mapped to 403 with the "Permission error!" detail.
var errPermissionDenied = errors.New("Permission error!")

type PostRequest struct {
	Name    string `json:"name" example:"name 1"`
	Content string `json:"content" example:"content 1"`
}

func postIDFromRequest(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodePostRequest(r *http.Request) (*PostRequest, error) {
	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, errors.New(msgMissingFields)
	}
	return &req, nil
}

// @Summary      List posts
// @Description  Returns the whole timeline, newest first. No authentication required.
// @Tags         posts
// @Produce      json
// @Success      200  {array}   models.Post
// @Failure      500  {object}  ErrorResponse
// @Router       /posts [get]
func (s *Server) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// @Summary      Get a single post
// @Tags         posts
// @Produce      json
// @Param        postId  path      int  true  "Post ID"
// @Success      200     {object}  models.Post
// @Failure      404     {object}  ErrorResponse
// @Router       /posts/{postId} [get]
func (s *Server) GetPostHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusNotFound, "")
		return
	}

	post, err := s.store.GetPostByID(r.Context(), postID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// @Summary      Create a post
// @Description  Creates a new post owned by the acting user.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        post  body      PostRequest  true  "Post fields"
// @Success      201   {object}  models.Post
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /posts [post]
func (s *Server) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	req, err := decodePostRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	// With auth disabled posts are created ownerless, as the earliest
	// deployments did.
	var userID *int64
	if user != nil {
		userID = &user.ID
	}

	post, err := s.store.CreatePost(r.Context(), database.CreatePostParams{
		Name:    req.Name,
		Content: req.Content,
		UserID:  userID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	s.publishEvent("post_created", post)

	w.Header().Set("Location", fmt.Sprintf("/api/posts/%d", post.ID))
	writeJSON(w, http.StatusCreated, post)
}

// @Summary      Update a post
// @Description  Replaces name and content of a post. Only the owner may update it.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        postId  path      int          true  "Post ID"
// @Param        post    body      PostRequest  true  "Post fields"
// @Success      201     {object}  models.Post
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /posts/{postId} [put]
func (s *Server) UpdatePostHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	postID, ok := postIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusNotFound, "")
		return
	}

	req, err := decodePostRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	// Lock, check ownership and write in one transaction so the check never
	// runs against stale data.
	var updated *models.Post
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		post, err := q.GetPostForUpdate(r.Context(), postID)
		if err != nil {
			return err
		}
		if post == nil {
			return database.ErrPostNotFound
		}
		if s.resolver.Enabled() && !auth.CanMutate(user, post) {
			return errPermissionDenied
		}
		updated, err = q.UpdatePost(r.Context(), postID, req.Name, req.Content)
		return err
	})
	if txErr != nil {
		s.writePostTxError(w, txErr)
		return
	}

	s.publishEvent("post_updated", updated)

	w.Header().Set("Location", fmt.Sprintf("/api/posts/%d", updated.ID))
	writeJSON(w, http.StatusCreated, updated)
}

// @Summary      Delete a post
// @Description  Deletes a post and returns the remaining timeline. Only the owner may delete it.
// @Tags         posts
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        postId  path      int  true  "Post ID"
// @Success      202     {array}   models.Post
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /posts/{postId} [delete]
func (s *Server) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	postID, ok := postIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusNotFound, "")
		return
	}

	var remaining []models.Post
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		post, err := q.GetPostForUpdate(r.Context(), postID)
		if err != nil {
			return err
		}
		if post == nil {
			return database.ErrPostNotFound
		}
		if s.resolver.Enabled() && !auth.CanMutate(user, post) {
			return errPermissionDenied
		}
		if _, err := q.DeletePost(r.Context(), postID); err != nil {
			return err
		}
		remaining, err = q.ListPosts(r.Context())
		return err
	})
	if txErr != nil {
		s.writePostTxError(w, txErr)
		return
	}

	s.publishEvent("post_deleted", map[string]int64{"id": postID})

	writeJSON(w, http.StatusAccepted, remaining)
}

func (s *Server) writePostTxError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "")
	case errors.Is(err, errPermissionDenied):
		writeError(w, http.StatusForbidden, errPermissionDenied.Error())
	default:
		writeError(w, http.StatusInternalServerError, "")
	}
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"mikroblog/internal/auth"
	"mikroblog/internal/database"
)

type RegisterRequest struct {
	Username string `json:"username" example:"bob"`
	Email    string `json:"email" example:"bob@mail.com"`
	Password string `json:"password" example:"321"`
}

// @Summary      Register a new user
// @Description  Creates a user account. Username and email must be unique.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        registerRequest  body      RegisterRequest  true  "Account details"
// @Success      201              {object}  models.User
// @Failure      400              {object}  ErrorResponse
// @Router       /users [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "must include username, email and password fields")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	user, err := s.store.CreateUser(r.Context(), database.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateUser) {
			writeError(w, http.StatusBadRequest, "please use a different username or email address")
			return
		}
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// @Summary      Get current user info
// @Description  Returns the account of the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  ErrorResponse
// @Router       /me [get]
func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

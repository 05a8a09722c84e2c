package api

import (
	"errors"
	"net/http"

	"mikroblog/internal/auth"
)

type TokenResponse struct {
	Token string `json:"token" example:"V1StGXR8Z5jdHi6BmyTV1StGXR8Z5jdHi"`
}

// @Summary      Issue an API token
// @Description  Exchanges Basic credentials for the opaque API token. Issuing again while the current token has enough life left returns the same token.
// @Tags         tokens
// @Produce      json
// @Security     BasicAuth
// @Success      200  {object}  TokenResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /tokens [post]
func (s *Server) CreateTokenHandler(w http.ResponseWriter, r *http.Request) {
	// Basic only: a bearer token must not be able to mint further tokens.
	user, err := s.resolver.ResolveBasic(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, "")
		} else {
			writeError(w, http.StatusInternalServerError, "")
		}
		return
	}

	token, err := s.tokens.GetOrIssue(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// @Summary      Revoke the API token
// @Description  Invalidates the acting user's token immediately. Revoking an absent token is still a success.
// @Tags         tokens
// @Security     BasicAuth
// @Security     BearerAuth
// @Success      204  {null}    nil "No Content"
// @Failure      401  {object}  ErrorResponse
// @Router       /tokens [delete]
func (s *Server) RevokeTokenHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "")
		return
	}

	if err := s.tokens.Revoke(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

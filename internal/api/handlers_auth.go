package api

import (
	"net/http"

	apperrors "github.com/ifrs17-reporting/internal/errors"
	"github.com/ifrs17-reporting/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister handles POST /api/v1/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.createUser(w, r)
}

// handleLogin handles POST /api/v1/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	token, err := s.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if apperrors.GetHTTPStatusCode(err) == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, token)
}

// handleLogout handles POST /api/v1/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	if err := s.userService.Logout(r.Context(), session); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createUser decodes a NewUser body and creates a USER account.
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req models.NewUser
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, err := s.userService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

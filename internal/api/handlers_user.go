package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	apperrors "github.com/ifrs17-reporting/internal/errors"
)

// handleCreateUser handles POST /api/v1/users - Create a new user
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	s.createUser(w, r)
}

// handleListUsers handles GET /api/v1/users - List all users (admin only)
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// handleGetUser handles GET /api/v1/users/{id} - Get user by ID
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		respondServiceError(w, r, apperrors.NewInvalidParameterError("id", "must be an integer"))
		return
	}

	user, err := s.userService.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

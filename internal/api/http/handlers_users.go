package apihttp

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/keirastanley/kellaspace-backend/internal/domain"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users"), "/")
	parts := []string{}
	if rest != "" {
		parts = strings.Split(rest, "/")
	}

	switch {
	case len(parts) == 0:
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleCreateUser(w, r)

	case len(parts) == 2 && parts[0] == "sub":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleGetUserBySub(w, r, parts[1])

	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			s.handleGetUser(w, r, parts[0])
		case http.MethodDelete:
			s.handleDeleteUser(w, r, parts[0])
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}

	case len(parts) == 2 && parts[1] == "recommendation":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleAddRecommendation(w, r, parts[0])

	case len(parts) == 2 && parts[1] == "list":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleAddList(w, r, parts[0])

	case len(parts) == 3 && parts[1] == "recommendations":
		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleEditRecommendation(w, r, parts[0], parts[2])

	case len(parts) == 3 && parts[1] == "recommendation":
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleDeleteRecommendation(w, r, parts[0], parts[2])

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, id string) {
	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Error fetching user")
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

func (s *Server) handleGetUserBySub(w http.ResponseWriter, r *http.Request, sub string) {
	if strings.TrimSpace(sub) == "" {
		writeFailure(w, http.StatusBadRequest, "User identifier must be a string")
		return
	}
	user, err := s.users.GetBySub(r.Context(), sub)
	if err != nil {
		writeDomainError(w, err, "Error fetching user")
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if !decodeBody(w, r, &user, "Invalid user data") {
		return
	}
	created, err := s.users.Create(r.Context(), user)
	if err != nil {
		writeDomainError(w, err, "Error creating user")
		return
	}
	writeSuccess(w, http.StatusCreated, created)
}

func (s *Server) handleAddRecommendation(w http.ResponseWriter, r *http.Request, userID string) {
	var rec domain.Recommendation
	if !decodeBody(w, r, &rec, "Invalid data") {
		return
	}
	user, err := s.users.AddRecommendation(r.Context(), userID, rec)
	if err != nil {
		writeDomainError(w, err, "Error adding recommendation")
		return
	}
	writeSuccess(w, http.StatusCreated, user)
}

func (s *Server) handleAddList(w http.ResponseWriter, r *http.Request, userID string) {
	var list domain.List
	if !decodeBody(w, r, &list, "Invalid data") {
		return
	}
	user, err := s.users.AddList(r.Context(), userID, list)
	if err != nil {
		writeDomainError(w, err, "Error adding list")
		return
	}
	writeSuccess(w, http.StatusCreated, user)
}

func (s *Server) handleEditRecommendation(w http.ResponseWriter, r *http.Request, userID, recommendationID string) {
	var patch domain.RecommendationPatch
	if !decodeBody(w, r, &patch, "Invalid data") {
		return
	}
	user, err := s.users.EditRecommendation(r.Context(), userID, recommendationID, patch)
	if err != nil {
		writeDomainError(w, err, "Error updating recommendation")
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

func (s *Server) handleDeleteRecommendation(w http.ResponseWriter, r *http.Request, userID, recommendationID string) {
	user, err := s.users.DeleteRecommendation(r.Context(), userID, recommendationID)
	if err != nil {
		writeDomainError(w, err, "Error deleting recommendation")
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.users.Delete(r.Context(), userID); err != nil {
		writeDomainError(w, err, "Error deleting user")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, message string) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, message)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeFailure(w, http.StatusBadRequest, message)
		return false
	}
	return true
}

package http

import (
	"context"
	"net/http"

	"spendwise/internal/core"
	"spendwise/internal/services"
)

func (s *Server) cachedCategories(ctx context.Context, user string) ([]core.Category, error) {
	if cats, ok := s.catCache.Get(user); ok {
		return cats, nil
	}
	cats, err := s.categories.List(ctx, user)
	if err != nil {
		return nil, err
	}
	s.catCache.Set(user, cats)
	return cats, nil
}

type categoryList struct {
	Categories []core.Category `json:"categories"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, user string) {
	cats, err := s.cachedCategories(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categoryList{Categories: cats})
}

// handleSuggestions returns the canned description for each known category,
// used by the add form to pre-fill the description field.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request, user string) {
	writeJSON(w, http.StatusOK, services.Suggestions)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, user string) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	id, err := s.categories.Add(r.Context(), user, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateUser(user)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleSeedCategories(w http.ResponseWriter, r *http.Request, user string) {
	added, err := s.categories.SeedDefaults(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateUser(user)
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request, user string) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.categories.Rename(r.Context(), user, r.PathValue("id"), req.Name); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateUser(user)
	writeJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, user string) {
	if err := s.categories.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateUser(user)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

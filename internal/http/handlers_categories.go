package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"spendwise/internal/core"
)

// categoryRequest is the JSON body for creating or updating a category.
type categoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

func (req categoryRequest) toCategory(ownerID string) core.Category {
	return core.Category{
		OwnerID: ownerID,
		Name:    sanitizeInput(req.Name),
		Icon:    strings.TrimSpace(req.Icon),
		Color:   strings.TrimSpace(req.Color),
		Type:    core.TransactionType(strings.TrimSpace(req.Type)),
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, ownerID string) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	categories, err := s.categories.List(r.Context(), ownerID, includeInactive)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "categories", toCategoryViews(categories))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	created, err := s.categories.Create(r.Context(), req.toCategory(ownerID))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, "category created", toCategoryView(created))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request, ownerID string) {
	id, err := parsePathID(r)
	if err != nil {
		writeBadRequest(w, "invalid category id")
		return
	}

	category, err := s.categories.Get(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "category", toCategoryView(category))
}

// categoryUpdateRequest carries a partial update. Absent fields keep their
// stored value.
type categoryUpdateRequest struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
	Type  *string `json:"type"`
}

func (req categoryUpdateRequest) applyTo(c *core.Category) {
	if req.Name != nil {
		c.Name = sanitizeInput(*req.Name)
	}
	if req.Icon != nil {
		c.Icon = strings.TrimSpace(*req.Icon)
	}
	if req.Color != nil {
		c.Color = strings.TrimSpace(*req.Color)
	}
	if req.Type != nil {
		c.Type = core.TransactionType(strings.TrimSpace(*req.Type))
	}
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, ownerID string) {
	id, err := parsePathID(r)
	if err != nil {
		writeBadRequest(w, "invalid category id")
		return
	}

	var req categoryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	category, err := s.categories.Get(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req.applyTo(&category)

	updated, err := s.categories.Update(r.Context(), category)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "category updated", toCategoryView(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, ownerID string) {
	id, err := parsePathID(r)
	if err != nil {
		writeBadRequest(w, "invalid category id")
		return
	}

	if err := s.categories.Delete(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "category deleted", nil)
}

// handleSeedCategories installs the stock category set. It is a no-op when
// the owner already has categories, so clients may call it on every startup.
func (s *Server) handleSeedCategories(w http.ResponseWriter, r *http.Request, ownerID string) {
	categories, err := s.categories.Seed(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "categories seeded", toCategoryViews(categories))
}

func (s *Server) handleCategoryUsage(w http.ResponseWriter, r *http.Request, ownerID string) {
	stats, err := s.categories.UsageStats(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "category usage", toUsageStatsView(stats))
}

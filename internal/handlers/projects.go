package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams parses limit and offset from the query string, with
// defaults and caps.
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 5, Offset: 0}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 50 {
			params.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			params.Offset = o
		}
	}
	return params
}

func urlParamInt(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	return v, err == nil && v > 0
}

// parseDate parses an optional YYYY-MM-DD field.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateProjectHandler handles POST /api/projects/new.
func (h *Handler) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Budget      float64 `json:"budget"`
		Deadline    string  `json:"deadline"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	deadline, err := parseDate(input.Deadline)
	if err != nil {
		http.Error(w, "Invalid deadline, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	project, err := h.Svc.CreateProject(r.Context(), requesterID(r), input.Title, input.Description, input.Budget, deadline)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// EditProjectHandler handles PATCH /api/projects/{projectId}/edit.
func (h *Handler) EditProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlParamInt(r, "projectId")
	if !ok {
		http.Error(w, "Invalid projectId", http.StatusBadRequest)
		return
	}

	var input struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Budget      float64 `json:"budget"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	project, err := h.Svc.UpdateProject(r.Context(), projectID, requesterID(r), input.Title, input.Description, input.Budget)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// GetProjectsHandler lists open projects.
func (h *Handler) GetProjectsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	projects, err := h.Svc.ListOpenProjects(r.Context(), params.Limit, params.Offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// GetMyProjectsHandler lists the authenticated client's projects.
func (h *Handler) GetMyProjectsHandler(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Svc.ListClientProjects(r.Context(), requesterID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// GetProjectHandler returns a project with its bids and milestones.
func (h *Handler) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlParamInt(r, "projectId")
	if !ok {
		http.Error(w, "Invalid projectId", http.StatusBadRequest)
		return
	}

	project, bids, milestones, err := h.Svc.ProjectDetails(r.Context(), projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project":    project,
		"bids":       bids,
		"milestones": milestones,
	})
}

// AwardBidHandler handles POST /api/projects/{projectId}/award/{bidId}.
func (h *Handler) AwardBidHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlParamInt(r, "projectId")
	if !ok {
		http.Error(w, "Invalid projectId", http.StatusBadRequest)
		return
	}
	bidID, ok := urlParamInt(r, "bidId")
	if !ok {
		http.Error(w, "Invalid bidId", http.StatusBadRequest)
		return
	}

	bid, err := h.Svc.AwardBid(r.Context(), projectID, bidID, requesterID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

// CloseProjectHandler handles POST /api/projects/{projectId}/close.
func (h *Handler) CloseProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlParamInt(r, "projectId")
	if !ok {
		http.Error(w, "Invalid projectId", http.StatusBadRequest)
		return
	}

	project, err := h.Svc.CloseProject(r.Context(), projectID, requesterID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

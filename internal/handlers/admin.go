package handlers

import (
	"net/http"
)

// AdminUsersHandler handles GET /api/admin/users.
func (h *Handler) AdminUsersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	users, err := h.Svc.ListAllUsers(r.Context(), requesterID(r), params.Limit, params.Offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// AdminProjectsHandler handles GET /api/admin/projects.
func (h *Handler) AdminProjectsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	projects, err := h.Svc.ListAllProjects(r.Context(), requesterID(r), params.Limit, params.Offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

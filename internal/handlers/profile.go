package handlers

import (
	"net/http"
)

// GetProfileHandler handles GET /api/profile: the caller's own account plus
// the reviews they have received.
func (h *Handler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, reviews, err := h.Svc.Profile(r.Context(), requesterID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"reviews": reviews,
	})
}

// EditProfileHandler handles PATCH /api/profile/edit.
func (h *Handler) EditProfileHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	user, err := h.Svc.UpdateProfile(r.Context(), requesterID(r), input.Name, input.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

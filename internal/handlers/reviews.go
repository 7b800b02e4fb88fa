package handlers

import (
	"net/http"
)

// SubmitReviewHandler handles POST /api/projects/{projectId}/reviews.
func (h *Handler) SubmitReviewHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlParamInt(r, "projectId")
	if !ok {
		http.Error(w, "Invalid projectId", http.StatusBadRequest)
		return
	}

	var input struct {
		RevieweeID int    `json:"revieweeId"`
		Rating     int    `json:"rating"`
		Comment    string `json:"comment"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	review, err := h.Svc.SubmitReview(r.Context(), projectID, requesterID(r), input.RevieweeID, input.Rating, input.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// GetUserReviewsHandler handles GET /api/users/{userId}/reviews.
func (h *Handler) GetUserReviewsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamInt(r, "userId")
	if !ok {
		http.Error(w, "Invalid userId", http.StatusBadRequest)
		return
	}

	reviews, err := h.Svc.ListUserReviews(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

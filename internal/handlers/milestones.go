package handlers

import (
	"net/http"

	"freelancehub/db"
)

// CreateMilestoneHandler handles POST /api/projects/{projectId}/milestones.
func (h *Handler) CreateMilestoneHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlParamInt(r, "projectId")
	if !ok {
		http.Error(w, "Invalid projectId", http.StatusBadRequest)
		return
	}

	var input struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		DueDate     string  `json:"dueDate"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	dueDate, err := parseDate(input.DueDate)
	if err != nil {
		http.Error(w, "Invalid dueDate, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	milestone, err := h.Svc.CreateMilestone(r.Context(), projectID, requesterID(r), input.Title, input.Description, input.Amount, dueDate)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, milestone)
}

// UpdateMilestoneStatusHandler handles POST /api/milestones/{milestoneId}/status.
func (h *Handler) UpdateMilestoneStatusHandler(w http.ResponseWriter, r *http.Request) {
	milestoneID, ok := urlParamInt(r, "milestoneId")
	if !ok {
		http.Error(w, "Invalid milestoneId", http.StatusBadRequest)
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	milestone, err := h.Svc.AdvanceMilestoneStatus(r.Context(), milestoneID, requesterID(r), db.MilestoneStatus(input.Status))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, milestone)
}

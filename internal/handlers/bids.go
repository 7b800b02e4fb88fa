package handlers

import (
	"net/http"
)

// PlaceBidHandler handles POST /api/projects/{projectId}/bid.
func (h *Handler) PlaceBidHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlParamInt(r, "projectId")
	if !ok {
		http.Error(w, "Invalid projectId", http.StatusBadRequest)
		return
	}

	var input struct {
		Amount       float64 `json:"amount"`
		CoverLetter  string  `json:"coverLetter"`
		DeliveryTime string  `json:"deliveryTime"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	bid, err := h.Svc.PlaceBid(r.Context(), projectID, requesterID(r), input.Amount, input.CoverLetter, input.DeliveryTime)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bid)
}

// GetMyBidsHandler lists the authenticated freelancer's bids.
func (h *Handler) GetMyBidsHandler(w http.ResponseWriter, r *http.Request) {
	bids, err := h.Svc.ListFreelancerBids(r.Context(), requesterID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

// WithdrawBidHandler handles DELETE /api/bids/{bidId}.
func (h *Handler) WithdrawBidHandler(w http.ResponseWriter, r *http.Request) {
	bidID, ok := urlParamInt(r, "bidId")
	if !ok {
		http.Error(w, "Invalid bidId", http.StatusBadRequest)
		return
	}

	if err := h.Svc.WithdrawBid(r.Context(), bidID, requesterID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

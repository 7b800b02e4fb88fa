package handlers

import (
	"errors"
	"net/http"

	"freelancehub/db"
	"freelancehub/internal/service"
)

// RegisterHandler handles POST /api/register.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	user, err := h.Svc.RegisterUser(r.Context(), input.Name, input.Email, input.Password, db.Role(input.Role))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// LoginHandler handles POST /api/login and returns a bearer token.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	user, err := h.Svc.Authenticate(r.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			// Credential failures are 401, not 403: the caller is unknown here.
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		}
		h.writeError(w, err)
		return
	}

	token, err := GenerateToken(user.ID, h.JWTSecret)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

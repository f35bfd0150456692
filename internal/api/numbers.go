package api

import (
	"net/http"

	"github.com/LeventeLantos/campaign-builder/internal/model"
)

type registerNumberRequest struct {
	PhoneNumber string `json:"phone_number"`
	Label       string `json:"label"`
	DailyLimit  int    `json:"daily_limit"`
}

type numberStatusRequest struct {
	Status model.NumberStatus `json:"status"`
}

func (h *Handler) ListNumbers(w http.ResponseWriter, r *http.Request) {
	items, err := h.numbers.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) RegisterNumber(w http.ResponseWriter, r *http.Request) {
	var in registerNumberRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.numbers.Register(r.Context(), in.PhoneNumber, in.Label, in.DailyLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handler) SetNumberStatus(w http.ResponseWriter, r *http.Request) {
	var in numberStatusRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	if err := h.numbers.SetStatus(r.Context(), id, in.Status); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": in.Status})
}

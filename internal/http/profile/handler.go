package profile

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	internalhttp "github.com/danielcasamentos/priceus-sub002/internal/http"
	"github.com/danielcasamentos/priceus-sub002/internal/profile"
)

type Handler struct {
	svc *profile.Service
}

func NewHandler(svc *profile.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.upsert)
}

type profileResponse struct {
	BusinessName   string     `json:"business_name"`
	OwnerName      string     `json:"owner_name"`
	Document       string     `json:"document"`
	Phone          string     `json:"phone,omitempty"`
	Email          string     `json:"email,omitempty"`
	City           string     `json:"city,omitempty"`
	State          string     `json:"state,omitempty"`
	LogoURL        string     `json:"logo_url,omitempty"`
	HideItemValues bool       `json:"hide_item_values"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

func toResponse(p *profile.Profile) profileResponse {
	return profileResponse{
		BusinessName:   p.BusinessName,
		OwnerName:      p.OwnerName,
		Document:       p.Document,
		Phone:          p.Phone,
		Email:          p.Email,
		City:           p.City,
		State:          p.State,
		LogoURL:        p.LogoURL,
		HideItemValues: p.HideItemValues,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), internalhttp.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type upsertProfileRequest struct {
	BusinessName   string `json:"business_name"`
	OwnerName      string `json:"owner_name"`
	Document       string `json:"document"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	City           string `json:"city"`
	State          string `json:"state"`
	LogoURL        string `json:"logo_url"`
	HideItemValues bool   `json:"hide_item_values"`
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := &profile.Profile{
		UserID:         internalhttp.UserID(r.Context()),
		BusinessName:   req.BusinessName,
		OwnerName:      req.OwnerName,
		Document:       req.Document,
		Phone:          req.Phone,
		Email:          req.Email,
		City:           req.City,
		State:          req.State,
		LogoURL:        req.LogoURL,
		HideItemValues: req.HideItemValues,
	}

	if err := h.svc.Upsert(r.Context(), p); err != nil {
		if errors.Is(err, profile.ErrInvalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

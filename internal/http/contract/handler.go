package contract

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/contract"
	internalhttp "github.com/danielcasamentos/priceus-sub002/internal/http"
)

// Handler serves the issuer-facing contract and template endpoints.
// The public signing flow lives in PublicHandler.
type Handler struct {
	svc *contract.Service
}

func NewHandler(svc *contract.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.issue)
	r.Get("/", h.list)
}

func (h *Handler) TemplateRoutes(r chi.Router) {
	r.Post("/", h.createTemplate)
	r.Get("/", h.listTemplates)
	r.Get("/{id}", h.getTemplate)
	r.Put("/{id}", h.updateTemplate)
}

type issueContractRequest struct {
	TemplateID         uuid.UUID         `json:"template_id"`
	Lead               contract.LeadData `json:"lead"`
	UserSignatureImage string            `json:"user_signature_image"`
	ExpiresAt          time.Time         `json:"expires_at"`
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req issueContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Issue(r.Context(), contract.IssueParams{
		UserID:             internalhttp.UserID(r.Context()),
		TemplateID:         req.TemplateID,
		LeadData:           req.Lead,
		UserSignatureImage: req.UserSignatureImage,
		ExpiresAt:          req.ExpiresAt,
	}, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, contract.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, contract.ErrTemplateNotFound):
			http.Error(w, "template not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toContractResponse(c, h.svc.SigningURL(c.Token), time.Now().UTC())); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.svc.List(r.Context(), internalhttp.UserID(r.Context()))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()

	resp := make([]contractResponse, len(contracts))
	for i, c := range contracts {
		resp[i] = toContractResponse(c, h.svc.SigningURL(c.Token), now)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type templateRequest struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t, err := h.svc.CreateTemplate(r.Context(), contract.TemplateParams{
		UserID: internalhttp.UserID(r.Context()),
		Name:   req.Name,
		Body:   req.Body,
	})
	if err != nil {
		if errors.Is(err, contract.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toTemplateResponse(t)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.svc.ListTemplates(r.Context(), internalhttp.UserID(r.Context()))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]templateResponse, len(templates))
	for i, t := range templates {
		resp[i] = toTemplateResponse(t)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	t, err := h.svc.GetTemplate(r.Context(), internalhttp.UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, contract.ErrTemplateNotFound) {
			http.Error(w, "template not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toTemplateResponse(t)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t := &contract.Template{
		ID:     id,
		UserID: internalhttp.UserID(r.Context()),
		Name:   req.Name,
		Body:   req.Body,
	}

	if err := h.svc.UpdateTemplate(r.Context(), t); err != nil {
		switch {
		case errors.Is(err, contract.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, contract.ErrTemplateNotFound):
			http.Error(w, "template not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toTemplateResponse(t)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/contract"
)

// PublicHandler serves the unauthenticated signing and verification
// flow. Everything here is keyed by the contract token.
type PublicHandler struct {
	svc *contract.Service
}

func NewPublicHandler(svc *contract.Service) *PublicHandler {
	return &PublicHandler{svc: svc}
}

func (h *PublicHandler) Routes(r chi.Router) {
	r.Get("/contracts/{token}", h.bundle)
	r.Post("/contracts/{token}/draft", h.draft)
	r.Post("/contracts/{token}/sign", h.sign)
	r.Get("/contracts/{token}/status", h.status)
	r.Get("/verify/{token}", h.verify)
}

func signingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contract.ErrNotFound):
		http.Error(w, "contract not found", http.StatusNotFound)
	case errors.Is(err, contract.ErrExpired):
		http.Error(w, "contract expired", http.StatusGone)
	case errors.Is(err, contract.ErrAlreadySigned):
		http.Error(w, "contract already signed", http.StatusConflict)
	case errors.Is(err, contract.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, contract.ErrInvalidDraft):
		http.Error(w, "invalid or expired signing session", http.StatusUnauthorized)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type bundleResponse struct {
	ContractID   uuid.UUID         `json:"contract_id"`
	Status       contract.Status   `json:"status"`
	Lead         contract.LeadData `json:"lead"`
	TemplateName string            `json:"template_name"`
	TemplateBody string            `json:"template_body"`
	BusinessName string            `json:"business_name,omitempty"`
	LogoURL      string            `json:"logo_url,omitempty"`
	ExpiresAt    time.Time         `json:"expires_at"`
}

func (h *PublicHandler) bundle(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.svc.PublicBundle(r.Context(), chi.URLParam(r, "token"), time.Now().UTC())
	if err != nil {
		signingError(w, err)
		return
	}

	resp := bundleResponse{
		ContractID:   bundle.Contract.ID,
		Status:       bundle.Contract.Status,
		Lead:         bundle.Contract.LeadData,
		TemplateName: bundle.Template.Name,
		TemplateBody: bundle.Template.Body,
		ExpiresAt:    bundle.Contract.ExpiresAt,
	}

	if bundle.Issuer != nil {
		resp.BusinessName = bundle.Issuer.BusinessName
		resp.LogoURL = bundle.Issuer.LogoURL
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type draftRequest struct {
	Client         contract.ClientData `json:"client"`
	SignatureImage string              `json:"signature_image"`
}

type draftResponse struct {
	DraftToken string `json:"draft_token"`
}

func (h *PublicHandler) draft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	draft, err := h.svc.StartDraft(r.Context(), chi.URLParam(r, "token"),
		req.Client, req.SignatureImage, clientIP(r), time.Now().UTC())
	if err != nil {
		signingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(draftResponse{DraftToken: draft}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type signRequest struct {
	DraftToken     string              `json:"draft_token"`
	Client         contract.ClientData `json:"client"`
	SignatureImage string              `json:"signature_image"`
}

// sign finalizes the contract and streams the PDF back in the same
// response. The archive URL, when the upload succeeded, rides along
// in a header.
func (h *PublicHandler) sign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.Finalize(r.Context(), chi.URLParam(r, "token"),
		req.DraftToken, req.Client, req.SignatureImage, time.Now().UTC())
	if err != nil {
		signingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))

	if res.PDFURL != "" {
		w.Header().Set("X-Contract-Pdf-Url", res.PDFURL)
	}

	if _, err := w.Write(res.PDF); err != nil {
		slog.Error("failed to write contract pdf", "error", err)
	}
}

type statusResponse struct {
	Status contract.Status `json:"status"`
}

func (h *PublicHandler) status(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context(), chi.URLParam(r, "token"), time.Now().UTC())
	if err != nil {
		signingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(statusResponse{Status: status}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type verifyResponse struct {
	ContractID   uuid.UUID `json:"contract_id"`
	SignerName   string    `json:"signer_name"`
	BusinessName string    `json:"business_name,omitempty"`
	SignedAt     time.Time `json:"signed_at"`
}

func (h *PublicHandler) verify(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Verify(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, contract.ErrNotAuthentic) {
			http.Error(w, "document not authentic", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := verifyResponse{
		ContractID:   v.ContractID,
		SignerName:   v.SignerName,
		BusinessName: v.BusinessName,
		SignedAt:     v.SignedAt,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// clientIP prefers the first X-Forwarded-For hop so the recorded
// signer address survives a reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

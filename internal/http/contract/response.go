package contract

import (
	"time"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/contract"
)

type contractResponse struct {
	ID         uuid.UUID            `json:"id"`
	TemplateID uuid.UUID            `json:"template_id"`
	Token      string               `json:"token"`
	Status     contract.Status      `json:"status"`
	Lead       contract.LeadData    `json:"lead"`
	Client     *contract.ClientData `json:"client,omitempty"`
	SigningURL string               `json:"signing_url"`
	ExpiresAt  time.Time            `json:"expires_at"`
	SignedAt   *time.Time           `json:"signed_at,omitempty"`
	PDFURL     string               `json:"pdf_url,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// toContractResponse reports the read-time status so a pending
// contract past its expiry shows as expired without a writeback.
func toContractResponse(c *contract.Contract, signingURL string, now time.Time) contractResponse {
	return contractResponse{
		ID:         c.ID,
		TemplateID: c.TemplateID,
		Token:      c.Token,
		Status:     c.EffectiveStatus(now),
		Lead:       c.LeadData,
		Client:     c.ClientData,
		SigningURL: signingURL,
		ExpiresAt:  c.ExpiresAt,
		SignedAt:   c.SignedAt,
		PDFURL:     c.PDFURL,
		CreatedAt:  c.CreatedAt,
	}
}

type templateResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toTemplateResponse(t *contract.Template) templateResponse {
	return templateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Body:      t.Body,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

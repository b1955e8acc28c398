package contract

import (
	"time"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/civil"
)

// Status is the persisted lifecycle state of a contract. "expired" is
// never written by the application: a pending contract past its
// expiry is classified as expired at read time.
type Status string

const (
	StatusPending Status = "pending"
	StatusSigned  Status = "signed"
	StatusExpired Status = "expired"
)

// LineItem is one product or service from the originating quote.
// Price in cents.
type LineItem struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// LeadData is the snapshot of the quote the contract was issued from.
// Amounts in cents.
type LeadData struct {
	ClientName     string     `json:"client_name"`
	ClientEmail    string     `json:"client_email,omitempty"`
	ClientPhone    string     `json:"client_phone,omitempty"`
	EventType      string     `json:"event_type,omitempty"`
	EventDate      civil.Date `json:"event_date,omitzero"`
	Items          []LineItem `json:"items,omitempty"`
	Subtotal       int64      `json:"subtotal"`
	Discount       int64      `json:"discount"`
	Surcharge      int64      `json:"surcharge"`
	Adjustment     int64      `json:"adjustment"`
	Total          int64      `json:"total"`
	HideItemValues bool       `json:"hide_item_values"`
}

// ClientData is filled in by the signer on the public signing page.
type ClientData struct {
	FullName      string `json:"full_name"`
	Document      string `json:"document"`
	Address       string `json:"address"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	EventLocation string `json:"event_location,omitempty"`
	EventTime     string `json:"event_time,omitempty"`
}

// Contract is one quote-to-signature document instance. The token
// grants unauthenticated access to this contract only.
type Contract struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	TemplateID           uuid.UUID
	Token                string
	Status               Status
	LeadData             LeadData
	ClientData           *ClientData // nil until signing
	UserSignatureImage   string      // base64 PNG
	ClientSignatureImage string      // base64 PNG, set at signing
	ClientIP             string
	ExpiresAt            time.Time
	SignedAt             *time.Time
	PDFURL               string
	CreatedAt            time.Time
}

// Signable reports whether the contract can still enter the signing
// flow at the given instant.
func (c *Contract) Signable(now time.Time) bool {
	return c.Status == StatusPending && now.Before(c.ExpiresAt)
}

// EffectiveStatus derives the read-time classification: a pending
// contract past its expiry reads as expired.
func (c *Contract) EffectiveStatus(now time.Time) Status {
	if c.Status == StatusPending && !now.Before(c.ExpiresAt) {
		return StatusExpired
	}

	return c.Status
}

// SignerName prefers the client-entered full legal name over the
// casual name from the lead snapshot.
func (c *Contract) SignerName() string {
	if c.ClientData != nil && c.ClientData.FullName != "" {
		return c.ClientData.FullName
	}

	return c.LeadData.ClientName
}

// Template is a contract text with {{PLACEHOLDER}} variables.
type Template struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Body      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

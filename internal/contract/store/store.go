// Package store implements the contract repository over postgres.
// Lead and client data are stored as JSONB so line items and event
// details keep their shape without a join table.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/contract"
	"github.com/danielcasamentos/priceus-sub002/internal/profile"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectContractColumns = `
	id, user_id, template_id, token, status, lead_data, client_data,
	user_signature_image, client_signature_image, client_ip,
	expires_at, signed_at, pdf_url, created_at
`

type scanner interface {
	Scan(dest ...any) error
}

func scanContract(row scanner) (*contract.Contract, error) {
	var (
		c          contract.Contract
		leadData   []byte
		clientData []byte
		clientSig  sql.NullString
		clientIP   sql.NullString
		signedAt   sql.NullTime
		pdfURL     sql.NullString
	)

	err := row.Scan(
		&c.ID, &c.UserID, &c.TemplateID, &c.Token, &c.Status, &leadData, &clientData,
		&c.UserSignatureImage, &clientSig, &clientIP,
		&c.ExpiresAt, &signedAt, &pdfURL, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(leadData, &c.LeadData); err != nil {
		return nil, fmt.Errorf("decoding lead data: %w", err)
	}

	if len(clientData) > 0 {
		c.ClientData = new(contract.ClientData)
		if err := json.Unmarshal(clientData, c.ClientData); err != nil {
			return nil, fmt.Errorf("decoding client data: %w", err)
		}
	}

	c.ClientSignatureImage = clientSig.String
	c.ClientIP = clientIP.String
	c.PDFURL = pdfURL.String

	if signedAt.Valid {
		c.SignedAt = &signedAt.Time
	}

	return &c, nil
}

func (s *Store) CreateContract(ctx context.Context, c *contract.Contract) error {
	query := `
		INSERT INTO contracts (user_id, template_id, token, status, lead_data,
			user_signature_image, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	leadData, err := json.Marshal(c.LeadData)
	if err != nil {
		return fmt.Errorf("encoding lead data: %w", err)
	}

	err = s.db.QueryRowContext(ctx, query,
		c.UserID, c.TemplateID, c.Token, c.Status, leadData,
		c.UserSignatureImage, c.ExpiresAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating contract: %w", err)
	}

	return nil
}

func (s *Store) GetContractByToken(ctx context.Context, token string) (*contract.Contract, error) {
	query := `SELECT ` + selectContractColumns + ` FROM contracts WHERE token = $1`

	c, err := scanContract(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contract.ErrNotFound
		}

		return nil, fmt.Errorf("getting contract by token: %w", err)
	}

	return c, nil
}

func (s *Store) ListContracts(ctx context.Context, userID uuid.UUID) ([]*contract.Contract, error) {
	query := `
		SELECT ` + selectContractColumns + `
		FROM contracts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*contract.Contract

	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}

		contracts = append(contracts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contracts: %w", err)
	}

	return contracts, nil
}

// GetBundle joins the contract with its template and the issuer's
// business profile. The profile left join tolerates issuers who never
// filled theirs in.
func (s *Store) GetBundle(ctx context.Context, token string) (*contract.Bundle, error) {
	query := `
		SELECT
			c.id, c.user_id, c.template_id, c.token, c.status, c.lead_data, c.client_data,
			c.user_signature_image, c.client_signature_image, c.client_ip,
			c.expires_at, c.signed_at, c.pdf_url, c.created_at,
			t.name, t.body,
			p.business_name, p.owner_name, p.document, p.phone, p.email,
			p.city, p.state, p.logo_url, p.hide_item_values
		FROM contracts c
		JOIN contract_templates t ON t.id = c.template_id
		LEFT JOIN business_profiles p ON p.user_id = c.user_id
		WHERE c.token = $1
	`

	var (
		c          contract.Contract
		leadData   []byte
		clientData []byte
		clientSig  sql.NullString
		clientIP   sql.NullString
		signedAt   sql.NullTime
		pdfURL     sql.NullString

		tmplName string
		tmplBody string

		businessName sql.NullString
		ownerName    sql.NullString
		document     sql.NullString
		phone        sql.NullString
		email        sql.NullString
		city         sql.NullString
		state        sql.NullString
		logoURL      sql.NullString
		hideValues   sql.NullBool
	)

	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&c.ID, &c.UserID, &c.TemplateID, &c.Token, &c.Status, &leadData, &clientData,
		&c.UserSignatureImage, &clientSig, &clientIP,
		&c.ExpiresAt, &signedAt, &pdfURL, &c.CreatedAt,
		&tmplName, &tmplBody,
		&businessName, &ownerName, &document, &phone, &email,
		&city, &state, &logoURL, &hideValues,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contract.ErrNotFound
		}

		return nil, fmt.Errorf("getting contract bundle: %w", err)
	}

	if err := json.Unmarshal(leadData, &c.LeadData); err != nil {
		return nil, fmt.Errorf("decoding lead data: %w", err)
	}

	if len(clientData) > 0 {
		c.ClientData = new(contract.ClientData)
		if err := json.Unmarshal(clientData, c.ClientData); err != nil {
			return nil, fmt.Errorf("decoding client data: %w", err)
		}
	}

	c.ClientSignatureImage = clientSig.String
	c.ClientIP = clientIP.String
	c.PDFURL = pdfURL.String

	if signedAt.Valid {
		c.SignedAt = &signedAt.Time
	}

	bundle := &contract.Bundle{
		Contract: &c,
		Template: &contract.Template{
			ID:     c.TemplateID,
			UserID: c.UserID,
			Name:   tmplName,
			Body:   tmplBody,
		},
	}

	if businessName.Valid {
		bundle.Issuer = &profile.Profile{
			UserID:         c.UserID,
			BusinessName:   businessName.String,
			OwnerName:      ownerName.String,
			Document:       document.String,
			Phone:          phone.String,
			Email:          email.String,
			City:           city.String,
			State:          state.String,
			LogoURL:        logoURL.String,
			HideItemValues: hideValues.Bool,
		}
	}

	return bundle, nil
}

// FinalizeContract flips a pending contract to signed in one guarded
// statement. Zero affected rows means another signer got there first
// or the contract was never pending.
func (s *Store) FinalizeContract(ctx context.Context, id uuid.UUID, fin contract.Finalization) error {
	query := `
		UPDATE contracts
		SET status = 'signed',
			client_data = $2,
			client_signature_image = $3,
			client_ip = $4,
			pdf_url = $5,
			signed_at = $6
		WHERE id = $1 AND status = 'pending'
	`

	clientData, err := json.Marshal(fin.ClientData)
	if err != nil {
		return fmt.Errorf("encoding client data: %w", err)
	}

	var pdfURL sql.NullString
	if fin.PDFURL != "" {
		pdfURL = sql.NullString{String: fin.PDFURL, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, query,
		id, clientData, fin.SignatureImage, fin.ClientIP, pdfURL, fin.SignedAt,
	)
	if err != nil {
		return fmt.Errorf("finalizing contract: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalizing contract: %w", err)
	}

	if rows == 0 {
		return contract.ErrAlreadySigned
	}

	return nil
}

func (s *Store) CreateTemplate(ctx context.Context, t *contract.Template) error {
	query := `
		INSERT INTO contract_templates (user_id, name, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, t.UserID, t.Name, t.Body).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating template: %w", err)
	}

	return nil
}

func (s *Store) GetTemplate(ctx context.Context, userID, id uuid.UUID) (*contract.Template, error) {
	query := `
		SELECT id, user_id, name, body, created_at, updated_at
		FROM contract_templates
		WHERE user_id = $1 AND id = $2
	`

	var (
		t         contract.Template
		updatedAt sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, query, userID, id).Scan(
		&t.ID, &t.UserID, &t.Name, &t.Body, &t.CreatedAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contract.ErrTemplateNotFound
		}

		return nil, fmt.Errorf("getting template: %w", err)
	}

	if updatedAt.Valid {
		t.UpdatedAt = &updatedAt.Time
	}

	return &t, nil
}

func (s *Store) ListTemplates(ctx context.Context, userID uuid.UUID) ([]*contract.Template, error) {
	query := `
		SELECT id, user_id, name, body, created_at, updated_at
		FROM contract_templates
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []*contract.Template

	for rows.Next() {
		var (
			t         contract.Template
			updatedAt sql.NullTime
		)

		err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Body, &t.CreatedAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}

		if updatedAt.Valid {
			t.UpdatedAt = &updatedAt.Time
		}

		templates = append(templates, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating templates: %w", err)
	}

	return templates, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, t *contract.Template) error {
	query := `
		UPDATE contract_templates
		SET name = $3, body = $4, updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING updated_at
	`

	var updatedAt time.Time

	err := s.db.QueryRowContext(ctx, query, t.UserID, t.ID, t.Name, t.Body).
		Scan(&updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return contract.ErrTemplateNotFound
		}

		return fmt.Errorf("updating template: %w", err)
	}

	t.UpdatedAt = &updatedAt

	return nil
}

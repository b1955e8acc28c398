package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/profile"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	query := `
		SELECT user_id, business_name, owner_name, document, phone, email,
			city, state, logo_url, hide_item_values, updated_at
		FROM business_profiles
		WHERE user_id = $1
	`

	var p profile.Profile

	var logoURL sql.NullString

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.BusinessName, &p.OwnerName, &p.Document, &p.Phone, &p.Email,
		&p.City, &p.State, &logoURL, &p.HideItemValues, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, profile.ErrNotFound
		}

		return nil, fmt.Errorf("getting profile: %w", err)
	}

	p.LogoURL = logoURL.String

	return &p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO business_profiles (user_id, business_name, owner_name, document,
			phone, email, city, state, logo_url, hide_item_values, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			owner_name = EXCLUDED.owner_name,
			document = EXCLUDED.document,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			logo_url = EXCLUDED.logo_url,
			hide_item_values = EXCLUDED.hide_item_values,
			updated_at = NOW()
		RETURNING updated_at
	`

	var logoURL sql.NullString
	if p.LogoURL != "" {
		logoURL = sql.NullString{String: p.LogoURL, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		p.UserID, p.BusinessName, p.OwnerName, p.Document, p.Phone, p.Email,
		p.City, p.State, logoURL, p.HideItemValues,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}

	return nil
}

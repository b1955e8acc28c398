package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/category"
	"github.com/danielcasamentos/priceus-sub002/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListCategories(ctx context.Context, userID uuid.UUID) ([]category.Category, error) {
	query := `
		SELECT id, user_id, type, name, color, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY type, name
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []category.Category

	for rows.Next() {
		var c category.Category

		var typeStr string

		if err := rows.Scan(&c.ID, &c.UserID, &typeStr, &c.Name, &c.Color, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		c.Type = transaction.Type(typeStr)
		cats = append(cats, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return cats, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (user_id, type, name, color, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, c.UserID, c.Type, c.Name, c.Color).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories
		SET name = $1, color = $2
		WHERE id = $3 AND user_id = $4
	`

	res, err := s.db.ExecContext(ctx, query, c.Name, c.Color, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}

	return checkFound(res)
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1 AND user_id = $2`

	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	return checkFound(res)
}

// SeedDefaults inserts the defaults inside a transaction holding a
// per-tenant advisory lock, so two concurrent first requests cannot
// double-seed.
func (s *Store) SeedDefaults(ctx context.Context, userID uuid.UUID, defaults []category.Category) (bool, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning seed tx: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx,
		"SELECT pg_advisory_xact_lock(hashtext($1))", userID.String(),
	); err != nil {
		return false, fmt.Errorf("acquiring seed lock: %w", err)
	}

	var count int
	if err := dbTx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = $1`, userID,
	).Scan(&count); err != nil {
		return false, fmt.Errorf("counting categories: %w", err)
	}

	if count > 0 {
		return false, nil
	}

	query := `
		INSERT INTO categories (user_id, type, name, color, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	for _, c := range defaults {
		if _, err := dbTx.ExecContext(ctx, query, c.UserID, c.Type, c.Name, c.Color); err != nil {
			return false, fmt.Errorf("seeding category %q: %w", c.Name, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return false, fmt.Errorf("committing seed tx: %w", err)
	}

	return true, nil
}

func checkFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting affected rows: %w", err)
	}

	if n == 0 {
		return category.ErrNotFound
	}

	return nil
}

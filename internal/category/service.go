package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error

	// SeedDefaults inserts the given categories only if the tenant has
	// none yet. Idempotent.
	SeedDefaults(ctx context.Context, userID uuid.UUID, defaults []Category) (bool, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the tenant's categories, seeding the defaults first if
// the tenant has none.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	if _, err := s.repo.SeedDefaults(ctx, userID, Defaults(userID)); err != nil {
		return nil, fmt.Errorf("seeding default categories: %w", err)
	}

	return s.repo.ListCategories(ctx, userID)
}

type CreateParams struct {
	UserID uuid.UUID
	Type   transaction.Type
	Name   string
	Color  string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	if !transaction.ValidType(params.Type) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalid, params.Type)
	}

	if params.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	c := &Category{
		UserID: params.UserID,
		Type:   params.Type,
		Name:   params.Name,
		Color:  params.Color,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Update(ctx context.Context, c *Category) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}

	return s.repo.UpdateCategory(ctx, c)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteCategory(ctx, userID, id)
}

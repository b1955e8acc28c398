// Package profile holds the tenant's business identity, printed on
// contracts and shown on the public signing page.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the tenant has no profile yet.
var ErrNotFound = errors.New("profile not found")

// ErrInvalid is returned when profile input fails validation.
var ErrInvalid = errors.New("invalid profile")

type Profile struct {
	UserID         uuid.UUID
	BusinessName   string
	OwnerName      string
	Document       string // CPF/CNPJ
	Phone          string
	Email          string
	City           string
	State          string
	LogoURL        string
	HideItemValues bool // default for new quotes: hide per-item prices
	UpdatedAt      *time.Time
}

//go:generate mockgen -source=profile.go -destination=repository_mock.go -package=profile
type Repository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *Service) Upsert(ctx context.Context, p *Profile) error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("%w: missing user", ErrInvalid)
	}

	if p.BusinessName == "" {
		return fmt.Errorf("%w: business name is required", ErrInvalid)
	}

	return s.repo.UpsertProfile(ctx, p)
}

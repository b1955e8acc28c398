package category

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/transaction"
)

// ErrNotFound is returned when a category does not exist or belongs
// to another tenant.
var ErrNotFound = errors.New("category not found")

// ErrInvalid is returned when category input fails validation.
var ErrInvalid = errors.New("invalid category")

// ErrDefaultImmutable is returned when a default category cannot be
// modified or deleted.
var ErrDefaultImmutable = errors.New("default category is immutable")

// Category labels transactions for breakdowns and insights. Owned per
// tenant.
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      transaction.Type
	Name      string
	Color     string
	CreatedAt time.Time
}

// Defaults returns the categories seeded for a tenant on first
// access.
func Defaults(userID uuid.UUID) []Category {
	return []Category{
		{UserID: userID, Type: transaction.TypeIncome, Name: "Ensaios", Color: "#8b5cf6"},
		{UserID: userID, Type: transaction.TypeIncome, Name: "Casamentos", Color: "#ec4899"},
		{UserID: userID, Type: transaction.TypeIncome, Name: "Eventos", Color: "#f59e0b"},
		{UserID: userID, Type: transaction.TypeIncome, Name: "Outros recebimentos", Color: "#10b981"},
		{UserID: userID, Type: transaction.TypeExpense, Name: "Equipamento", Color: "#3b82f6"},
		{UserID: userID, Type: transaction.TypeExpense, Name: "Transporte", Color: "#6366f1"},
		{UserID: userID, Type: transaction.TypeExpense, Name: "Assinaturas", Color: "#14b8a6"},
		{UserID: userID, Type: transaction.TypeExpense, Name: "Outras despesas", Color: "#ef4444"},
	}
}

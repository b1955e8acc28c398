package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/civil"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Origin records where a transaction came from. Informational only.
type Origin string

const (
	OriginManual   Origin = "manual"
	OriginLead     Origin = "lead"
	OriginContract Origin = "contract"
)

// Status represents the lifecycle state of a transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Transaction represents a financial event belonging to one tenant.
// Amount is in cents. Installment rows share a ParentTransactionID
// pointing at the first installment of the group.
type Transaction struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	Type                Type
	Origin              Origin
	Description         string
	Amount              int64 // cents
	Date                civil.Date
	Status              Status
	PaymentMethod       string
	CategoryID          *uuid.UUID
	IsInstallment       bool
	InstallmentNumber   *int
	TotalInstallments   *int
	ParentTransactionID *uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           *time.Time
	DeletedAt           *time.Time
}

// ValidType reports whether t is a known transaction type.
func ValidType(t Type) bool {
	return t == TypeIncome || t == TypeExpense
}

// ValidStatus reports whether s is a known transaction status.
func ValidStatus(s Status) bool {
	return s == StatusPending || s == StatusPaid || s == StatusCancelled
}

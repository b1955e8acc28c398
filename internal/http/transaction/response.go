package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/civil"
	"github.com/danielcasamentos/priceus-sub002/internal/transaction"
)

type transactionResponse struct {
	ID                  uuid.UUID          `json:"id"`
	Type                transaction.Type   `json:"type"`
	Origin              transaction.Origin `json:"origin"`
	Description         string             `json:"description"`
	Amount              int64              `json:"amount"`
	Date                civil.Date         `json:"date"`
	Status              transaction.Status `json:"status"`
	PaymentMethod       string             `json:"payment_method,omitempty"`
	CategoryID          *uuid.UUID         `json:"category_id,omitempty"`
	IsInstallment       bool               `json:"is_installment"`
	InstallmentNumber   *int               `json:"installment_number,omitempty"`
	TotalInstallments   *int               `json:"total_installments,omitempty"`
	ParentTransactionID *uuid.UUID         `json:"parent_transaction_id,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           *time.Time         `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:                  tx.ID,
		Type:                tx.Type,
		Origin:              tx.Origin,
		Description:         tx.Description,
		Amount:              tx.Amount,
		Date:                tx.Date,
		Status:              tx.Status,
		PaymentMethod:       tx.PaymentMethod,
		CategoryID:          tx.CategoryID,
		IsInstallment:       tx.IsInstallment,
		InstallmentNumber:   tx.InstallmentNumber,
		TotalInstallments:   tx.TotalInstallments,
		ParentTransactionID: tx.ParentTransactionID,
		CreatedAt:           tx.CreatedAt,
		UpdatedAt:           tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/civil"
	"github.com/danielcasamentos/priceus-sub002/internal/money"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status Status) error
	UpdateStatusBulk(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, status Status) (int64, error)

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
	DeleteInstallmentGroup(ctx context.Context, userID, parentID uuid.UUID) (int64, error)

	BeginBatch(ctx context.Context) (BatchTx, error)
}

// BatchTx inserts a group of transactions atomically. Either the
// whole installment group lands or none of it does.
type BatchTx interface {
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	UserID        uuid.UUID
	Type          Type
	Origin        Origin
	Description   string
	Amount        int64
	Date          civil.Date
	Status        Status
	PaymentMethod string
	CategoryID    *uuid.UUID
}

type ListFilter struct {
	UserID     uuid.UUID
	Status     *Status
	Type       *Type
	CategoryID *uuid.UUID
	StartDate  *civil.Date
	EndDate    *civil.Date
}

func (p CreateParams) validate() error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("%w: missing user", ErrInvalid)
	}

	if !ValidType(p.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, p.Type)
	}

	if !ValidStatus(p.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, p.Status)
	}

	if p.Amount < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalid)
	}

	if p.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalid)
	}

	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	origin := params.Origin
	if origin == "" {
		origin = OriginManual
	}

	tx := &Transaction{
		UserID:        params.UserID,
		Type:          params.Type,
		Origin:        origin,
		Description:   params.Description,
		Amount:        params.Amount,
		Date:          params.Date,
		Status:        params.Status,
		PaymentMethod: params.PaymentMethod,
		CategoryID:    params.CategoryID,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	if !ValidType(tx.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, tx.Type)
	}

	if !ValidStatus(tx.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, tx.Status)
	}

	if tx.Amount < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalid)
	}

	return s.repo.UpdateTransaction(ctx, tx)
}

func (s *Service) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	return s.repo.UpdateStatus(ctx, userID, id, status)
}

// UpdateStatusBulk marks every listed transaction with the given
// status in one statement. Returns the number of rows touched.
func (s *Service) UpdateStatusBulk(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, status Status) (int64, error) {
	if !ValidStatus(status) {
		return 0, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	if len(ids) == 0 {
		return 0, nil
	}

	return s.repo.UpdateStatusBulk(ctx, userID, ids, status)
}

// Delete removes a single transaction. When cascade is set and the
// transaction is part of an installment group, every sibling sharing
// its parent is removed as well.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID, cascade bool) error {
	if !cascade {
		return s.repo.DeleteTransaction(ctx, userID, id)
	}

	tx, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}

	if !tx.IsInstallment || tx.ParentTransactionID == nil {
		return s.repo.DeleteTransaction(ctx, userID, id)
	}

	if _, err := s.repo.DeleteInstallmentGroup(ctx, userID, *tx.ParentTransactionID); err != nil {
		return fmt.Errorf("deleting installment group: %w", err)
	}

	return nil
}

// ExpandInstallments splits one financial event of params.Amount into
// count sibling transactions, dated on successive months from the
// base date (day-of-month clamped for short months). Amounts come
// from money.Split so they always sum back to the original. The whole
// group is inserted in a single database transaction.
func (s *Service) ExpandInstallments(ctx context.Context, params CreateParams, count int) ([]*Transaction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	if count < 2 {
		return nil, fmt.Errorf("%w: installment count must be at least 2", ErrInvalid)
	}

	origin := params.Origin
	if origin == "" {
		origin = OriginManual
	}

	parts := money.Split(params.Amount, count)
	parentID := uuid.New()

	txs := make([]*Transaction, count)

	for i := range txs {
		number := i + 1
		total := count

		id := parentID
		if i > 0 {
			id = uuid.New()
		}

		txs[i] = &Transaction{
			ID:                  id,
			UserID:              params.UserID,
			Type:                params.Type,
			Origin:              origin,
			Description:         fmt.Sprintf("%s (%d/%d)", params.Description, number, count),
			Amount:              parts[i],
			Date:                params.Date.AddMonths(i),
			Status:              params.Status,
			PaymentMethod:       params.PaymentMethod,
			CategoryID:          params.CategoryID,
			IsInstallment:       true,
			InstallmentNumber:   &number,
			TotalInstallments:   &total,
			ParentTransactionID: &parentID,
		}
	}

	btx, err := s.repo.BeginBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer btx.Rollback()

	if err := btx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create installments: %w", err)
	}

	if err := btx.Commit(); err != nil {
		return nil, fmt.Errorf("commit installments: %w", err)
	}

	return txs, nil
}

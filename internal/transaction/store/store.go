package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/civil"
	"github.com/danielcasamentos/priceus-sub002/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectTransactionColumns = `
	t.id, t.user_id, t.type, t.origin, t.description, t.amount, t.date, t.status,
	t.payment_method, t.category_id, t.is_installment, t.installment_number,
	t.total_installments, t.parent_transaction_id, t.created_at, t.updated_at, t.deleted_at
`

// scanTransaction reads a transaction row from the scanner.
// Expected column order matches selectTransactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr, originStr, statusStr string

	var paymentMethod sql.NullString

	var date time.Time

	if err := s.Scan(
		&tx.ID, &tx.UserID, &typeStr, &originStr, &tx.Description, &tx.Amount, &date, &statusStr,
		&paymentMethod, &tx.CategoryID, &tx.IsInstallment, &tx.InstallmentNumber,
		&tx.TotalInstallments, &tx.ParentTransactionID, &tx.CreatedAt, &tx.UpdatedAt, &tx.DeletedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.Origin = transaction.Origin(originStr)
	tx.Status = transaction.Status(statusStr)
	tx.PaymentMethod = paymentMethod.String
	tx.Date = civil.DateOf(date)

	return &tx, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, origin, description, amount, date, status,
			payment_method, category_id, is_installment, installment_number,
			total_installments, parent_transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		tx.UserID,
		tx.Type,
		tx.Origin,
		tx.Description,
		tx.Amount,
		tx.Date.Time(),
		tx.Status,
		nullString(tx.PaymentMethod),
		tx.CategoryID,
		tx.IsInstallment,
		tx.InstallmentNumber,
		tx.TotalInstallments,
		tx.ParentTransactionID,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1 AND t.user_id = $2 AND t.deleted_at IS NULL`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.user_id = $1 AND t.deleted_at IS NULL`

	args := []any{filter.UserID}

	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND t.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND t.category_id = $%d", argIdx)

		args = append(args, *filter.CategoryID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, filter.StartDate.Time())
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, filter.EndDate.Time())
		argIdx++
	}

	query += " ORDER BY t.date ASC, t.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $1, description = $2, amount = $3, date = $4, status = $5,
			payment_method = $6, category_id = $7, updated_at = NOW()
		WHERE id = $8 AND user_id = $9 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.Type,
		tx.Description,
		tx.Amount,
		tx.Date.Time(),
		tx.Status,
		nullString(tx.PaymentMethod),
		tx.CategoryID,
		tx.ID,
		tx.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	return checkFound(res)
}

func (s *Store) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status transaction.Status) error {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, status, id, userID)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return checkFound(res)
}

func (s *Store) UpdateStatusBulk(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, status transaction.Status) (int64, error) {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = NOW()
		WHERE user_id = $2 AND id = ANY($3) AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, status, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk updating status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting updated rows: %w", err)
	}

	return n, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return checkFound(res)
}

func (s *Store) DeleteInstallmentGroup(ctx context.Context, userID, parentID uuid.UUID) (int64, error) {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE user_id = $1 AND parent_transaction_id = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, userID, parentID)
	if err != nil {
		return 0, fmt.Errorf("deleting installment group: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted rows: %w", err)
	}

	return n, nil
}

type batchTx struct {
	tx *sql.Tx
}

func (s *Store) BeginBatch(ctx context.Context) (transaction.BatchTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning batch tx: %w", err)
	}

	return &batchTx{tx: dbTx}, nil
}

func (btx *batchTx) Commit() error   { return btx.tx.Commit() }
func (btx *batchTx) Rollback() error { return btx.tx.Rollback() }

// CreateTransactions inserts pre-identified rows. The caller assigns
// IDs up front so installment siblings can reference their parent
// before anything is written.
func (btx *batchTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, origin, description, amount, date, status,
			payment_method, category_id, is_installment, installment_number,
			total_installments, parent_transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	for _, tx := range txs {
		err := btx.tx.QueryRowContext(ctx, query,
			tx.ID,
			tx.UserID,
			tx.Type,
			tx.Origin,
			tx.Description,
			tx.Amount,
			tx.Date.Time(),
			tx.Status,
			nullString(tx.PaymentMethod),
			tx.CategoryID,
			tx.IsInstallment,
			tx.InstallmentNumber,
			tx.TotalInstallments,
			tx.ParentTransactionID,
		).Scan(&tx.CreatedAt, &tx.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}
	}

	return nil
}

func checkFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting affected rows: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

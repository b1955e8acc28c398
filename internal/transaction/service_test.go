package transaction_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/danielcasamentos/priceus-sub002/internal/civil"
	"github.com/danielcasamentos/priceus-sub002/internal/transaction"
)

func TestService_Create(t *testing.T) {
	userID := uuid.New()
	date := civil.Date{Year: 2024, Month: time.January, Day: 15}

	type testCase struct {
		name      string
		params    transaction.CreateParams
		setupMock func(m *transaction.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: transaction.CreateParams{
				UserID:      userID,
				Type:        transaction.TypeIncome,
				Description: "Ensaio de casamento",
				Amount:      150000,
				Date:        date,
				Status:      transaction.StatusPaid,
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "DefaultsToManualOrigin",
			params: transaction.CreateParams{
				UserID: userID,
				Type:   transaction.TypeExpense,
				Amount: 5000,
				Date:   date,
				Status: transaction.StatusPending,
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.Equal(t, transaction.OriginManual, tx.Origin)
						tx.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name: "NegativeAmount",
			params: transaction.CreateParams{
				UserID: userID,
				Type:   transaction.TypeIncome,
				Amount: -1,
				Date:   date,
				Status: transaction.StatusPaid,
			},
			wantErr: transaction.ErrInvalid,
		},
		{
			name: "UnknownStatus",
			params: transaction.CreateParams{
				UserID: userID,
				Type:   transaction.TypeIncome,
				Amount: 100,
				Date:   date,
				Status: transaction.Status("archived"),
			},
			wantErr: transaction.ErrInvalid,
		},
		{
			name: "MissingDate",
			params: transaction.CreateParams{
				UserID: userID,
				Type:   transaction.TypeIncome,
				Amount: 100,
				Status: transaction.StatusPaid,
			},
			wantErr: transaction.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
		})
	}
}

func TestService_ExpandInstallments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	btx := transaction.NewMockBatchTx(ctrl)
	svc := transaction.NewService(repo)

	params := transaction.CreateParams{
		UserID:      uuid.New(),
		Type:        transaction.TypeIncome,
		Description: "Pacote casamento",
		Amount:      100000,
		Date:        civil.Date{Year: 2024, Month: time.January, Day: 31},
		Status:      transaction.StatusPending,
	}

	var created []*transaction.Transaction

	repo.EXPECT().BeginBatch(gomock.Any()).Return(btx, nil)
	btx.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
			created = txs
			return nil
		})
	btx.EXPECT().Commit().Return(nil)
	btx.EXPECT().Rollback().Return(nil)

	txs, err := svc.ExpandInstallments(context.Background(), params, 3)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, created, txs)

	// Amounts sum back to the original; last absorbs the remainder.
	var sum int64
	for _, tx := range txs {
		sum += tx.Amount
	}

	assert.Equal(t, params.Amount, sum)
	assert.Equal(t, int64(33333), txs[0].Amount)
	assert.Equal(t, int64(33334), txs[2].Amount)

	// Successive months from the base date, day clamped for February.
	assert.Equal(t, civil.Date{Year: 2024, Month: time.January, Day: 31}, txs[0].Date)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 29}, txs[1].Date)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.March, Day: 31}, txs[2].Date)

	// Every sibling points at the first installment.
	parentID := txs[0].ID
	for i, tx := range txs {
		require.NotNil(t, tx.ParentTransactionID)
		assert.Equal(t, parentID, *tx.ParentTransactionID)
		assert.True(t, tx.IsInstallment)
		require.NotNil(t, tx.InstallmentNumber)
		require.NotNil(t, tx.TotalInstallments)
		assert.Equal(t, i+1, *tx.InstallmentNumber)
		assert.Equal(t, 3, *tx.TotalInstallments)
		assert.Equal(t, fmt.Sprintf("Pacote casamento (%d/3)", i+1), tx.Description)
	}
}

func TestService_ExpandInstallments_CountTooSmall(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	_, err := svc.ExpandInstallments(context.Background(), transaction.CreateParams{
		UserID: uuid.New(),
		Type:   transaction.TypeIncome,
		Amount: 1000,
		Date:   civil.Date{Year: 2024, Month: time.May, Day: 1},
		Status: transaction.StatusPending,
	}, 1)

	assert.ErrorIs(t, err, transaction.ErrInvalid)
}

func TestService_ExpandInstallments_CreateFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	btx := transaction.NewMockBatchTx(ctrl)
	svc := transaction.NewService(repo)

	repo.EXPECT().BeginBatch(gomock.Any()).Return(btx, nil)
	btx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
	btx.EXPECT().Rollback().Return(nil)

	_, err := svc.ExpandInstallments(context.Background(), transaction.CreateParams{
		UserID: uuid.New(),
		Type:   transaction.TypeIncome,
		Amount: 1000,
		Date:   civil.Date{Year: 2024, Month: time.May, Day: 1},
		Status: transaction.StatusPending,
	}, 2)

	assert.Error(t, err)
}

func TestService_Delete_Cascade(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	parentID := uuid.New()

	type testCase struct {
		name      string
		cascade   bool
		setupMock func(m *transaction.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name:    "NoCascade",
			cascade: false,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().DeleteTransaction(gomock.Any(), userID, id).Return(nil)
			},
		},
		{
			name:    "CascadeOnInstallment",
			cascade: true,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), userID, id).Return(&transaction.Transaction{
					ID:                  id,
					UserID:              userID,
					IsInstallment:       true,
					ParentTransactionID: &parentID,
				}, nil)
				m.EXPECT().DeleteInstallmentGroup(gomock.Any(), userID, parentID).Return(int64(4), nil)
			},
		},
		{
			name:    "CascadeOnStandaloneFallsBackToSingleDelete",
			cascade: true,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), userID, id).Return(&transaction.Transaction{
					ID:     id,
					UserID: userID,
				}, nil)
				m.EXPECT().DeleteTransaction(gomock.Any(), userID, id).Return(nil)
			},
		},
		{
			name:    "CascadeNotFound",
			cascade: true,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), userID, id).Return(nil, transaction.ErrNotFound)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := transaction.NewService(repo)
			err := svc.Delete(context.Background(), userID, id, tt.cascade)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_UpdateStatusBulk(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	userID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	repo.EXPECT().
		UpdateStatusBulk(gomock.Any(), userID, ids, transaction.StatusPaid).
		Return(int64(2), nil)

	n, err := svc.UpdateStatusBulk(context.Background(), userID, ids, transaction.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Empty id list never hits the store.
	n, err = svc.UpdateStatusBulk(context.Background(), userID, nil, transaction.StatusPaid)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.UpdateStatusBulk(context.Background(), userID, ids, transaction.Status("bogus"))
	assert.ErrorIs(t, err, transaction.ErrInvalid)
}

package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	return fn(m)
}

func (m *mockRepository) GetConsumedReservation(ctx context.Context, storeID, orderID, productID uuid.UUID, variantID *uuid.UUID) (*Reservation, error) {
	args := m.Called(ctx, storeID, orderID, productID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reservation), args.Error(1)
}

func (m *mockRepository) IncrementStock(ctx context.Context, storeID, supplierID, variantID uuid.UUID, qty int) error {
	args := m.Called(ctx, storeID, supplierID, variantID, qty)
	return args.Error(0)
}

func (m *mockRepository) ClaimRefundRestored(ctx context.Context, refundID uuid.UUID) (bool, error) {
	args := m.Called(ctx, refundID)
	return args.Bool(0), args.Error(1)
}

func TestRestore_CreditsEveryLine(t *testing.T) {
	storeID := uuid.New()
	orderID := uuid.New()
	refundID := uuid.New()
	supplierID := uuid.New()
	variantA := uuid.New()
	variantB := uuid.New()
	productA := uuid.New()
	productB := uuid.New()

	repo := new(mockRepository)
	repo.On("ClaimRefundRestored", mock.Anything, refundID).Return(true, nil)
	repo.On("GetConsumedReservation", mock.Anything, storeID, orderID, productA, (*uuid.UUID)(nil)).
		Return(&Reservation{SupplierID: supplierID, VariantID: variantA, Quantity: 2, Status: ReservationStatusConsumed}, nil)
	repo.On("GetConsumedReservation", mock.Anything, storeID, orderID, productB, (*uuid.UUID)(nil)).
		Return(&Reservation{SupplierID: supplierID, VariantID: variantB, Quantity: 1, Status: ReservationStatusConsumed}, nil)
	repo.On("IncrementStock", mock.Anything, storeID, supplierID, variantA, 2).Return(nil)
	repo.On("IncrementStock", mock.Anything, storeID, supplierID, variantB, 1).Return(nil)

	r := NewRestorer(repo, zap.NewNop())
	err := r.Restore(context.Background(), storeID, orderID, refundID, []RestoreLine{
		{ProductID: productA, Quantity: 2},
		{ProductID: productB, Quantity: 1},
	})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRestore_AlreadyRestoredIsNoOp(t *testing.T) {
	refundID := uuid.New()

	repo := new(mockRepository)
	repo.On("ClaimRefundRestored", mock.Anything, refundID).Return(false, nil)

	r := NewRestorer(repo, zap.NewNop())
	err := r.Restore(context.Background(), uuid.New(), uuid.New(), refundID, []RestoreLine{
		{ProductID: uuid.New(), Quantity: 1},
	})
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRestore_MissingReservationFailsWholeRun(t *testing.T) {
	storeID := uuid.New()
	orderID := uuid.New()
	refundID := uuid.New()
	productID := uuid.New()

	repo := new(mockRepository)
	repo.On("ClaimRefundRestored", mock.Anything, refundID).Return(true, nil)
	repo.On("GetConsumedReservation", mock.Anything, storeID, orderID, productID, (*uuid.UUID)(nil)).
		Return(nil, ErrReservationNotFound)

	r := NewRestorer(repo, zap.NewNop())
	err := r.Restore(context.Background(), storeID, orderID, refundID, []RestoreLine{
		{ProductID: productID, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrReservationNotFound)
	repo.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

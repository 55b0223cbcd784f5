package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/storefleet/server/internal/utils/requestctx"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) ListSplitEntries(ctx context.Context, storeID, orderID uuid.UUID) ([]*Entry, error) {
	args := m.Called(ctx, storeID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Entry), args.Error(1)
}

func (m *mockRepository) ReversalExists(ctx context.Context, refundID uuid.UUID) (bool, error) {
	args := m.Called(ctx, refundID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepository) AppendEntries(ctx context.Context, entries []*Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func TestReverseSplit_NegatesEveryEntry(t *testing.T) {
	storeID := uuid.New()
	orderID := uuid.New()
	refundID := uuid.New()
	supplierID := uuid.New()
	resellerID := uuid.New()
	adminID := uuid.New()

	originals := []*Entry{
		{ID: uuid.New(), StoreID: storeID, OrderID: orderID, Party: PartySupplier, PartyID: supplierID, Amount: 7000, Currency: "usd"},
		{ID: uuid.New(), StoreID: storeID, OrderID: orderID, Party: PartyReseller, PartyID: resellerID, Amount: 2000, Currency: "usd"},
		{ID: uuid.New(), StoreID: storeID, OrderID: orderID, Party: PartyAdmin, PartyID: adminID, Amount: 1000, Currency: "usd"},
	}

	repo := new(mockRepository)
	repo.On("ReversalExists", mock.Anything, refundID).Return(false, nil)
	repo.On("ListSplitEntries", mock.Anything, storeID, orderID).Return(originals, nil)

	var appended []*Entry
	repo.On("AppendEntries", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		appended = args.Get(1).([]*Entry)
	}).Return(nil)

	svc := NewService(repo, zap.NewNop())
	actor := requestctx.Actor{ID: uuid.New(), StoreID: storeID, Role: requestctx.RoleAdmin}

	err := svc.ReverseSplit(context.Background(), storeID, orderID, refundID, "damaged item", actor)
	assert.NoError(t, err)
	assert.Len(t, appended, 3)

	var sum int64
	for i, entry := range appended {
		assert.Equal(t, originals[i].Party, entry.Party)
		assert.Equal(t, originals[i].PartyID, entry.PartyID)
		assert.Equal(t, -originals[i].Amount, entry.Amount)
		assert.Equal(t, &refundID, entry.RefundID)
		assert.Contains(t, entry.Reason, "damaged item")
		assert.Contains(t, entry.Reason, refundID.String())
		assert.Contains(t, entry.Reason, string(requestctx.RoleAdmin))
		sum += entry.Amount
	}
	assert.Equal(t, int64(-10000), sum)
	repo.AssertExpectations(t)
}

func TestReverseSplit_NoSplitEntries(t *testing.T) {
	repo := new(mockRepository)
	repo.On("ReversalExists", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("ListSplitEntries", mock.Anything, mock.Anything, mock.Anything).Return([]*Entry{}, nil)

	svc := NewService(repo, zap.NewNop())
	err := svc.ReverseSplit(context.Background(), uuid.New(), uuid.New(), uuid.New(), "reason", requestctx.Actor{Role: requestctx.RoleSystem})
	assert.ErrorIs(t, err, ErrNoSplitEntries)
	repo.AssertNotCalled(t, "AppendEntries", mock.Anything, mock.Anything)
}

func TestReverseSplit_AlreadyReversedIsNoOp(t *testing.T) {
	refundID := uuid.New()

	repo := new(mockRepository)
	repo.On("ReversalExists", mock.Anything, refundID).Return(true, nil)

	svc := NewService(repo, zap.NewNop())
	err := svc.ReverseSplit(context.Background(), uuid.New(), uuid.New(), refundID, "reason", requestctx.Actor{Role: requestctx.RoleAdmin})
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "ListSplitEntries", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "AppendEntries", mock.Anything, mock.Anything)
}

package refund

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/storefleet/server/internal/utils/requestctx"
)

func workerFixture() (*Worker, *mockRefundRepo, *mockRestorer, *mockReverser) {
	repo := new(mockRefundRepo)
	restorer := new(mockRestorer)
	reverser := new(mockReverser)
	w := NewWorker(repo, restorer, reverser, nil, zap.NewNop(), time.Minute, 50, 3)
	return w, repo, restorer, reverser
}

func storedRefund() *Refund {
	refundID := uuid.New()
	return &Refund{
		ID:              refundID,
		StoreID:         uuid.New(),
		OrderID:         uuid.New(),
		Type:            TypeFull,
		Reason:          "damaged",
		Amount:          10000,
		RequestedBy:     uuid.New(),
		RequestedByRole: requestctx.RoleAdmin,
		Items: []Item{
			{RefundID: refundID, ProductID: uuid.New(), Quantity: 1, UnitPrice: 10000, Amount: 10000},
		},
	}
}

func TestWorker_RetriesInventoryRestore(t *testing.T) {
	w, repo, restorer, _ := workerFixture()
	r := storedRefund()
	task := &CompensationTask{
		ID:       uuid.New(),
		StoreID:  r.StoreID,
		RefundID: r.ID,
		OrderID:  r.OrderID,
		Kind:     CompensationInventoryRestore,
		Status:   TaskStatusPending,
		Attempts: 1,
	}

	repo.On("GetByID", mock.Anything, r.StoreID, r.ID).Return(r, nil)
	restorer.On("Restore", mock.Anything, r.StoreID, r.OrderID, r.ID, mock.Anything).Return(nil)
	repo.On("MarkTaskSucceeded", mock.Anything, task.ID).Return(nil)

	w.runTask(context.Background(), task)

	repo.AssertExpectations(t)
	restorer.AssertExpectations(t)
}

func TestWorker_ReversalCarriesActorAndReason(t *testing.T) {
	w, repo, _, reverser := workerFixture()
	r := storedRefund()
	task := &CompensationTask{
		ID:       uuid.New(),
		StoreID:  r.StoreID,
		RefundID: r.ID,
		Kind:     CompensationSplitReversal,
		Attempts: 1,
	}

	expectedActor := requestctx.Actor{ID: r.RequestedBy, StoreID: r.StoreID, Role: r.RequestedByRole}
	repo.On("GetByID", mock.Anything, r.StoreID, r.ID).Return(r, nil)
	reverser.On("ReverseSplit", mock.Anything, r.StoreID, r.OrderID, r.ID, "damaged", expectedActor).Return(nil)
	repo.On("MarkTaskSucceeded", mock.Anything, task.ID).Return(nil)

	w.runTask(context.Background(), task)

	reverser.AssertExpectations(t)
}

func TestWorker_FailureReschedulesUntilExhausted(t *testing.T) {
	w, repo, restorer, _ := workerFixture()
	r := storedRefund()
	task := &CompensationTask{
		ID:       uuid.New(),
		StoreID:  r.StoreID,
		RefundID: r.ID,
		OrderID:  r.OrderID,
		Kind:     CompensationInventoryRestore,
		Attempts: 1,
	}

	repo.On("GetByID", mock.Anything, r.StoreID, r.ID).Return(r, nil)
	restorer.On("Restore", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("stock row missing"))
	repo.On("MarkTaskRetry", mock.Anything, task.ID, "stock row missing", mock.Anything, false).Return(nil)

	w.runTask(context.Background(), task)
	repo.AssertExpectations(t)

	// Third attempt hits maxAttempts and goes terminal.
	task.Attempts = 3
	repo.On("MarkTaskRetry", mock.Anything, task.ID, "stock row missing", mock.Anything, true).Return(nil)
	w.runTask(context.Background(), task)
	repo.AssertExpectations(t)
}

func TestBackoff_DoublesAndCaps(t *testing.T) {
	base := time.Minute
	assert.Equal(t, time.Minute, backoff(base, 1))
	assert.Equal(t, 2*time.Minute, backoff(base, 2))
	assert.Equal(t, 4*time.Minute, backoff(base, 3))
	assert.Equal(t, time.Hour, backoff(base, 20))
}

package refund

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/storefleet/server/internal/module/payment/provider"
	"github.com/storefleet/server/internal/utils/requestctx"
)

func setupRouter(f *serviceFixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(requestctx.WithActor(c.Request.Context(), f.actor))
		c.Next()
	})
	NewHandler(f.svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestHandler_CreateRefundInvalidOrderID(t *testing.T) {
	f := newServiceFixture(t)
	r := setupRouter(f)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/not-a-uuid/refunds", strings.NewReader(`{"type":"full"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateRefundValidationErrorShape(t *testing.T) {
	f := newServiceFixture(t)
	f.expectHappyLookups()
	r := setupRouter(f)

	w := httptest.NewRecorder()
	body := `{"type":"partial","amount":25.00}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+f.order.ID.String()+"/refunds", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "items")
}

func TestHandler_CreateRefundCreated(t *testing.T) {
	f := newServiceFixture(t)
	f.expectHappyLookups()
	f.prov.On("CreateRefund", mock.Anything, mock.Anything).Return(&provider.RefundResult{
		ProviderRefundID: "re_abc",
		Amount:           10000,
		Status:           provider.RefundStatusSucceeded,
	}, nil)
	f.repo.On("CreateWithTasks", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.restorer.On("Restore", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.reverser.On("ReverseSplit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.repo.On("MarkTaskSucceeded", mock.Anything, mock.Anything).Return(nil)
	f.audit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	r := setupRouter(f)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+f.order.ID.String()+"/refunds", strings.NewReader(`{"type":"full","reason":"damaged"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp RefundResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "100.00", resp.Amount)
	assert.Equal(t, "re_abc", resp.ProviderRefundID)
	assert.True(t, resp.InventoryRestored)
	assert.True(t, strings.HasPrefix(resp.RefundNo, "RF-"))
}

func TestHandler_ListRefunds(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.On("ListByOrder", mock.Anything, f.order.StoreID, f.order.ID).Return([]*Refund{}, nil)

	r := setupRouter(f)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+f.order.ID.String()+"/refunds", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "refunds")
}

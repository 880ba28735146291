package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"irokart-be/internal/category"
	"irokart-be/internal/metrics"
	"irokart-be/internal/order"
	"irokart-be/internal/realtime"
	"irokart-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	users      *MockUserService
	categories *MockCategoryService
	products   *MockProductService
	cart       *MockCartService
	orders     *MockOrderService
	dashboard  *MockDashboardService
	payments   *MockPaymentService
	bus        *realtime.MemoryBus
	metrics    *metrics.Registry
	handler    *Handler
	mux        *http.ServeMux
}

func newFixture(t *testing.T, enforceAdmin bool) *fixture {
	t.Helper()

	f := &fixture{
		users:      new(MockUserService),
		categories: new(MockCategoryService),
		products:   new(MockProductService),
		cart:       new(MockCartService),
		orders:     new(MockOrderService),
		dashboard:  new(MockDashboardService),
		payments:   new(MockPaymentService),
		bus:        realtime.NewMemoryBus(),
		metrics:    metrics.NewRegistry(),
	}
	t.Cleanup(func() { _ = f.bus.Close() })

	f.handler = NewHandler(Services{
		Users:      f.users,
		Categories: f.categories,
		Products:   f.products,
		Cart:       f.cart,
		Orders:     f.orders,
		Dashboard:  f.dashboard,
		Payments:   f.payments,
		Webhook: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, `{"status":"ok"}`)
		}),
		Bus:     f.bus,
		Metrics: f.metrics,
	}, enforceAdmin)
	f.mux = f.handler.Routes()
	return f
}

type staticAccount struct {
	role, status string
}

func (a staticAccount) Account(ctx context.Context, id string) (string, string, error) {
	return a.role, a.status, nil
}

type requestOption func(*http.Request) *http.Request

func signedInAs(id, role string) requestOption {
	return func(r *http.Request) *http.Request {
		return r.WithContext(utils.SetUserContext(r.Context(), id, id+"@irokart.test", role))
	}
}

func (f *fixture) do(method, target, body string, opts ...requestOption) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		req = opt(req)
	}

	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"IroKart backend is running"}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	f := newFixture(t, false)
	f.metrics.Counter(metrics.OrdersPlaced).Add(3)

	w := f.do(http.MethodGet, "/api/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, uint64(3), snap.Counters[metrics.OrdersPlaced])
}

func TestWebhookRoute(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodPost, "/api/payments/webhook", `{}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodDelete, "/api/orders/place", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAdminEnforcement(t *testing.T) {
	t.Run("Open when not enforced", func(t *testing.T) {
		f := newFixture(t, false)
		f.orders.On("List", mock.Anything, mock.Anything).
			Return(&order.ListResult{Orders: []*order.Order{}}, nil).Once()

		w := f.do(http.MethodGet, "/api/orders", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Anonymous is unauthorized", func(t *testing.T) {
		f := newFixture(t, true)

		w := f.do(http.MethodGet, "/api/orders", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		f.orders.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("Buyer is forbidden", func(t *testing.T) {
		f := newFixture(t, true)

		w := f.do(http.MethodPatch, "/api/orders/o1/status", `{"order_status":"shipped"}`, signedInAs("u1", "individual"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "insufficient permissions", decodeBody(t, w)["error"])
	})

	t.Run("Suspended admin is forbidden", func(t *testing.T) {
		f := newFixture(t, true)
		f.handler.svc.Accounts = staticAccount{role: "admin", status: "suspended"}
		f.mux = f.handler.Routes()

		w := f.do(http.MethodGet, "/api/orders", "", signedInAs("a1", "admin"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "account is not active", decodeBody(t, w)["error"])
		f.orders.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("Demoted admin is forbidden", func(t *testing.T) {
		f := newFixture(t, true)
		f.handler.svc.Accounts = staticAccount{role: "individual", status: "active"}
		f.mux = f.handler.Routes()

		w := f.do(http.MethodGet, "/api/orders", "", signedInAs("a1", "admin"))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin passes", func(t *testing.T) {
		f := newFixture(t, true)
		f.orders.On("List", mock.Anything, mock.Anything).
			Return(&order.ListResult{Orders: []*order.Order{}}, nil).Once()

		w := f.do(http.MethodGet, "/api/orders", "", signedInAs("a1", "admin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Storefront routes stay public", func(t *testing.T) {
		f := newFixture(t, true)
		f.categories.On("List", mock.Anything).Return([]*category.Category{}, nil).Once()

		w := f.do(http.MethodGet, "/api/categories", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"categories":[]}`, w.Body.String())
	})
}

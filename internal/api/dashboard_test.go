package api

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"irokart-be/internal/dashboard"
	"irokart-be/internal/realtime"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func TestDashboardStats(t *testing.T) {
	t.Run("Partial summary", func(t *testing.T) {
		f := newFixture(t, false)
		revenue := decimal.RequireFromString("2548.00")
		f.dashboard.On("Stats", mock.Anything).Return(&dashboard.Stats{
			TotalOrders:   int64p(3),
			TotalRevenue:  &revenue,
			FailedMetrics: []string{dashboard.MetricLowStockProducts},
		}, nil).Once()

		w := f.do(http.MethodGet, "/api/dashboard/stats", "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(3), body["total_orders"])
		assert.Equal(t, float64(2548), body["total_revenue"])
		assert.Nil(t, body["low_stock_products"])
		assert.Equal(t, []any{"low_stock_products"}, body["failed_metrics"])
	})

	t.Run("Unavailable", func(t *testing.T) {
		f := newFixture(t, false)
		f.dashboard.On("Stats", mock.Anything).Return(nil, dashboard.ErrStatsUnavailable).Once()

		w := f.do(http.MethodGet, "/api/dashboard/stats", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", decodeBody(t, w)["error"])
	})
}

func TestRecentOrders(t *testing.T) {
	f := newFixture(t, false)
	name := "Asha"
	f.dashboard.On("RecentOrders", mock.Anything).Return([]*dashboard.RecentOrder{
		{ID: "o1", OrderNumber: "IRO-1", OrderStatus: "pending", PaymentStatus: "captured",
			TotalAmount: decimal.NewFromInt(1299), Profile: &dashboard.Buyer{FullName: &name}},
	}, nil).Once()

	w := f.do(http.MethodGet, "/api/dashboard/recent-orders", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(w.Body.String()), "["))
	assert.Contains(t, w.Body.String(), `"profiles":{"full_name":"Asha","email":null}`)
}

type sseEvent struct {
	id    string
	event string
	data  string
}

func readEvent(t *testing.T, sc *bufio.Scanner) sseEvent {
	t.Helper()
	var ev sseEvent
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if ev.event != "" {
				return ev
			}
		case strings.HasPrefix(line, "id: "):
			ev.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			ev.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
	t.Fatalf("stream ended: %v", sc.Err())
	return ev
}

func TestStreamDashboardStats(t *testing.T) {
	f := newFixture(t, false)
	f.handler.streamDebounce = 5 * time.Millisecond
	f.handler.streamHeartbeat = time.Hour

	f.dashboard.On("Stats", mock.Anything).Return(&dashboard.Stats{TotalOrders: int64p(1)}, nil).Once()
	f.dashboard.On("Stats", mock.Anything).Return(&dashboard.Stats{TotalOrders: int64p(2)}, nil).Once()
	f.dashboard.On("Stats", mock.Anything).Return(nil, errors.New("pq: timeout")).Once()

	srv := httptest.NewServer(f.mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/dashboard/stats/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	sc := bufio.NewScanner(resp.Body)

	first := readEvent(t, sc)
	assert.Equal(t, "stats", first.event)
	assert.Equal(t, "1", first.id)
	assert.Contains(t, first.data, `"total_orders":1`)

	require.Eventually(t, func() bool { return f.bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, f.bus.Publish(ctx, realtime.NewEvent(realtime.TableOrders, realtime.OpInsert, "o2")))

	second := readEvent(t, sc)
	assert.Equal(t, "stats", second.event)
	assert.Equal(t, "2", second.id)
	assert.Contains(t, second.data, `"total_orders":2`)

	require.NoError(t, f.bus.Publish(ctx, realtime.NewEvent(realtime.TableInventory, realtime.OpUpdate, "prod-cpu")))

	third := readEvent(t, sc)
	assert.Equal(t, "error", third.event)
	assert.JSONEq(t, `{"error":"Internal server error"}`, third.data)
}

func TestStreamDashboardStats_NoBus(t *testing.T) {
	f := newFixture(t, false)
	f.handler.svc.Bus = nil

	w := f.do(http.MethodGet, "/api/dashboard/stats/stream", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWriteStatsEvent(t *testing.T) {
	var buf bytes.Buffer

	err := writeStatsEvent(&buf, realtime.Result[*dashboard.Stats]{
		Generation: 7,
		Err:        dashboard.ErrStatsUnavailable,
	})

	require.NoError(t, err)
	assert.Equal(t, "id: 7\nevent: error\ndata: {\"error\":\"Internal server error\"}\n\n", buf.String())
}

package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"irokart-be/internal/apperr"
	"irokart-be/internal/dashboard"
	"irokart-be/internal/logger"
	"irokart-be/internal/realtime"
	"irokart-be/internal/transport"

	"go.uber.org/zap"
)

// statsTables are the tables whose changes move a dashboard figure.
var statsTables = []string{
	realtime.TableOrders,
	realtime.TablePayments,
	realtime.TableInventory,
	realtime.TableProducts,
	realtime.TableProfiles,
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard.Stats(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Dashboard.RecentOrders(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, orders)
}

// StreamDashboardStats pushes a fresh stats summary as server-sent events
// whenever a watched table changes. Each event id is the refresh generation.
func (h *Handler) StreamDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "api"),
		zap.String("method", "StreamDashboardStats"),
	)

	if h.svc.Bus == nil {
		transport.WriteError(w, r, apperr.New(apperr.Internal, "change notifications are not configured"))
		return
	}

	refresher := realtime.NewRefresher[*dashboard.Stats](h.svc.Bus, h.svc.Dashboard.Stats, h.streamDebounce, statsTables...)
	results, err := refresher.Run(ctx)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	// the server write timeout would otherwise cut the stream
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.Warn("stream not flushable", zap.Error(err))
		return
	}

	heartbeat := time.NewTicker(h.streamHeartbeat)
	defer heartbeat.Stop()

	log.Info("stats stream opened")
	defer log.Info("stats stream closed")

	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-results:
			if !ok {
				return
			}
			if err := writeStatsEvent(w, res); err != nil {
				log.Warn("stats event not written", zap.Error(err))
				return
			}
		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeStatsEvent(w io.Writer, res realtime.Result[*dashboard.Stats]) error {
	event, payload := "stats", any(res.Value)
	if res.Err != nil {
		msg, ok := apperr.Message(res.Err)
		if !ok {
			msg = "Internal server error"
		}
		event, payload = "error", transport.ErrorResponse{Error: msg}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", res.Generation, event, data)
	return err
}

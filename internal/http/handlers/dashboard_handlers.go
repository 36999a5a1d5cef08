package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rogerio-castellano/inventory-master/internal/dashboard"
	mw "github.com/rogerio-castellano/inventory-master/internal/http/middleware"
	"github.com/rogerio-castellano/inventory-master/internal/sse"
	"github.com/rs/zerolog/log"
)

var streamPingInterval = 30 * time.Second

func startTiming(r *http.Request, name string) func() {
	timing := servertiming.FromContext(r.Context())
	if timing == nil {
		return func() {}
	}
	m := timing.NewMetric(name).Start()
	return func() { m.Stop() }
}

func snapshotETag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
}

// GetDashboardHandler godoc
// @Summary Current dashboard snapshot
// @Description Stats, low stock items, top products by value, category distribution, stock levels and movement trend. Supports If-None-Match.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dashboard.Snapshot
// @Success 304 "Not modified"
// @Failure 500 {string} string "Internal error"
// @Router /dashboard [get]
func GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	stop := startTiming(r, "snapshot")
	snap, err := dashboardService.Current(r.Context())
	stop()
	if err != nil {
		log.Error().Err(err).Msg("could not load dashboard")
		http.Error(w, "could not load dashboard", http.StatusInternalServerError)
		return
	}

	stop = startTiming(r, "encode")
	body, err := json.Marshal(snap)
	stop()
	if err != nil {
		http.Error(w, "could not encode dashboard", http.StatusInternalServerError)
		return
	}

	etag := snapshotETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write dashboard response")
	}
}

// RefreshDashboardHandler godoc
// @Summary Recompute the dashboard now
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dashboard.Snapshot
// @Failure 500 {string} string "Internal error"
// @Router /dashboard/refresh [post]
func RefreshDashboardHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := dashboardService.Refresh(r.Context())
	if errors.Is(err, dashboard.ErrStaleRefresh) {
		snap, err = dashboardService.Current(r.Context())
	}
	if err != nil {
		log.Error().Err(err).Msg("dashboard refresh failed")
		http.Error(w, "could not refresh dashboard", http.StatusInternalServerError)
		return
	}
	respond(w, http.StatusOK, snap)
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, data []byte) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// StreamDashboardHandler godoc
// @Summary Live dashboard snapshots (Server-Sent Events)
// @Description Sends the current snapshot, then every newly installed one as a "snapshot" event, with "ping" events every 30s. EventSource cannot set headers, so the access token may be passed as access_token.
// @Tags dashboard
// @Produce text/event-stream
// @Param access_token query string false "Access token"
// @Success 200 {string} string "event stream"
// @Failure 401 {string} string "Unauthorized"
// @Router /dashboard/stream [get]
func StreamDashboardHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	userID, _ := mw.UserIDFromContext(r.Context())
	clientID := fmt.Sprintf("%s-%s", userID, uuid.New().String()[:8])

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	client := streamHub.Register(clientID)
	defer streamHub.Unregister(clientID)

	if snap, err := dashboardService.Current(r.Context()); err == nil {
		if data, err := json.Marshal(snap); err == nil {
			if err := writeEvent(w, flusher, sse.EventSnapshot, data); err != nil {
				return
			}
		}
	} else {
		log.Warn().Err(err).Str("client_id", clientID).Msg("no initial dashboard snapshot for stream")
	}

	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return
			}
			if err := writeEvent(w, flusher, sse.EventSnapshot, data); err != nil {
				return
			}
		case t := <-ticker.C:
			ping := fmt.Appendf(nil, `{"timestamp":%q}`, t.UTC().Format(time.RFC3339))
			if err := writeEvent(w, flusher, sse.EventPing, ping); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

// HealthHandler godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

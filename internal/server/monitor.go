package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jmylchreest/figaid/internal/capture"
)

type monitorEvent struct {
	Event string `json:"event"`
	*capture.Result
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// handleMonitor streams a design tool capture every MonitorInterval as
// Server-Sent Events until the client goes away.
func (s *Server) handleMonitor(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.logger.Warn("monitor stream cannot flush", "error", err)
		return
	}

	ticker := time.NewTicker(s.opts.MonitorInterval)
	defer ticker.Stop()

	ctx := r.Context()
	s.logger.Debug("monitor client connected", "remote", r.RemoteAddr)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("monitor client disconnected", "remote", r.RemoteAddr)
			return
		case <-ticker.C:
		}

		event := monitorEvent{Event: "capture"}
		res, err := s.opts.Capturer.Capture(ctx, capture.TargetFigma)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			event = monitorEvent{Event: "error", Error: err.Error()}
		} else {
			event.Result = res
			event.URL = captureURL(res.Filename)
		}

		data, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("failed to encode monitor event", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

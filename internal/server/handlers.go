package server

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/figaid/internal/analysis"
	"github.com/jmylchreest/figaid/internal/capture"
	"github.com/jmylchreest/figaid/internal/feedback"
	"github.com/jmylchreest/figaid/internal/geometry"
	"github.com/jmylchreest/figaid/internal/history"
	imageutil "github.com/jmylchreest/figaid/internal/image"
	"github.com/jmylchreest/figaid/internal/placement"
	"github.com/jmylchreest/figaid/internal/security"
)

type captureRequest struct {
	Target string `json:"target"`
}

type capturePayload struct {
	*capture.Result
	Analysis *analysis.Result `json:"analysis"`
	URL      string           `json:"url"`
}

type captureResponse struct {
	Success bool           `json:"success"`
	Capture capturePayload `json:"capture"`
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if status, err := decodeJSON(r, &req); err != nil {
		s.writeError(w, status, err)
		return
	}
	target, err := capture.ParseTarget(req.Target)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.opts.Capturer.Capture(r.Context(), target)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	result, err := s.opts.Analyzer.Analyze(r.Context(), res.Path)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	payload := capturePayload{Result: res, Analysis: result, URL: captureURL(res.Filename)}
	s.opts.History.Add(history.Entry{
		Type:      history.TypeCapture,
		Timestamp: res.Timestamp,
		Filename:  res.Filename,
		Path:      res.Path,
		App:       res.App,
		URL:       payload.URL,
		Analysis:  result,
	})

	s.writeJSON(w, http.StatusOK, captureResponse{Success: true, Capture: payload})
}

// exportFilename names a saved export.
func exportFilename(timestamp int64, name string) string {
	return fmt.Sprintf("figma_export_%d_%s.png", timestamp, security.SanitizeName(name))
}

func (s *Server) handleVisualFeedback(w http.ResponseWriter, r *http.Request) {
	var payload feedback.Payload
	if status, err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, status, err)
		return
	}
	if payload.Timestamp == 0 {
		payload.Timestamp = s.opts.Now().UnixMilli()
	}

	if err := os.MkdirAll(s.opts.CapturesDir, 0o750); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to create captures directory: %w", err))
		return
	}

	items := make([]history.Item, 0, len(payload.Exports))
	urls := make([]string, 0, len(payload.Exports))
	for _, export := range payload.Exports {
		data, err := export.Decode()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}

		filename := exportFilename(payload.Timestamp, export.Name)
		if err := security.ValidateFilePath(filename, s.opts.CapturesDir); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := os.WriteFile(filepath.Join(s.opts.CapturesDir, filename), data, 0o600); err != nil {
			s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to save export: %w", err))
			return
		}

		url := captureURL(filename)
		items = append(items, history.Item{
			Name:     export.Name,
			Type:     export.Type,
			Bounds:   export.Bounds,
			Filename: filename,
			URL:      url,
		})
		urls = append(urls, url)
	}

	viewport := payload.Viewport
	s.opts.History.Add(history.Entry{
		Type:      history.TypeFigmaExport,
		Timestamp: payload.Timestamp,
		Viewport:  &viewport,
		Items:     items,
	})
	s.logger.Info("received exports", "count", len(payload.Exports))

	s.writeJSON(w, http.StatusOK, feedback.Response{Success: true, Saved: len(items), URLs: urls})
}

type historyResponse struct {
	Total   int             `json:"total"`
	History []history.Entry `json:"history"`
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, historyResponse{
		Total:   s.opts.History.Len(),
		History: s.opts.History.Recent(s.opts.HistoryLimit),
	})
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := s.opts.History.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("history entry %q not found", id))
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleArchive(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := s.opts.History.Archive(&buf, s.opts.CapturesDir); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	name := fmt.Sprintf("figaid-history-%d.tar.xz", s.opts.Now().UnixMilli())
	w.Header().Set("Content-Type", "application/x-xz")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(buf.Bytes())
}

type compareRequest struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// resolveSource maps a compare source to a URL or a file inside the
// captures directory. Capture URLs as returned by /capture are accepted.
func (s *Server) resolveSource(src string) (string, error) {
	if src == "" {
		return "", fmt.Errorf("image source is required")
	}
	if imageutil.IsURL(src) {
		if err := security.ValidateSourceURL(src); err != nil {
			return "", err
		}
		return src, nil
	}
	name := strings.TrimPrefix(src, CapturesPath)
	if err := security.ValidateFilePath(name, s.opts.CapturesDir); err != nil {
		return "", err
	}
	return filepath.Join(s.opts.CapturesDir, name), nil
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if status, err := decodeJSON(r, &req); err != nil {
		s.writeError(w, status, err)
		return
	}
	before, err := s.resolveSource(req.Before)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("before: %w", err))
		return
	}
	after, err := s.resolveSource(req.After)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("after: %w", err))
		return
	}

	cmp, err := analysis.CompareSources(r.Context(), s.opts.Loader, before, after)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cmp)
}

type placeRequest struct {
	Width    float64           `json:"width"`
	Height   float64           `json:"height"`
	Occupied []geometry.Region `json:"occupied"`
	Padding  *float64          `json:"padding,omitempty"`
}

type placeResponse struct {
	placement.Result
	Verified bool          `json:"verified"`
	Bounds   geometry.Rect `json:"bounds"`
	Overlap  float64       `json:"overlap"`
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if status, err := decodeJSON(r, &req); err != nil {
		s.writeError(w, status, err)
		return
	}
	if geometry.NewRect(0, 0, req.Width, req.Height).IsEmpty() {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("width and height must be positive"))
		return
	}

	finder := s.opts.Finder
	if req.Padding != nil {
		if *req.Padding < 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("padding cannot be negative"))
			return
		}
		opts := finder.Options()
		opts.Padding = *req.Padding
		finder = placement.NewFinder(opts)
	}

	res := finder.Find(req.Width, req.Height, req.Occupied)
	bounds := res.Bounds(req.Width, req.Height)
	s.writeJSON(w, http.StatusOK, placeResponse{
		Result:   res,
		Verified: res.Zone.Verified(),
		Bounds:   bounds,
		Overlap:  geometry.OverlapArea(bounds, req.Occupied),
	})
}

type healthResponse struct {
	Status   string  `json:"status"`
	Captures int     `json:"captures"`
	Uptime   float64 `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:   "running",
		Captures: s.opts.History.Len(),
		Uptime:   s.opts.Now().Sub(s.started).Round(time.Millisecond).Seconds(),
	})
}

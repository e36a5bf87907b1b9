// Package feedback carries design-tool exports to the visual helper.
// It defines the /visual-feedback payload shared by the client and the
// server.
package feedback

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmylchreest/figaid/internal/document"
	"github.com/jmylchreest/figaid/internal/geometry"
	imageutil "github.com/jmylchreest/figaid/internal/image"
	"github.com/jmylchreest/figaid/internal/security"
	httputil "github.com/jmylchreest/figaid/internal/util/http"
)

const (
	// DefaultURL is where the visual helper listens by default.
	DefaultURL = "http://localhost:3001"

	// Path is the endpoint that receives exports.
	Path = "/visual-feedback"

	// TruncationMarker is appended by the design tool when it shortens the
	// base64 payload for logging.
	TruncationMarker = "..."

	// MaxImageSize bounds a single decoded export.
	MaxImageSize = 50 * 1024 * 1024
)

// Export is one exported node.
type Export struct {
	Name   string         `json:"name"`
	Type   string         `json:"type,omitempty"`
	Bounds *geometry.Rect `json:"bounds,omitempty"`
	Image  string         `json:"image"`
}

// Decode returns the PNG bytes of the export. A trailing truncation marker
// is dropped and a partial final quantum is tolerated.
func (e Export) Decode() ([]byte, error) {
	s := strings.TrimSuffix(strings.TrimSpace(e.Image), TruncationMarker)
	s = strings.TrimRight(s, "=")
	if len(s)%4 == 1 {
		s = s[:len(s)-1]
	}

	r := security.NewLimitedReader(base64.NewDecoder(base64.RawStdEncoding, strings.NewReader(s)), MaxImageSize)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image for %q: %w", e.Name, err)
	}
	return data, nil
}

// Payload is the /visual-feedback request body.
type Payload struct {
	Exports   []Export          `json:"exports"`
	Viewport  document.Viewport `json:"viewport"`
	Timestamp int64             `json:"timestamp"`
}

// Response is the /visual-feedback response body.
type Response struct {
	Success bool     `json:"success"`
	Saved   int      `json:"saved"`
	URLs    []string `json:"urls"`
	Error   string   `json:"error,omitempty"`
}

// Client posts exports to a running visual helper.
type Client struct {
	baseURL string
	opts    httputil.FetchOptions
	now     func() time.Time
}

// NewClient creates a Client for the helper at baseURL.
func NewClient(baseURL string, opts httputil.FetchOptions) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		now:     time.Now,
	}
}

// Send posts the exports and viewport to the helper.
func (c *Client) Send(ctx context.Context, exports []Export, viewport document.Viewport) (*Response, error) {
	if len(exports) == 0 {
		return nil, fmt.Errorf("nothing to send")
	}

	payload := Payload{
		Exports:   exports,
		Viewport:  viewport,
		Timestamp: c.now().UnixMilli(),
	}

	var resp Response
	if err := httputil.PostJSON(ctx, c.baseURL+Path, payload, &resp, c.opts); err != nil {
		return nil, fmt.Errorf("failed to send visual feedback: %w", err)
	}
	if !resp.Success {
		return &resp, fmt.Errorf("helper rejected feedback: %s", resp.Error)
	}
	return &resp, nil
}

// ExportsFromFiles builds exports from image files. The export name is the
// file name without extension; when doc has a node with that name its
// type and bounds are attached.
func ExportsFromFiles(paths []string, doc *document.Document) ([]Export, error) {
	exports := make([]Export, 0, len(paths))
	for _, path := range paths {
		if _, err := imageutil.DecodeInfo(path); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path) // #nosec G304 - user-supplied export file
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		export := Export{
			Name:  name,
			Image: base64.StdEncoding.EncodeToString(data),
		}
		if doc != nil {
			if nodes := doc.FindAll(func(n *document.Node) bool { return n.Name == name }); len(nodes) > 0 {
				export.Type = nodes[0].Type
				export.Bounds = nodes[0].AbsoluteBoundingBox
			}
		}
		exports = append(exports, export)
	}
	return exports, nil
}

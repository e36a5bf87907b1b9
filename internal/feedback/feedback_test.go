package feedback

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmylchreest/figaid/internal/document"
	"github.com/jmylchreest/figaid/internal/geometry"
	httputil "github.com/jmylchreest/figaid/internal/util/http"
)

func TestExportDecode(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		want    string
		wantErr bool
	}{
		{"padded", "aGVsbG8=", "hello", false},
		{"truncated marker", "aGVsbG8...", "hello", false},
		{"partial quantum", "aGVsbG8gd...", "hello ", false},
		{"empty", "", "", false},
		{"invalid", "!!!!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Export{Name: "n", Image: tt.image}.Decode()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientSend(t *testing.T) {
	var got Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != Path {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(Response{Success: true, Saved: len(got.Exports), URLs: []string{"/captures/a.png"}})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", httputil.FetchOptions{})
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }

	viewport := document.Viewport{Bounds: geometry.NewRect(0, 0, 1440, 900), Zoom: 0.5}
	resp, err := c.Send(context.Background(), []Export{{Name: "Hero", Image: "aGVsbG8="}}, viewport)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp.Saved != 1 || len(resp.URLs) != 1 {
		t.Errorf("response = %+v", resp)
	}
	if got.Timestamp != 1700000000000 || got.Viewport.Zoom != 0.5 || got.Exports[0].Name != "Hero" {
		t.Errorf("payload = %+v", got)
	}
}

func TestClientSendErrors(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{Success: false, Error: "disk full"})
	}))
	defer rejecting.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	exports := []Export{{Name: "x", Image: "aGk="}}
	tests := []struct {
		name    string
		url     string
		exports []Export
	}{
		{"rejected", rejecting.URL, exports},
		{"server error", failing.URL, exports},
		{"no exports", rejecting.URL, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.url, httputil.FetchOptions{}).Send(context.Background(), tt.exports, document.Viewport{}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func writePNG(t *testing.T, dir, name string) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path, buf.Bytes()
}

func TestExportsFromFiles(t *testing.T) {
	dir := t.TempDir()
	hero, heroData := writePNG(t, dir, "Hero.png")
	other, _ := writePNG(t, dir, "Unknown.png")

	doc := &document.Document{Page: document.Page{Children: []*document.Node{{
		ID: "1:1", Name: "Hero", Type: document.TypeFrame,
		AbsoluteBoundingBox: &geometry.Rect{X: 10, Y: 20, Width: 300, Height: 200},
	}}}}

	exports, err := ExportsFromFiles([]string{hero, other}, doc)
	if err != nil {
		t.Fatalf("ExportsFromFiles() error = %v", err)
	}
	if len(exports) != 2 {
		t.Fatalf("got %d exports", len(exports))
	}
	if exports[0].Name != "Hero" || exports[0].Type != document.TypeFrame || exports[0].Bounds.Width != 300 {
		t.Errorf("exports[0] = %+v", exports[0])
	}
	if exports[0].Image != base64.StdEncoding.EncodeToString(heroData) {
		t.Error("image payload does not match file contents")
	}
	if exports[1].Bounds != nil || exports[1].Type != "" {
		t.Errorf("unmatched export should carry no bounds: %+v", exports[1])
	}

	if _, err := ExportsFromFiles([]string{filepath.Join(dir, "missing.png")}, nil); err == nil {
		t.Error("expected error for missing file")
	}
}

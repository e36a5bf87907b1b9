package analysis

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/jmylchreest/figaid/pkg/plugin"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func writeImage(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeDescriber struct {
	name string
	resp *plugin.DescribeResponse
	err  error
	got  plugin.DescribeRequest
}

func (f *fakeDescriber) Name() string { return f.name }

func (f *fakeDescriber) Describe(_ context.Context, req plugin.DescribeRequest) (*plugin.DescribeResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestAnalyzeDefault(t *testing.T) {
	path := writeImage(t, solidImage(20, 10, color.RGBA{R: 255, A: 255}))

	res, err := New(Options{}).Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.Size == 0 || res.Created.IsZero() {
		t.Errorf("missing file metadata: %+v", res)
	}
	if res.Width != 20 || res.Height != 10 || res.Format != "png" {
		t.Errorf("image info = %dx%d %s", res.Width, res.Height, res.Format)
	}
	if res.Analysis.Description != DefaultDescription || res.Analysis.Layout != UnknownLayout {
		t.Errorf("analysis = %+v", res.Analysis)
	}
	if res.Analysis.Elements == nil || len(res.Analysis.Elements) != 0 {
		t.Errorf("Elements = %v, want empty non-nil", res.Analysis.Elements)
	}
	if len(res.Analysis.Colors) == 0 || res.Analysis.Colors[0] != "#FF0000" {
		t.Errorf("Colors = %v", res.Analysis.Colors)
	}
}

func TestAnalyzeDescriberChain(t *testing.T) {
	path := writeImage(t, solidImage(8, 8, color.RGBA{B: 255, A: 255}))

	failing := &fakeDescriber{name: "broken", err: errors.New("offline")}
	empty := &fakeDescriber{name: "empty", resp: &plugin.DescribeResponse{}}
	good := &fakeDescriber{name: "good", resp: &plugin.DescribeResponse{
		Description: "a blue square",
		Layout:      "grid",
		Elements:    []plugin.Element{{Label: "square", Width: 8, Height: 8}},
	}}

	a := New(Options{Describers: []Describer{failing, empty, good}})
	res, err := a.Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.Analysis.Description != "a blue square" || res.Analysis.Describer != "good" {
		t.Errorf("analysis = %+v", res.Analysis)
	}
	if res.Analysis.Layout != "grid" || len(res.Analysis.Elements) != 1 {
		t.Errorf("layout/elements = %q %v", res.Analysis.Layout, res.Analysis.Elements)
	}
	if !filepath.IsAbs(good.got.ImagePath) || good.got.Width != 8 || len(good.got.Colors) == 0 {
		t.Errorf("request = %+v", good.got)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	if _, err := New(Options{}).Analyze(context.Background(), "/nonexistent/file.png"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestChainAllFail(t *testing.T) {
	c := NewChain(nil, &fakeDescriber{name: "a", err: errors.New("x")})
	_, _, err := c.Describe(context.Background(), plugin.DescribeRequest{})
	if !errors.Is(err, ErrNoDescription) {
		t.Errorf("error = %v, want ErrNoDescription", err)
	}
}

func TestPluginDescriber(t *testing.T) {
	inner := &fakeDescriber{resp: &plugin.DescribeResponse{Description: "from plugin"}}
	d := NewPluginDescriber("vision", inner)
	if d.Name() != "plugin:vision" {
		t.Errorf("Name() = %q", d.Name())
	}
	resp, err := d.Describe(context.Background(), plugin.DescribeRequest{})
	if err != nil || resp.Description != "from plugin" {
		t.Errorf("Describe() = %+v, %v", resp, err)
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGeminiDescriber(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantDesc   string
		wantLayout string
	}{
		{"json", `{"description":"A pricing page","layout":"three-column","elements":[]}`, "A pricing page", "three-column"},
		{"fenced json", "```json\n{\"description\":\"A form\"}\n```", "A form", ""},
		{"plain text", "Just a canvas", "Just a canvas", ""},
	}

	path := writeImage(t, solidImage(4, 4, color.RGBA{G: 255, A: 255}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotModel, gotMime string
			g := newGeminiDescriber("", func(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				gotModel = model
				for _, p := range contents[0].Parts {
					if p.InlineData != nil {
						gotMime = p.InlineData.MIMEType
					}
				}
				return textResponse(tt.reply), nil
			})

			resp, err := g.Describe(context.Background(), plugin.DescribeRequest{ImagePath: path, Format: "png", Width: 4, Height: 4})
			if err != nil {
				t.Fatalf("Describe() error = %v", err)
			}
			if resp.Description != tt.wantDesc || resp.Layout != tt.wantLayout {
				t.Errorf("Describe() = %+v", resp)
			}
			if gotModel != DefaultGeminiModel || gotMime != "image/png" {
				t.Errorf("model = %q, mime = %q", gotModel, gotMime)
			}
		})
	}
}

func TestGeminiDescriberErrors(t *testing.T) {
	failing := newGeminiDescriber("m", func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, errors.New("quota")
	})
	if _, err := failing.Describe(context.Background(), plugin.DescribeRequest{Image: []byte("x")}); err == nil || !strings.Contains(err.Error(), "quota") {
		t.Errorf("error = %v", err)
	}

	empty := newGeminiDescriber("m", func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse(""), nil
	})
	if _, err := empty.Describe(context.Background(), plugin.DescribeRequest{Image: []byte("x")}); err == nil {
		t.Error("expected error for empty reply")
	}

	if _, err := empty.Describe(context.Background(), plugin.DescribeRequest{ImagePath: "/nonexistent.png"}); err == nil {
		t.Error("expected error for unreadable image")
	}

	if empty.Name() != "gemini:m" {
		t.Errorf("Name() = %q", empty.Name())
	}
}

func TestNewGeminiDescriberRequiresKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	if _, err := NewGeminiDescriber(context.Background(), ""); err == nil {
		t.Error("expected error without GOOGLE_API_KEY")
	}
}

package document

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/figaid/internal/geometry"
)

const sampleJSON = `{
  "name": "Sample",
  "page": {
    "name": "Page 1",
    "children": [
      {"id": "1:1", "name": "Hero", "type": "FRAME",
       "absoluteBoundingBox": {"x": 0, "y": 0, "width": 500, "height": 200},
       "absoluteRenderBounds": {"x": -10, "y": -10, "width": 520, "height": 220},
       "fills": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0}}],
       "children": [
         {"id": "1:2", "name": "Title", "type": "TEXT", "fontSize": 32,
          "fontName": {"family": "Inter", "style": "Bold"}, "characters": "Hello",
          "fills": [{"type": "SOLID", "color": {"r": 0.1, "g": 0.1, "b": 0.1}}]},
         {"id": "1:3", "name": "Button", "type": "INSTANCE", "mainComponentId": "9:9",
          "remote": true, "key": "abc",
          "absoluteBoundingBox": {"x": 10, "y": 10, "width": 100, "height": 40}}
       ]},
      {"id": "2:1", "name": "Hidden", "type": "FRAME", "visible": false,
       "absoluteBoundingBox": {"x": 0, "y": 1000, "width": 10, "height": 10}},
      {"id": "3:1", "name": "NoBounds", "type": "GROUP"},
      {"id": "4:1", "name": "Card", "type": "RECTANGLE",
       "absoluteBoundingBox": {"x": 0, "y": 400, "width": 300, "height": 100},
       "fills": [{"type": "SOLID", "color": {"r": 1.0001, "g": 0, "b": 0}},
                 {"type": "GRADIENT_LINEAR", "color": {"r": 0, "g": 0, "b": 0}}]},
      {"id": "4:1", "name": "Card copy", "type": "RECTANGLE",
       "absoluteBoundingBox": {"x": 0, "y": 900, "width": 300, "height": 100}}
    ]
  },
  "viewport": {"bounds": {"x": 0, "y": 0, "width": 1000, "height": 800}, "zoom": 1}
}`

const sampleYAML = `name: Sample
page:
  name: Page 1
  children:
    - id: "1:1"
      name: Hero
      type: FRAME
      absoluteBoundingBox: {x: 0, y: 0, width: 500, height: 200}
variables:
  - id: v1
    name: brand/primary
    resolvedType: COLOR
    variableCollectionId: c1
    valuesByMode:
      m1: {r: 0, g: 0.5, b: 1, a: 1}
collections:
  - id: c1
    name: Brand
    defaultModeId: m1
`

func mustDecode(t *testing.T) *Document {
	t.Helper()
	doc, err := Decode([]byte(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return doc
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		source string
		want   Format
	}{
		{"doc.json", FormatJSON},
		{"doc.YAML", FormatYAML},
		{"doc.yml", FormatYAML},
		{"doc", FormatJSON},
		{"https://example.com/doc.yaml?token=1", FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := DetectFormat(tt.source); got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestOccupiedRegions(t *testing.T) {
	doc := mustDecode(t)
	regions := doc.OccupiedRegions()

	want := []geometry.Region{
		geometry.NewRegion("Hero", geometry.NewRect(-10, -10, 520, 220)),
		geometry.NewRegion("Card", geometry.NewRect(0, 400, 300, 100)),
	}
	if len(regions) != len(want) {
		t.Fatalf("OccupiedRegions() returned %d regions, want %d: %v", len(regions), len(want), regions)
	}
	for i := range want {
		if regions[i] != want[i] {
			t.Errorf("region %d = %+v, want %+v", i, regions[i], want[i])
		}
	}
}

func TestScan(t *testing.T) {
	a := mustDecode(t).Scan()

	if a.TotalElements != 7 {
		t.Errorf("TotalElements = %d, want 7", a.TotalElements)
	}
	if a.ElementTypes["FRAME"] != 2 || a.ElementTypes["RECTANGLE"] != 2 {
		t.Errorf("ElementTypes = %v", a.ElementTypes)
	}
	// 1.0001 rounds into the same two-decimal key as pure red.
	if got := a.ColorPalette["1.00-0.00-0.00"]; got != 2 {
		t.Errorf("red count = %d, want 2 (palette %v)", got, a.ColorPalette)
	}
	if len(a.ColorPalette) != 2 {
		t.Errorf("unique colours = %d, want 2", len(a.ColorPalette))
	}
	if got := a.TextStyles["32-Inter-Bold"]; got != 1 {
		t.Errorf("TextStyles = %v", a.TextStyles)
	}
	if len(a.ComponentInstances) != 1 || a.ComponentInstances[0].MainComponentID != "9:9" {
		t.Errorf("ComponentInstances = %+v", a.ComponentInstances)
	}
	if len(a.LibraryElements) != 1 || a.LibraryElements[0].Key != "abc" {
		t.Errorf("LibraryElements = %+v", a.LibraryElements)
	}
	if len(a.SpatialZones) != 4 {
		t.Fatalf("SpatialZones = %d, want 4", len(a.SpatialZones))
	}
	br := a.SpatialZones[3]
	if br.Name != "bottom-right" || br.X != 500 || br.Y != 400 || br.Width != 500 || br.Height != 400 {
		t.Errorf("bottom-right zone = %+v", br)
	}

	types := a.SortedTypes()
	if types[0].Count != 2 || types[0].Type != "FRAME" {
		t.Errorf("SortedTypes()[0] = %+v", types[0])
	}
}

func TestFindAllAndAppend(t *testing.T) {
	doc := mustDecode(t)

	texts := doc.FindAll(func(n *Node) bool { return n.Type == TypeText })
	if len(texts) != 1 || texts[0].Characters != "Hello" {
		t.Fatalf("FindAll(TEXT) = %+v", texts)
	}

	before := len(doc.Page.Children)
	bounds := geometry.NewRect(2000, 0, 10, 10)
	doc.Append(&Node{ID: "new", Name: "New", Type: TypeFrame, AbsoluteBoundingBox: &bounds})
	if len(doc.Page.Children) != before+1 {
		t.Errorf("Append() did not add a child")
	}
	if got := len(doc.OccupiedRegions()); got != 3 {
		t.Errorf("OccupiedRegions() after Append = %d, want 3", got)
	}
}

func TestDecodeYAMLVariables(t *testing.T) {
	doc, err := Decode([]byte(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	vars := doc.ColorVariables()
	if len(vars) != 1 {
		t.Fatalf("ColorVariables() = %d, want 1", len(vars))
	}
	coll, ok := doc.Collection(vars[0].VariableCollectionID)
	if !ok {
		t.Fatal("Collection() not found")
	}
	c, ok := ColorValue(vars[0].ValuesByMode[coll.DefaultModeID])
	if !ok {
		t.Fatal("ColorValue() failed")
	}
	if c.Hex() != "#0080FF" {
		t.Errorf("Hex() = %s, want #0080FF", c.Hex())
	}
}

func TestColorValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		ok    bool
	}{
		{"object", map[string]any{"r": 0.1, "g": 0.2, "b": 0.3}, true},
		{"integers", map[string]any{"r": 1, "g": 0, "b": 0}, true},
		{"alias", map[string]any{"type": "VARIABLE_ALIAS", "id": "x"}, false},
		{"number", 3.0, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ColorValue(tt.value); ok != tt.ok {
				t.Errorf("ColorValue() ok = %v, want %v", ok, tt.ok)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("file", func(t *testing.T) {
		doc, err := Load(context.Background(), path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if doc.Name != "Sample" {
			t.Errorf("Name = %q", doc.Name)
		}
	})

	t.Run("url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(sampleJSON))
		}))
		defer srv.Close()

		doc, err := Load(context.Background(), srv.URL+"/doc.json")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(doc.Page.Children) != 5 {
			t.Errorf("children = %d, want 5", len(doc.Page.Children))
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := Load(context.Background(), filepath.Join(dir, "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := Load(context.Background(), ""); err == nil {
			t.Error("expected error for empty source")
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	doc := mustDecode(t)
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	back, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(back.OccupiedRegions()) != len(doc.OccupiedRegions()) {
		t.Errorf("regions differ after round trip")
	}
}

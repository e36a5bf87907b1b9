package showcase

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/jmylchreest/figaid/internal/colour"
	"github.com/jmylchreest/figaid/internal/document"
	"github.com/jmylchreest/figaid/internal/geometry"
	"github.com/jmylchreest/figaid/internal/placement"
)

func solidStyle(name, key string, c colour.UnitRGB) document.PaintStyle {
	return document.PaintStyle{ID: name, Name: name, Key: key, Paints: []document.Paint{{Type: document.PaintSolid, Color: c}}}
}

func frameAt(id string, x, y, w, h float64, fills ...document.Paint) *document.Node {
	r := geometry.NewRect(x, y, w, h)
	return &document.Node{ID: id, Name: id, Type: document.TypeFrame, AbsoluteBoundingBox: &r, Fills: fills}
}

func styledDoc() *document.Document {
	return &document.Document{
		PaintStyles: []document.PaintStyle{
			solidStyle("Primary", "lib-key", colour.UnitRGB{R: 0, G: 0.4, B: 1}),
			solidStyle("Primary copy", "", colour.UnitRGB{R: 0.0001, G: 0.4, B: 1}),
			{Name: "Gradient", Paints: []document.Paint{{Type: "GRADIENT_LINEAR"}}},
			{Name: "Empty"},
		},
		Variables: []document.Variable{
			{ID: "v1", Name: "surface", ResolvedType: "COLOR", VariableCollectionID: "c1",
				ValuesByMode: map[string]any{"m1": map[string]any{"r": 1.0, "g": 1.0, "b": 1.0}, "m2": map[string]any{"r": 0.0, "g": 0.0, "b": 0.0}}},
			{ID: "v2", Name: "spacing", ResolvedType: "FLOAT", VariableCollectionID: "c1",
				ValuesByMode: map[string]any{"m1": 8.0}},
			{ID: "v3", Name: "orphan", ResolvedType: "COLOR", VariableCollectionID: "missing",
				ValuesByMode: map[string]any{"m1": map[string]any{"r": 0.5, "g": 0.5, "b": 0.5}}},
		},
		Collections: []document.VariableCollection{{ID: "c1", Name: "Theme", DefaultModeID: "m1"}},
		LibraryCollections: []document.LibraryCollection{
			{Key: "k1", Name: "Brand", LibraryName: "DS19 Core", Variables: []document.Variable{
				{Name: "brand/red", ResolvedType: "COLOR", ValuesByMode: map[string]any{"a": map[string]any{"r": 1.0, "g": 0.0, "b": 0.0}}},
			}},
			{Key: "k2", Name: "Other", LibraryName: "Material", Variables: []document.Variable{
				{Name: "green", ResolvedType: "COLOR", ValuesByMode: map[string]any{"a": map[string]any{"r": 0.0, "g": 1.0, "b": 0.0}}},
			}},
		},
	}
}

func TestCollect(t *testing.T) {
	coll := Collect(styledDoc(), DefaultOptions())

	want := []struct {
		name   string
		hex    string
		source Source
	}{
		{LibraryMarker + "Primary", "#0066FF", SourceStyle},
		{"surface", "#FFFFFF", SourceVariable},
		{"brand/red", "#FF0000", SourceLibrary},
	}
	if len(coll.Swatches) != len(want) {
		t.Fatalf("Collect() = %d swatches, want %d: %+v", len(coll.Swatches), len(want), coll.Swatches)
	}
	for i, w := range want {
		got := coll.Swatches[i]
		if got.Name != w.name || got.Hex != w.hex || got.Source != w.source {
			t.Errorf("swatch %d = %+v, want %+v", i, got, w)
		}
	}
	if !coll.Swatches[0].Library {
		t.Error("style with key should be marked as library")
	}
	if coll.Note != "" || coll.Tip != "" {
		t.Errorf("unexpected note %q / tip %q", coll.Note, coll.Tip)
	}
}

func TestCollectLibraryFilter(t *testing.T) {
	opts := DefaultOptions()
	opts.Library = "Material"
	coll := Collect(styledDoc(), opts)

	var names []string
	for _, s := range coll.Swatches {
		names = append(names, s.Name)
	}
	if got := strings.Join(names, ","); got != LibraryMarker+"Primary,surface,green" {
		t.Errorf("swatches = %s", got)
	}
}

func TestCollectDocumentFallback(t *testing.T) {
	hidden := false
	doc := &document.Document{}
	doc.Append(frameAt("Hero", 0, 0, 100, 100,
		document.Paint{Type: document.PaintSolid, Color: colour.UnitRGB{R: 1}},
		document.Paint{Type: document.PaintSolid, Color: colour.UnitRGB{G: 1}, Visible: &hidden},
	))
	doc.Append(frameAt("", 0, 200, 100, 100, document.Paint{Type: document.PaintSolid, Color: colour.UnitRGB{B: 1}}))
	doc.Append(frameAt("Dup", 0, 400, 100, 100, document.Paint{Type: document.PaintSolid, Color: colour.UnitRGB{R: 1}}))

	coll := Collect(doc, Options{})

	if coll.Note != FallbackNote {
		t.Errorf("Note = %q", coll.Note)
	}
	if !strings.Contains(coll.Tip, "Tip: To load DS19 colors") {
		t.Errorf("Tip = %q", coll.Tip)
	}
	if len(coll.Swatches) != 2 {
		t.Fatalf("swatches = %+v", coll.Swatches)
	}
	if coll.Swatches[0].Name != "Hero" || coll.Swatches[1].Name != "Document Color" {
		t.Errorf("names = %q, %q", coll.Swatches[0].Name, coll.Swatches[1].Name)
	}
	if coll.Swatches[0].Source != SourceDocument {
		t.Errorf("source = %s", coll.Swatches[0].Source)
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"exactly twenty-two ch.", "exactly twenty-two ch."},
		{"this name is definitely too long", "this name is definitel..."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := TruncateLabel(tt.in); got != tt.want {
				t.Errorf("TruncateLabel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGridHeight(t *testing.T) {
	if Columns() != 4 {
		t.Fatalf("Columns() = %d, want 4", Columns())
	}
	tests := []struct {
		n    int
		want float64
	}{
		{0, 0},
		{1, 140},
		{4, 140},
		{5, 292},
		{9, 444},
	}
	for _, tt := range tests {
		if got := GridHeight(tt.n); got != tt.want {
			t.Errorf("GridHeight(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestBuildPlacement(t *testing.T) {
	tests := []struct {
		name     string
		children []*document.Node
		wantZone placement.Zone
		wantX    float64
		wantY    float64
	}{
		{
			name:     "empty canvas",
			wantZone: placement.ZoneEmptyCanvas,
			wantX:    100,
			wantY:    100,
		},
		{
			name: "above existing content",
			children: []*document.Node{
				frameAt("a", 0, 0, 1000, 500),
			},
			wantZone: placement.ZoneAbove,
			wantX:    0,
			wantY:    -500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := styledDoc()
			doc.Page.Children = tt.children

			s := Build(doc, DefaultOptions())
			if s.Placement.Zone != tt.wantZone || s.Placement.X != tt.wantX || s.Placement.Y != tt.wantY {
				t.Errorf("placement = %+v, want %s (%v, %v)", s.Placement, tt.wantZone, tt.wantX, tt.wantY)
			}
			if s.Bounds.X != tt.wantX || s.Bounds.Y != tt.wantY {
				t.Errorf("frame at (%v, %v), want placement position", s.Bounds.X, s.Bounds.Y)
			}
		})
	}
}

func TestBuildLayout(t *testing.T) {
	s := Build(styledDoc(), DefaultOptions())

	if s.Count != 3 || s.Subtitle != "Displaying 3 colors from your design system" {
		t.Errorf("Count = %d, Subtitle = %q", s.Count, s.Subtitle)
	}
	if s.Title != "DS19 Color Library" {
		t.Errorf("Title = %q", s.Title)
	}

	// padding + header + spacing + divider + spacing + one grid row + padding
	wantHeight := 40.0 + 60 + 32 + 1 + 32 + 140 + 40
	if s.Bounds.Width != 800 || s.Bounds.Height != wantHeight {
		t.Errorf("Bounds = %v, want 800x%v", s.Bounds, wantHeight)
	}

	frame := s.Node()
	if frame.Name != "DS19 Color Showcase" || len(frame.Children) != 3 {
		t.Fatalf("frame %q has %d children", frame.Name, len(frame.Children))
	}

	cards := frame.Children[2].Children[0].Children
	if len(cards) != 3 {
		t.Fatalf("grid has %d cards, want 3", len(cards))
	}
	second := cards[1].AbsoluteBoundingBox
	if second.X != 100+40+170+12 || second.Y != 100+40+60+32+1+32 {
		t.Errorf("second card at %v", second)
	}
	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			if geometry.Collides(cards[i].AbsoluteBoundingBox, cards[j].AbsoluteBoundingBox) {
				t.Errorf("cards %d and %d overlap", i, j)
			}
		}
	}

	// Node IDs must be unique so the applied frame is counted once.
	ids := map[string]bool{}
	var walk func(n *document.Node)
	walk = func(n *document.Node) {
		if ids[n.ID] {
			t.Errorf("duplicate node ID %s", n.ID)
		}
		ids[n.ID] = true
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(frame)
}

func TestBuildMeasuredSize(t *testing.T) {
	doc := styledDoc()
	doc.Page.Children = []*document.Node{frameAt("a", 0, 0, 1000, 500)}

	opts := DefaultOptions()
	opts.UseMeasuredSize = true
	s := Build(doc, opts)

	wantY := 0 - s.Bounds.Height - 100
	if s.Placement.Y != wantY {
		t.Errorf("Y = %v, want %v", s.Placement.Y, wantY)
	}
}

func TestApplyIsAvoidedByNextBuild(t *testing.T) {
	doc := styledDoc()

	first := Build(doc, DefaultOptions())
	first.Apply(doc)
	second := Build(doc, DefaultOptions())

	if len(doc.Page.Children) != 1 {
		t.Fatalf("page has %d children, want 1", len(doc.Page.Children))
	}
	if geometry.Collides(&first.Bounds, &second.Bounds) && second.Placement.Zone.Verified() {
		t.Errorf("second showcase %v overlaps the first %v", second.Bounds, first.Bounds)
	}
}

func TestRender(t *testing.T) {
	s := Build(styledDoc(), DefaultOptions())

	var buf bytes.Buffer
	if err := Render(&buf, s); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	wantW := int(s.Bounds.Width + 2*shadowMargin)
	if img.Bounds().Dx() != wantW {
		t.Errorf("width = %d, want %d", img.Bounds().Dx(), wantW)
	}

	// Centre of the first swatch is the first style colour.
	card := s.Frame.Children[2].Children[0].Children[0].Children[0].AbsoluteBoundingBox
	px := int(card.X - s.Bounds.X + shadowMargin + card.Width/2)
	py := int(card.Y - s.Bounds.Y + shadowMargin + card.Height/2)
	r, g, b, _ := img.At(px, py).RGBA()
	if r>>8 > 5 || g>>8 < 95 || g>>8 > 110 || b>>8 < 250 {
		t.Errorf("swatch pixel = (%d, %d, %d), want about (0, 102, 255)", r>>8, g>>8, b>>8)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := RenderImage(nil, 1); err == nil {
		t.Error("expected error for nil showcase")
	}
	if _, err := RenderImage(&Showcase{}, 1); err == nil {
		t.Error("expected error for showcase without frame")
	}
}

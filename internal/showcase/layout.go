package showcase

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/figaid/internal/colour"
	"github.com/jmylchreest/figaid/internal/document"
	"github.com/jmylchreest/figaid/internal/geometry"
	"github.com/jmylchreest/figaid/internal/placement"
)

// Layout measurements, in canvas units.
const (
	FramePadding  = 40.0
	ItemSpacing   = 32.0
	ContentWidth  = 720.0
	HeaderHeight  = 60.0
	HeaderSpacing = 8.0
	DividerHeight = 1.0
	GridGap       = 12.0
	CardWidth     = 170.0
	CardHeight    = 140.0
	SwatchHeight  = 90.0
	InfoPadding   = 12.0
	InfoSpacing   = 4.0
	LabelHeight   = 20.0
	FrameRadius   = 16.0
	CardRadius    = 12.0

	TitleSize    = 32.0
	SubtitleSize = 14.0
	LabelSize    = 12.0
	HexSize      = 11.0
	NoteSize     = 14.0
	TipSize      = 12.0

	// MaxLabelLength is the number of characters kept before a label is
	// truncated with "...".
	MaxLabelLength = 22
)

// Default size used to search for free space. The real frame is sized by
// its content, which is only known once it has been laid out.
const (
	DefaultEstimateWidth  = 850.0
	DefaultEstimateHeight = 400.0
)

const fontFamily = "Inter"

// Options configures collection and layout.
type Options struct {
	// Library filters library collections by name. Defaults to DefaultLibrary.
	Library string

	// Title overrides the header title ("<Library> Color Library").
	Title string

	// EstimateWidth and EstimateHeight are the size passed to the placement
	// finder unless UseMeasuredSize is set.
	EstimateWidth  float64
	EstimateHeight float64

	// UseMeasuredSize places the frame using its laid out size instead of
	// the estimate.
	UseMeasuredSize bool

	Placement placement.Options
	Logger    hclog.Logger
}

// DefaultOptions returns the standard showcase options.
func DefaultOptions() Options {
	return Options{
		Library:        DefaultLibrary,
		EstimateWidth:  DefaultEstimateWidth,
		EstimateHeight: DefaultEstimateHeight,
		Placement:      placement.DefaultOptions(),
	}
}

func (o Options) withDefaults() Options {
	if o.Library == "" {
		o.Library = DefaultLibrary
	}
	if o.Title == "" {
		o.Title = o.Library + " Color Library"
	}
	if o.EstimateWidth <= 0 {
		o.EstimateWidth = DefaultEstimateWidth
	}
	if o.EstimateHeight <= 0 {
		o.EstimateHeight = DefaultEstimateHeight
	}
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}
	if o.Placement == (placement.Options{}) {
		o.Placement = placement.DefaultOptions()
	}
	if o.Placement.Logger == nil {
		o.Placement.Logger = o.Logger.Named("placement")
	}
	return o
}

// Showcase is a laid out colour showcase ready to be added to a document.
type Showcase struct {
	Title     string           `json:"title"`
	Subtitle  string           `json:"subtitle"`
	Count     int              `json:"count"`
	Swatches  []Swatch         `json:"swatches"`
	Note      string           `json:"note,omitempty"`
	Tip       string           `json:"tip,omitempty"`
	Placement placement.Result `json:"placement"`
	Bounds    geometry.Rect    `json:"bounds"`
	Frame     *document.Node   `json:"frame"`
}

// Subtitle returns the header subtitle for count colours.
func Subtitle(count int) string {
	return fmt.Sprintf("Displaying %d colors from your design system", count)
}

// Build collects the document's colours, lays them out and places the frame
// in clear space on the page.
func Build(doc *document.Document, opts Options) *Showcase {
	opts = opts.withDefaults()
	coll := Collect(doc, opts)

	w, h := opts.EstimateWidth, opts.EstimateHeight
	if opts.UseMeasuredSize {
		measured := newLayout(opts, coll).frame(0, 0).AbsoluteBoundingBox
		w, h = measured.Width, measured.Height
	}

	occupied := doc.OccupiedRegions()
	res := placement.NewFinder(opts.Placement).Find(w, h, occupied)
	opts.Logger.Debug("placed showcase", "x", res.X, "y", res.Y, "zone", res.Zone, "occupied", len(occupied))

	frame := newLayout(opts, coll).frame(res.X, res.Y)

	return &Showcase{
		Title:     opts.Title,
		Subtitle:  Subtitle(len(coll.Swatches)),
		Count:     len(coll.Swatches),
		Swatches:  coll.Swatches,
		Note:      coll.Note,
		Tip:       coll.Tip,
		Placement: res,
		Bounds:    *frame.AbsoluteBoundingBox,
		Frame:     frame,
	}
}

// Node returns the showcase as a document node.
func (s *Showcase) Node() *document.Node {
	return s.Frame
}

// Apply appends the showcase frame to the document's page.
func (s *Showcase) Apply(doc *document.Document) {
	doc.Append(s.Frame)
}

// Columns is the number of cards per grid row.
func Columns() int {
	span := ContentWidth + GridGap
	return int(math.Floor(span / (CardWidth + GridGap)))
}

// GridHeight returns the height of a grid holding n cards.
func GridHeight(n int) float64 {
	if n <= 0 {
		return 0
	}
	rows := (n + Columns() - 1) / Columns()
	return float64(rows)*CardHeight + float64(rows-1)*GridGap
}

// TruncateLabel shortens names longer than MaxLabelLength characters.
func TruncateLabel(name string) string {
	r := []rune(name)
	if len(r) <= MaxLabelLength {
		return name
	}
	return string(r[:MaxLabelLength]) + "..."
}

func lineHeight(size float64) float64 {
	return math.Ceil(size * 1.2)
}

var (
	white       = colour.UnitRGB{R: 1, G: 1, B: 1}
	titleColour = colour.UnitRGB{R: 0.1, G: 0.1, B: 0.1}
	subColour   = colour.UnitRGB{R: 0.4, G: 0.4, B: 0.4}
	rule        = colour.UnitRGB{R: 0.9, G: 0.9, B: 0.9}
	hexColour   = colour.UnitRGB{R: 0.5, G: 0.5, B: 0.5}
	tipColour   = colour.UnitRGB{R: 0.3, G: 0.3, B: 0.3}
)

func solid(c colour.UnitRGB) []document.Paint {
	return []document.Paint{{Type: document.PaintSolid, Color: c}}
}

func rect(x, y, w, h float64) *geometry.Rect {
	r := geometry.NewRect(x, y, w, h)
	return &r
}

type layout struct {
	opts Options
	coll Collection
	id   string
	seq  int
}

func newLayout(opts Options, coll Collection) *layout {
	return &layout{opts: opts, coll: coll, id: uuid.NewString()}
}

func (l *layout) nextID() string {
	l.seq++
	return fmt.Sprintf("%s:%d", l.id, l.seq)
}

func (l *layout) box(name string, r *geometry.Rect, fills []document.Paint, children ...*document.Node) *document.Node {
	return &document.Node{
		ID:                  l.nextID(),
		Name:                name,
		Type:                document.TypeFrame,
		AbsoluteBoundingBox: r,
		Fills:               fills,
		Children:            children,
	}
}

func (l *layout) text(name, chars string, x, y, w, size float64, style string, c colour.UnitRGB) *document.Node {
	lines := strings.Count(chars, "\n") + 1
	return &document.Node{
		ID:                  l.nextID(),
		Name:                name,
		Type:                document.TypeText,
		Characters:          chars,
		FontSize:            size,
		FontName:            &document.FontName{Family: fontFamily, Style: style},
		AbsoluteBoundingBox: rect(x, y, w, float64(lines)*lineHeight(size)),
		Fills:               solid(c),
	}
}

func (l *layout) frame(x, y float64) *document.Node {
	root := &document.Node{
		ID:           l.id,
		Name:         l.opts.Library + " Color Showcase",
		Type:         document.TypeFrame,
		Fills:        solid(white),
		CornerRadius: FrameRadius,
		Effects: []document.Effect{{
			Type:    document.EffectDropShadow,
			Color:   colour.UnitRGB{A: 0.08},
			OffsetY: 4,
			Radius:  24,
		}},
	}

	cx, cy := x+FramePadding, y+FramePadding

	title := l.text("Title", l.opts.Title, cx, cy, ContentWidth, TitleSize, "Bold", titleColour)
	subtitle := l.text("Subtitle", Subtitle(len(l.coll.Swatches)), cx,
		cy+title.AbsoluteBoundingBox.Height+HeaderSpacing, ContentWidth, SubtitleSize, "Regular", subColour)
	opacity := 0.8
	subtitle.Opacity = &opacity
	root.Children = append(root.Children, l.box("Header", rect(cx, cy, ContentWidth, HeaderHeight), nil, title, subtitle))
	cy += HeaderHeight + ItemSpacing

	root.Children = append(root.Children, l.box("Divider", rect(cx, cy, ContentWidth, DividerHeight), solid(rule)))
	cy += DividerHeight + ItemSpacing

	gridHeight := GridHeight(len(l.coll.Swatches))
	grid := l.box("Color Grid", rect(cx, cy, ContentWidth, gridHeight), nil)
	for i, sw := range l.coll.Swatches {
		col, row := i%Columns(), i/Columns()
		grid.Children = append(grid.Children, l.card(sw,
			cx+float64(col)*(CardWidth+GridGap),
			cy+float64(row)*(CardHeight+GridGap)))
	}
	root.Children = append(root.Children, l.box("Sections", rect(cx, cy, ContentWidth, gridHeight), nil, grid))
	cy += gridHeight

	if l.coll.Note != "" {
		cy += ItemSpacing
		note := l.text("Note", l.coll.Note, cx, cy, ContentWidth, NoteSize, "Regular", hexColour)
		root.Children = append(root.Children, note)
		cy += note.AbsoluteBoundingBox.Height
	}

	if l.coll.Tip != "" {
		cy += ItemSpacing
		tip := l.text("Tip", l.coll.Tip, cx, cy, ContentWidth, TipSize, "Regular", tipColour)
		root.Children = append(root.Children, tip)
		cy += tip.AbsoluteBoundingBox.Height
	}

	cy += FramePadding
	root.AbsoluteBoundingBox = rect(x, y, ContentWidth+2*FramePadding, cy-y)
	return root
}

func (l *layout) card(sw Swatch, x, y float64) *document.Node {
	infoX, infoY := x+InfoPadding, y+SwatchHeight+InfoPadding
	textWidth := CardWidth - 2*InfoPadding

	label := l.text("Label", TruncateLabel(sw.Name), infoX, infoY, textWidth, LabelSize, "Medium", titleColour)
	label.AbsoluteBoundingBox.Height = LabelHeight
	hex := l.text("Hex", sw.Hex, infoX, infoY+LabelHeight+InfoSpacing, textWidth, HexSize, "Regular", hexColour)

	card := l.box(sw.Name, rect(x, y, CardWidth, CardHeight), solid(white),
		l.box("Swatch", rect(x, y, CardWidth, SwatchHeight), solid(sw.Color)),
		l.box("Info", rect(x, y+SwatchHeight, CardWidth, CardHeight-SwatchHeight), nil, label, hex),
	)
	card.CornerRadius = CardRadius
	card.Effects = []document.Effect{
		{Type: document.EffectDropShadow, Color: colour.UnitRGB{A: 0.04}, OffsetY: 1, Radius: 3},
		{Type: document.EffectDropShadow, Color: colour.UnitRGB{A: 0.06}, OffsetY: 4, Radius: 8},
	}
	return card
}

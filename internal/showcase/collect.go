// Package showcase builds a colour showcase frame from the colours available
// to a design document and finds a clear spot on the canvas for it.
package showcase

import (
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/figaid/internal/colour"
	"github.com/jmylchreest/figaid/internal/document"
)

// Source identifies where a swatch came from.
type Source string

const (
	SourceStyle    Source = "style"
	SourceVariable Source = "variable"
	SourceLibrary  Source = "library"
	SourceDocument Source = "document"
)

// KeyDecimals is the precision of the de-duplication key.
const KeyDecimals = 3

// DefaultLibrary is the library name filter used when none is configured.
const DefaultLibrary = "DS19"

// LibraryMarker prefixes the display name of library styles.
const LibraryMarker = "📚 "

// FallbackNote is shown when no styles or variables produced a swatch.
const FallbackNote = "No library colors loaded. Showing document colors:"

// Swatch is one colour card.
type Swatch struct {
	Name    string         `json:"name"`
	Color   colour.UnitRGB `json:"color"`
	Hex     string         `json:"hex"`
	Source  Source         `json:"source"`
	Library bool           `json:"library,omitempty"`
}

// Collection is the result of gathering swatches from a document.
type Collection struct {
	Swatches []Swatch `json:"swatches"`
	Note     string   `json:"note,omitempty"`
	Tip      string   `json:"tip,omitempty"`
}

// Tip explains how to make library colours available.
func Tip(library string) string {
	return "\nTip: To load " + library + " colors:\n" +
		"1. Open Assets panel (left sidebar)\n" +
		"2. Find " + library + " library\n" +
		"3. Use a color from " + library + " in your design\n" +
		"4. Re-run this plugin"
}

type collector struct {
	seen     map[string]bool
	swatches []Swatch
	logger   hclog.Logger
}

func (c *collector) add(name string, col colour.UnitRGB, src Source, library bool) bool {
	key := col.Key(KeyDecimals)
	if c.seen[key] {
		c.logger.Trace("skipping duplicate colour", "name", name, "key", key)
		return false
	}
	c.seen[key] = true
	c.swatches = append(c.swatches, Swatch{
		Name:    name,
		Color:   col,
		Hex:     col.Hex(),
		Source:  src,
		Library: library,
	})
	return true
}

// Collect gathers unique swatches from paint styles, colour variables and
// matching library collections. When none of those yields a colour it falls
// back to the visible solid fills used in the document.
func Collect(doc *document.Document, opts Options) Collection {
	opts = opts.withDefaults()
	c := &collector{seen: make(map[string]bool), logger: opts.Logger}

	for _, style := range doc.PaintStyles {
		if len(style.Paints) == 0 || style.Paints[0].Type != document.PaintSolid {
			continue
		}
		name := style.Name
		if style.IsLibrary() {
			name = LibraryMarker + name
		}
		c.add(name, style.Paints[0].Color, SourceStyle, style.IsLibrary())
	}

	variables := doc.ColorVariables()
	for _, v := range variables {
		coll, ok := doc.Collection(v.VariableCollectionID)
		if !ok {
			opts.Logger.Debug("variable collection not found", "variable", v.Name, "collection", v.VariableCollectionID)
			continue
		}
		col, ok := document.ColorValue(v.ValuesByMode[coll.DefaultModeID])
		if !ok {
			continue
		}
		c.add(v.Name, col, SourceVariable, false)
	}

	for _, lib := range doc.LibraryCollections {
		if !strings.Contains(lib.LibraryName, opts.Library) {
			continue
		}
		opts.Logger.Debug("using library collection", "library", lib.LibraryName, "collection", lib.Name)
		for _, v := range lib.Variables {
			if v.ResolvedType != "" && v.ResolvedType != "COLOR" {
				continue
			}
			if col, ok := firstColorValue(v.ValuesByMode); ok {
				c.add(v.Name, col, SourceLibrary, true)
			}
		}
	}

	out := Collection{}
	if len(c.swatches) == 0 {
		out.Note = FallbackNote
		for _, n := range doc.FindAll(func(n *document.Node) bool { return len(n.Fills) > 0 }) {
			for _, fill := range n.Fills {
				if !fill.IsVisibleSolid() {
					continue
				}
				name := n.Name
				if name == "" {
					name = "Document Color"
				}
				c.add(name, fill.Color, SourceDocument, false)
			}
		}
	}

	if len(doc.PaintStyles) == 0 && len(variables) == 0 {
		out.Tip = Tip(opts.Library)
	}

	out.Swatches = c.swatches
	opts.Logger.Debug("collected swatches", "count", len(out.Swatches), "fallback", out.Note != "")
	return out
}

// firstColorValue returns the colour of the first mode, in mode ID order,
// that holds one.
func firstColorValue(values map[string]any) (colour.UnitRGB, bool) {
	modes := make([]string, 0, len(values))
	for m := range values {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	for _, m := range modes {
		if col, ok := document.ColorValue(values[m]); ok {
			return col, true
		}
	}
	return colour.UnitRGB{}, false
}

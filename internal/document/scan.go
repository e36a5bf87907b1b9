package document

import (
	"fmt"
	"sort"

	"github.com/jmylchreest/figaid/internal/geometry"
)

// OccupiedRegions returns the regions covered by the visible top-level
// children of the page, in page order. Hidden nodes and nodes without
// geometry are skipped. Duplicate IDs are reported once.
func (d *Document) OccupiedRegions() []geometry.Region {
	seen := make(map[string]bool, len(d.Page.Children))
	regions := make([]geometry.Region, 0, len(d.Page.Children))
	for _, n := range d.Page.Children {
		if n == nil || !n.IsVisible() {
			continue
		}
		b := n.Bounds()
		if b == nil {
			continue
		}
		if n.ID != "" {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
		}
		regions = append(regions, geometry.NewRegion(n.Name, *b))
	}
	return regions
}

// Walk visits every node of the page depth-first in document order.
// Returning false from fn skips the node's children.
func (d *Document) Walk(fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(d.Page.Children, 0)
}

// FindAll returns every node below the page for which pred is true.
func (d *Document) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	d.Walk(func(n *Node, _ int) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Append adds a node to the top level of the page.
func (d *Document) Append(n *Node) {
	d.Page.Children = append(d.Page.Children, n)
}

// Instance describes a component instance found during a scan.
type Instance struct {
	Name            string         `json:"name"`
	MainComponentID string         `json:"mainComponentId,omitempty"`
	Bounds          *geometry.Rect `json:"bounds,omitempty"`
}

// LibraryElement describes a node imported from a library.
type LibraryElement struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
}

// Analysis summarises the page.
type Analysis struct {
	TotalElements      int               `json:"totalElements"`
	ElementTypes       map[string]int    `json:"elementTypes"`
	ColorPalette       map[string]int    `json:"colorPalette"`
	TextStyles         map[string]int    `json:"textStyles"`
	ComponentInstances []Instance        `json:"componentInstances"`
	LibraryElements    []LibraryElement  `json:"libraryElements"`
	SpatialZones       []geometry.Region `json:"spatialZones"`
}

// Scan walks the page and builds an Analysis. Solid fills are counted by a
// two-decimal colour key. Spatial zones are the four quadrants of the
// viewport.
func (d *Document) Scan() *Analysis {
	a := &Analysis{
		ElementTypes:       make(map[string]int),
		ColorPalette:       make(map[string]int),
		TextStyles:         make(map[string]int),
		ComponentInstances: []Instance{},
		LibraryElements:    []LibraryElement{},
	}

	d.Walk(func(n *Node, _ int) bool {
		a.TotalElements++
		a.ElementTypes[n.Type]++

		for _, fill := range n.Fills {
			if fill.Type == PaintSolid {
				a.ColorPalette[fill.Color.Key(2)]++
			}
		}

		if n.Type == TypeText {
			a.TextStyles[textStyleKey(n)]++
		}

		if n.Type == TypeInstance {
			a.ComponentInstances = append(a.ComponentInstances, Instance{
				Name:            n.Name,
				MainComponentID: n.MainComponentID,
				Bounds:          n.AbsoluteBoundingBox,
			})
		}

		if n.Remote {
			a.LibraryElements = append(a.LibraryElements, LibraryElement{
				Name: n.Name,
				Type: n.Type,
				Key:  n.Key,
			})
		}
		return true
	})

	a.SpatialZones = Quadrants(d.Viewport.Bounds)
	return a
}

func textStyleKey(n *Node) string {
	family, style := "", ""
	if n.FontName != nil {
		family, style = n.FontName.Family, n.FontName.Style
	}
	return fmt.Sprintf("%g-%s-%s", n.FontSize, family, style)
}

// Quadrants splits a rectangle into top-left, top-right, bottom-left and
// bottom-right halves.
func Quadrants(r geometry.Rect) []geometry.Region {
	w, h := r.Width/2, r.Height/2
	return []geometry.Region{
		geometry.NewRegion("top-left", geometry.NewRect(r.X, r.Y, w, h)),
		geometry.NewRegion("top-right", geometry.NewRect(r.X+w, r.Y, w, h)),
		geometry.NewRegion("bottom-left", geometry.NewRect(r.X, r.Y+h, w, h)),
		geometry.NewRegion("bottom-right", geometry.NewRect(r.X+w, r.Y+h, w, h)),
	}
}

// TypeCount is an element type and how often it occurs.
type TypeCount struct {
	Type  string
	Count int
}

// SortedTypes returns the element type counts ordered by count descending,
// then by type name.
func (a *Analysis) SortedTypes() []TypeCount {
	out := make([]TypeCount, 0, len(a.ElementTypes))
	for t, c := range a.ElementTypes {
		out = append(out, TypeCount{Type: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

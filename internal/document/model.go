// Package document models a snapshot of a design document exported from the
// host design tool: the current page's node tree, the viewport, and the
// paint styles and colour variables available to the file.
package document

import (
	"github.com/jmylchreest/figaid/internal/colour"
	"github.com/jmylchreest/figaid/internal/geometry"
)

// Node types used by the scanner and the showcase builder.
const (
	TypeFrame     = "FRAME"
	TypeText      = "TEXT"
	TypeInstance  = "INSTANCE"
	TypeRectangle = "RECTANGLE"
)

// PaintSolid is the only paint type that carries a single colour.
const PaintSolid = "SOLID"

// Document is a read-only snapshot of the host document.
type Document struct {
	Name               string               `json:"name" yaml:"name"`
	Page               Page                 `json:"page" yaml:"page"`
	Viewport           Viewport             `json:"viewport" yaml:"viewport"`
	PaintStyles        []PaintStyle         `json:"paintStyles,omitempty" yaml:"paintStyles,omitempty"`
	Variables          []Variable           `json:"variables,omitempty" yaml:"variables,omitempty"`
	Collections        []VariableCollection `json:"collections,omitempty" yaml:"collections,omitempty"`
	LibraryCollections []LibraryCollection  `json:"libraryCollections,omitempty" yaml:"libraryCollections,omitempty"`
}

// Page is the current page of the document.
type Page struct {
	Name     string  `json:"name" yaml:"name"`
	Children []*Node `json:"children" yaml:"children"`
}

// Viewport describes the visible part of the canvas.
type Viewport struct {
	Bounds geometry.Rect `json:"bounds" yaml:"bounds"`
	Zoom   float64       `json:"zoom,omitempty" yaml:"zoom,omitempty"`
}

// FontName identifies a font family and style.
type FontName struct {
	Family string `json:"family" yaml:"family"`
	Style  string `json:"style" yaml:"style"`
}

// Paint is a single fill entry.
type Paint struct {
	Type    string         `json:"type" yaml:"type"`
	Color   colour.UnitRGB `json:"color" yaml:"color"`
	Visible *bool          `json:"visible,omitempty" yaml:"visible,omitempty"`
	Opacity *float64       `json:"opacity,omitempty" yaml:"opacity,omitempty"`
}

// IsVisibleSolid reports whether the paint is a solid colour that is not hidden.
func (p Paint) IsVisibleSolid() bool {
	return p.Type == PaintSolid && (p.Visible == nil || *p.Visible)
}

// Effect is a visual effect such as a drop shadow.
type Effect struct {
	Type    string         `json:"type" yaml:"type"`
	Color   colour.UnitRGB `json:"color" yaml:"color"`
	OffsetX float64        `json:"offsetX,omitempty" yaml:"offsetX,omitempty"`
	OffsetY float64        `json:"offsetY,omitempty" yaml:"offsetY,omitempty"`
	Radius  float64        `json:"radius,omitempty" yaml:"radius,omitempty"`
	Spread  float64        `json:"spread,omitempty" yaml:"spread,omitempty"`
}

// EffectDropShadow is the only effect type the renderer draws.
const EffectDropShadow = "DROP_SHADOW"

// Node is an element of the page tree.
type Node struct {
	ID                   string         `json:"id" yaml:"id"`
	Name                 string         `json:"name" yaml:"name"`
	Type                 string         `json:"type" yaml:"type"`
	Visible              *bool          `json:"visible,omitempty" yaml:"visible,omitempty"`
	AbsoluteBoundingBox  *geometry.Rect `json:"absoluteBoundingBox,omitempty" yaml:"absoluteBoundingBox,omitempty"`
	AbsoluteRenderBounds *geometry.Rect `json:"absoluteRenderBounds,omitempty" yaml:"absoluteRenderBounds,omitempty"`
	Fills                []Paint        `json:"fills,omitempty" yaml:"fills,omitempty"`
	CornerRadius         float64        `json:"cornerRadius,omitempty" yaml:"cornerRadius,omitempty"`
	Opacity              *float64       `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	Effects              []Effect       `json:"effects,omitempty" yaml:"effects,omitempty"`
	FontSize             float64        `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontName             *FontName      `json:"fontName,omitempty" yaml:"fontName,omitempty"`
	Characters           string         `json:"characters,omitempty" yaml:"characters,omitempty"`
	Remote               bool           `json:"remote,omitempty" yaml:"remote,omitempty"`
	Key                  string         `json:"key,omitempty" yaml:"key,omitempty"`
	MainComponentID      string         `json:"mainComponentId,omitempty" yaml:"mainComponentId,omitempty"`
	Children             []*Node        `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsVisible reports whether the node is not explicitly hidden.
func (n *Node) IsVisible() bool {
	return n.Visible == nil || *n.Visible
}

// Bounds returns the most precise bounds available: render bounds when
// present, otherwise the bounding box. It returns nil when the node has no
// geometry.
func (n *Node) Bounds() *geometry.Rect {
	if n.AbsoluteRenderBounds != nil {
		return n.AbsoluteRenderBounds
	}
	return n.AbsoluteBoundingBox
}

// PaintStyle is a named paint style, local or imported from a library.
type PaintStyle struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Key    string  `json:"key,omitempty" yaml:"key,omitempty"`
	Remote bool    `json:"remote,omitempty" yaml:"remote,omitempty"`
	Paints []Paint `json:"paints,omitempty" yaml:"paints,omitempty"`
}

// IsLibrary reports whether the style comes from a library.
func (s PaintStyle) IsLibrary() bool {
	return s.Key != ""
}

// Variable is a design variable. Only COLOR variables are used by figaid.
type Variable struct {
	ID                   string         `json:"id" yaml:"id"`
	Name                 string         `json:"name" yaml:"name"`
	ResolvedType         string         `json:"resolvedType" yaml:"resolvedType"`
	VariableCollectionID string         `json:"variableCollectionId" yaml:"variableCollectionId"`
	ValuesByMode         map[string]any `json:"valuesByMode" yaml:"valuesByMode"`
}

// VariableCollection groups variables and defines their modes.
type VariableCollection struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	DefaultModeID string `json:"defaultModeId" yaml:"defaultModeId"`
}

// LibraryCollection is a variable collection published by a team library.
type LibraryCollection struct {
	Key         string     `json:"key" yaml:"key"`
	Name        string     `json:"name" yaml:"name"`
	LibraryName string     `json:"libraryName" yaml:"libraryName"`
	Variables   []Variable `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// ColorValue decodes a variable mode value into a colour. Values must be
// objects carrying at least r, g and b.
func ColorValue(v any) (colour.UnitRGB, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return colour.UnitRGB{}, false
	}

	var out colour.UnitRGB
	channels := []struct {
		key string
		dst *float64
	}{{"r", &out.R}, {"g", &out.G}, {"b", &out.B}}
	for _, ch := range channels {
		f, ok := toFloat(m[ch.key])
		if !ok {
			return colour.UnitRGB{}, false
		}
		*ch.dst = f
	}
	if a, ok := toFloat(m["a"]); ok {
		out.A = a
	}
	return out, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Collection returns the collection with the given ID.
func (d *Document) Collection(id string) (VariableCollection, bool) {
	for _, c := range d.Collections {
		if c.ID == id {
			return c, true
		}
	}
	return VariableCollection{}, false
}

// ColorVariables returns the document's variables of type COLOR.
func (d *Document) ColorVariables() []Variable {
	var out []Variable
	for _, v := range d.Variables {
		if v.ResolvedType == "COLOR" {
			out = append(out, v)
		}
	}
	return out
}

package showcase

import (
	"fmt"
	"image"
	"io"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/jmylchreest/figaid/internal/colour"
	"github.com/jmylchreest/figaid/internal/document"
)

// shadowMargin leaves room around the frame for its drop shadow.
const shadowMargin = 32.0

// shadowSteps is the number of layers used to fake a blurred shadow.
const shadowSteps = 4

var (
	fontsOnce sync.Once
	fonts     map[string]*truetype.Font
	fontsErr  error
)

func loadFonts() (map[string]*truetype.Font, error) {
	fontsOnce.Do(func() {
		sources := map[string][]byte{
			"Regular": goregular.TTF,
			"Medium":  gomedium.TTF,
			"Bold":    gobold.TTF,
		}
		fonts = make(map[string]*truetype.Font, len(sources))
		for style, data := range sources {
			f, err := truetype.Parse(data)
			if err != nil {
				fontsErr = fmt.Errorf("failed to parse %s font: %w", style, err)
				return
			}
			fonts[style] = f
		}
	})
	return fonts, fontsErr
}

type renderer struct {
	dc     *gg.Context
	scale  float64
	ox, oy float64
	fonts  map[string]*truetype.Font
	faces  map[string]font.Face
}

// RenderImage draws the showcase frame. Scale multiplies the output size;
// values <= 0 mean 1.
func RenderImage(s *Showcase, scale float64) (image.Image, error) {
	if s == nil || s.Frame == nil || s.Frame.AbsoluteBoundingBox == nil {
		return nil, fmt.Errorf("showcase has no frame to render")
	}
	if scale <= 0 {
		scale = 1
	}

	f, err := loadFonts()
	if err != nil {
		return nil, err
	}

	b := s.Frame.AbsoluteBoundingBox
	w := int((b.Width + 2*shadowMargin) * scale)
	h := int((b.Height + 2*shadowMargin) * scale)

	r := &renderer{
		dc:    gg.NewContext(w, h),
		scale: scale,
		ox:    b.X - shadowMargin,
		oy:    b.Y - shadowMargin,
		fonts: f,
		faces: make(map[string]font.Face),
	}
	r.node(s.Frame, 1)
	return r.dc.Image(), nil
}

// Render writes the showcase as a PNG at scale 1.
func Render(w io.Writer, s *Showcase) error {
	img, err := RenderImage(s, 1)
	if err != nil {
		return err
	}
	return gg.NewContextForImage(img).EncodePNG(w)
}

// SavePNG renders the showcase to a PNG file.
func SavePNG(path string, s *Showcase, scale float64) error {
	img, err := RenderImage(s, scale)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func (r *renderer) xy(x, y float64) (float64, float64) {
	return (x - r.ox) * r.scale, (y - r.oy) * r.scale
}

func (r *renderer) face(style string, size float64) font.Face {
	key := fmt.Sprintf("%s/%g", style, size)
	if f, ok := r.faces[key]; ok {
		return f
	}
	ttf, ok := r.fonts[style]
	if !ok {
		ttf = r.fonts["Regular"]
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    size * r.scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[key] = f
	return f
}

func (r *renderer) setColour(c colour.UnitRGB, alpha float64) {
	r.dc.SetRGBA(c.R, c.G, c.B, alpha)
}

func (r *renderer) shape(x, y, w, h, radius float64) {
	if radius > 0 {
		r.dc.DrawRoundedRectangle(x, y, w, h, radius*r.scale)
		return
	}
	r.dc.DrawRectangle(x, y, w, h)
}

func (r *renderer) node(n *document.Node, opacity float64) {
	if n == nil || !n.IsVisible() {
		return
	}
	if n.Opacity != nil {
		opacity *= *n.Opacity
	}

	b := n.Bounds()
	if b != nil {
		x, y := r.xy(b.X, b.Y)
		w, h := b.Width*r.scale, b.Height*r.scale

		for _, e := range n.Effects {
			if e.Type == document.EffectDropShadow {
				r.shadow(e, x, y, w, h, n.CornerRadius, opacity)
			}
		}

		switch n.Type {
		case document.TypeText:
			r.text(n, x, y, opacity)
		default:
			for _, fill := range n.Fills {
				if !fill.IsVisibleSolid() {
					continue
				}
				alpha := opacity
				if fill.Opacity != nil {
					alpha *= *fill.Opacity
				}
				r.setColour(fill.Color, alpha)
				r.shape(x, y, w, h, n.CornerRadius)
				r.dc.Fill()
			}
		}
	}

	for _, child := range n.Children {
		r.node(child, opacity)
	}
}

func (r *renderer) shadow(e document.Effect, x, y, w, h, radius, opacity float64) {
	x += e.OffsetX * r.scale
	y += e.OffsetY * r.scale
	spread := e.Spread * r.scale
	x, y, w, h = x-spread, y-spread, w+2*spread, h+2*spread

	blur := e.Radius * r.scale
	base := e.Color.A * opacity / shadowSteps
	for i := 0; i < shadowSteps; i++ {
		grow := blur * float64(i) / shadowSteps
		alpha := base * (1 - float64(i)/shadowSteps)
		r.setColour(e.Color, alpha)
		r.shape(x-grow, y-grow, w+2*grow, h+2*grow, radius+grow/r.scale)
		r.dc.Fill()
	}
}

func (r *renderer) text(n *document.Node, x, y, opacity float64) {
	style := "Regular"
	if n.FontName != nil {
		style = n.FontName.Style
	}
	size := n.FontSize
	if size <= 0 {
		size = 12
	}
	r.dc.SetFontFace(r.face(style, size))

	c := colour.UnitRGB{}
	for _, fill := range n.Fills {
		if fill.IsVisibleSolid() {
			c = fill.Color
			break
		}
	}
	r.setColour(c, opacity)

	lh := lineHeight(size) * r.scale
	for i, line := range strings.Split(n.Characters, "\n") {
		r.dc.DrawStringAnchored(line, x, y+float64(i)*lh, 0, 1)
	}
}

package render

import (
	"bytes"
	"image/color"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/matzehuels/graphypad/pkg/chart"
	"github.com/matzehuels/graphypad/pkg/errors"
)

const (
	// MaxDPI bounds the raster resolution.
	MaxDPI = 600.0
	// maxPixels bounds the canvas allocation of one render.
	maxPixels = 1 << 26
)

// surface is the raster canvas owned by a single render call. It is acquired
// at the start of the call and released on every exit path.
type surface struct {
	img *vgimg.Canvas
}

func acquire(fig chart.Figure, background color.Color) (*surface, error) {
	if !(fig.Width > 0) || !(fig.Height > 0) || !(fig.DPI > 0) || fig.DPI > MaxDPI {
		return nil, errors.Render(errors.ErrCodeRenderCanvas, "canvas", "",
			"invalid figure %gx%g in at %g dpi", fig.Width, fig.Height, fig.DPI)
	}
	if px := fig.Width * fig.DPI * fig.Height * fig.DPI; px > maxPixels {
		return nil, errors.Render(errors.ErrCodeRenderCanvas, "canvas", "",
			"figure %gx%g in at %g dpi is too large (%.0f pixels)", fig.Width, fig.Height, fig.DPI, px)
	}

	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(fig.Width)*vg.Inch, vg.Length(fig.Height)*vg.Inch),
		vgimg.UseDPI(int(math.Round(fig.DPI))),
		vgimg.UseBackgroundColor(background),
	)
	return &surface{img: img}, nil
}

func (s *surface) canvas() draw.Canvas { return draw.New(s.img) }

func (s *surface) encode() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: s.img}).WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderCanvas, err, "encode png")
	}
	return buf.Bytes(), nil
}

func (s *surface) release() { s.img = nil }

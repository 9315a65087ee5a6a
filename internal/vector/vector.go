// Package vector rasterizes SVG documents.
package vector

import (
	"bytes"
	"image"
	"image/png"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"toolbox/internal/imaging"
	"toolbox/internal/pdfkit"
	"toolbox/internal/services"
)

const (
	// Browser default size for an SVG without usable dimensions.
	fallbackWidth  = 300
	fallbackHeight = 150
	maxDimension   = 8192
)

// Rasterizer renders SVG documents at their intrinsic size.
type Rasterizer struct{}

// NewRasterizer returns a Rasterizer.
func NewRasterizer() Rasterizer { return Rasterizer{} }

// Rasterize parses data as SVG and draws it onto a transparent RGBA canvas
// sized from the document's viewBox.
func (Rasterizer) Rasterize(data []byte) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "vector", "parse svg", "", err)
	}
	w, h := dimensions(icon.ViewBox.W, icon.ViewBox.H)
	icon.SetTarget(0, 0, float64(w), float64(h))

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, canvas, canvas.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return canvas, nil
}

// SVGToPNG rasterizes data and encodes the result as PNG.
func (r Rasterizer) SVGToPNG(data []byte) ([]byte, error) {
	img, err := r.Rasterize(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "vector", "encode png", "", err)
	}
	return buf.Bytes(), nil
}

// SVGToPDF rasterizes data, flattens it onto white, and wraps the result in
// a single-page PDF sized to the raster.
func (r Rasterizer) SVGToPDF(data []byte) ([]byte, error) {
	img, err := r.Rasterize(data)
	if err != nil {
		return nil, err
	}
	return pdfkit.ImagePage(imaging.ConvertColorMode(img, imaging.ModeRGB))
}

func dimensions(w, h float64) (int, int) {
	if w <= 0 || h <= 0 || math.IsNaN(w) || math.IsNaN(h) {
		return fallbackWidth, fallbackHeight
	}
	width := int(math.Ceil(w))
	height := int(math.Ceil(h))
	if width > maxDimension || height > maxDimension {
		scale := float64(maxDimension) / math.Max(w, h)
		width = max(1, int(math.Ceil(w*scale)))
		height = max(1, int(math.Ceil(h*scale)))
	}
	return width, height
}

package pdfkit

import (
	"bytes"
	"image"
	"image/png"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"toolbox/internal/services"
)

// A4 portrait in PDF points.
const (
	pageWidthA4  = 595.28
	pageHeightA4 = 841.89
)

// TextOptions controls how text pages are laid out.
type TextOptions struct {
	OriginX    float64
	OriginY    float64
	FontSize   float64
	LineHeight float64
}

// DefaultTextOptions places text one inch from the top-left corner.
func DefaultTextOptions() TextOptions {
	return TextOptions{OriginX: 72, OriginY: 72, FontSize: 11, LineHeight: 14}
}

// ImagePage returns a one-page PDF whose page size equals the image's pixel
// dimensions in points, with the image drawn to fill it.
func ImagePage(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	if w <= 0 || h <= 0 {
		return nil, services.Wrap(services.ErrConversionTool, "pdfkit", "image page", "image has no pixels", nil)
	}

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "pdfkit", "image page", "encode png", err)
	}

	pdf := newDocument(w, h)
	pdf.AddPage()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("page", opts, &encoded)
	pdf.ImageOptions("page", 0, 0, w, h, false, opts, 0, "")
	return output(pdf, "image page")
}

// TextPage returns a one-page A4 PDF with text drawn line by line starting at
// the configured origin. Lines are not wrapped and text running past the
// bottom edge is clipped. Characters the built-in font cannot show are
// replaced with '?'.
func TextPage(text string, opts TextOptions) ([]byte, error) {
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultTextOptions().FontSize
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = DefaultTextOptions().LineHeight
	}

	pdf := newDocument(pageWidthA4, pageHeightA4)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", opts.FontSize)
	y := opts.OriginY
	for _, line := range splitLines(text) {
		if line != "" {
			pdf.Text(opts.OriginX, y, toWinAnsi(line))
		}
		y += opts.LineHeight
	}
	return output(pdf, "text page")
}

func newDocument(w, h float64) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("toolbox", true)
	return pdf
}

func output(pdf *fpdf.Fpdf, op string) ([]byte, error) {
	if err := pdf.Error(); err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "pdfkit", op, "", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "pdfkit", op, "serialize", err)
	}
	return buf.Bytes(), nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	return strings.Split(text, "\n")
}

// toWinAnsi maps s onto the Windows-1252 bytes the core PDF fonts expect.
func toWinAnsi(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range strings.ToValidUTF8(s, "?") {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return string(out)
}

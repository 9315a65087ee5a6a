package pdfkit

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"toolbox/internal/imaging"
	"toolbox/internal/services"
)

// NativeDPI renders pages at one pixel per PDF point.
const NativeDPI = 72

// Document is an opened PDF. Close must be called when done.
type Document struct {
	doc       *fitz.Document
	maxPixels int64
}

// Option configures an opened Document.
type Option func(*Document)

// WithMaxPixels bounds the pixel area RenderPage will allocate for one page.
// Zero keeps imaging.DefaultMaxPixels.
func WithMaxPixels(n int64) Option {
	return func(d *Document) {
		if n > 0 {
			d.maxPixels = n
		}
	}
}

// Open parses data as a PDF document.
func Open(data []byte, opts ...Option) (*Document, error) {
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrConversionTool, "pdfkit", "open", "empty document", nil)
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "pdfkit", "open", "", err)
	}
	d := &Document{doc: doc, maxPixels: imaging.DefaultMaxPixels}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.doc.NumPage()
}

// RenderPage rasterizes the 0-based page at native resolution. Pages whose
// pixel area exceeds the document's limit are rejected before rendering.
func (d *Document) RenderPage(page int) (image.Image, error) {
	if err := d.checkPage(page); err != nil {
		return nil, err
	}
	bounds, err := d.doc.Bound(page)
	if err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "pdfkit", "render page", fmt.Sprintf("page %d bounds", page+1), err)
	}
	if err := imaging.CheckDimensions(bounds.Dx(), bounds.Dy(), d.maxPixels); err != nil {
		return nil, err
	}
	img, err := d.doc.ImageDPI(page, NativeDPI)
	if err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "pdfkit", "render page", fmt.Sprintf("page %d", page+1), err)
	}
	return img, nil
}

// PageText extracts the plain text of the 0-based page.
func (d *Document) PageText(page int) (string, error) {
	if err := d.checkPage(page); err != nil {
		return "", err
	}
	text, err := d.doc.Text(page)
	if err != nil {
		return "", services.Wrap(services.ErrConversionTool, "pdfkit", "extract text", fmt.Sprintf("page %d", page+1), err)
	}
	return text, nil
}

// Close releases the underlying MuPDF document.
func (d *Document) Close() error {
	if d == nil || d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}

func (d *Document) checkPage(page int) error {
	if page < 0 || page >= d.PageCount() {
		return services.Wrap(services.ErrValidation, "pdfkit", "page", fmt.Sprintf("page %d out of range", page+1), nil)
	}
	return nil
}

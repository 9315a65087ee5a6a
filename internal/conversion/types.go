package conversion

import (
	"context"
	"fmt"
	"image"

	"toolbox/internal/format"
	"toolbox/internal/imaging"
)

// UploadedFile is one client-supplied input.
type UploadedFile struct {
	Name string
	Data []byte
}

// Blob is one named output entry.
type Blob struct {
	Name string
	Data []byte
}

// Unit is everything produced from a single input file. Blobs is empty when
// the file was skipped.
type Unit struct {
	Index  int
	Source string
	Kind   format.SourceKind
	Blobs  []Blob
}

// Skipped reports whether the input contributed no output.
func (u Unit) Skipped() bool { return len(u.Blobs) == 0 }

// BatchResult holds one Unit per input file, in input order.
type BatchResult struct {
	Target format.Target
	Units  []Unit
}

// Blobs flattens every unit's output in batch order.
func (r BatchResult) Blobs() []Blob {
	var out []Blob
	for _, unit := range r.Units {
		out = append(out, unit.Blobs...)
	}
	return out
}

// Skipped counts inputs that contributed no output.
func (r BatchResult) Skipped() int {
	n := 0
	for _, unit := range r.Units {
		if unit.Skipped() {
			n++
		}
	}
	return n
}

// Input is a classified file handed to a family converter.
type Input struct {
	Index  int
	Name   string
	Kind   format.SourceKind
	Data   []byte
	Target format.Target
}

// Ext returns the lower-cased extension of the original file name.
func (in Input) Ext() string { return format.Extension(in.Name) }

// FileName names a per-file output entry.
func FileName(index int, ext string) string {
	return fmt.Sprintf("file_%d.%s", index, ext)
}

// PageName names an output entry rendered from one page of a PDF input.
func PageName(index, page int, ext string) string {
	return fmt.Sprintf("file_%d_page_%d.%s", index, page, ext)
}

// Converter produces the output of one input file. A nil slice with a nil
// error means the input kind has no rule in this family.
type Converter interface {
	Convert(ctx context.Context, in Input) ([]Blob, error)
}

// ImageCodec decodes, re-encodes, and normalizes raster images.
type ImageCodec interface {
	Decode(data []byte) (image.Image, error)
	Encode(img image.Image, format string) ([]byte, error)
	ConvertColorMode(img image.Image, mode imaging.ColorMode) image.Image
}

// PDFDocument is an opened PDF addressed by 0-based page index.
type PDFDocument interface {
	PageCount() int
	RenderPage(page int) (image.Image, error)
	PageText(page int) (string, error)
	Close() error
}

// PDFToolkit opens, builds, and merges PDF documents.
type PDFToolkit interface {
	Open(data []byte) (PDFDocument, error)
	ImagePage(img image.Image) ([]byte, error)
	TextPage(text string) ([]byte, error)
	Merge(sections [][]byte) ([]byte, error)
}

// VectorRasterizer renders SVG documents.
type VectorRasterizer interface {
	SVGToPNG(data []byte) ([]byte, error)
	SVGToPDF(data []byte) ([]byte, error)
}

// DocxTranscoder converts a PDF file on disk into a DOCX file on disk.
type DocxTranscoder interface {
	PDFToDOCX(ctx context.Context, inputPath, outputPath string) error
}

// TempFiles hands out scratch paths that are removed when body returns.
type TempFiles interface {
	WithTempFile(suffix string, body func(path string) error) error
}

// Package packager assembles a conversion batch into the single artifact
// returned to the caller: a merged PDF for the pdf family and a ZIP archive
// for every other family.
package packager

import (
	"bytes"
	"time"

	"github.com/klauspost/compress/zip"

	"toolbox/internal/conversion"
	"toolbox/internal/format"
	"toolbox/internal/services"
)

// Content types of the produced artifacts.
const (
	ContentTypePDF = "application/pdf"
	ContentTypeZIP = "application/zip"
)

// Download names per family.
const (
	NamePDF    = "converted.pdf"
	NameImages = "converted_images.zip"
	NameDocs   = "converted_docs.zip"
	NameMedia  = "converted_media.zip"
)

// Artifact is the finished response body.
type Artifact struct {
	Data        []byte
	ContentType string
	Name        string
	Entries     int
}

// Merger concatenates PDF sections in order.
type Merger interface {
	Merge(sections [][]byte) ([]byte, error)
}

// Packager builds artifacts from batch results.
type Packager struct {
	merger Merger
	now    func() time.Time
}

// New returns a Packager that merges PDF sections with merger.
func New(merger Merger) *Packager {
	return &Packager{merger: merger, now: time.Now}
}

// Package assembles result for its target family. Archive entries keep
// batch order and the names the converters assigned.
func (p *Packager) Package(result conversion.BatchResult) (Artifact, error) {
	blobs := result.Blobs()
	switch result.Target.Family {
	case format.FamilyPDF:
		return p.pdf(blobs)
	case format.FamilyRaster:
		return p.archive(blobs, NameImages)
	case format.FamilyDocument:
		return p.archive(blobs, NameDocs)
	case format.FamilyMedia:
		return p.archive(blobs, NameMedia)
	default:
		return Artifact{}, services.Wrap(services.ErrUnsupportedTarget, "packager", "package", "unknown family "+result.Target.Family.String(), nil)
	}
}

func (p *Packager) pdf(blobs []conversion.Blob) (Artifact, error) {
	if len(blobs) == 0 {
		return Artifact{}, services.Wrap(services.ErrValidation, "packager", "merge", "no convertible files in batch", nil)
	}
	sections := make([][]byte, 0, len(blobs))
	for _, blob := range blobs {
		sections = append(sections, blob.Data)
	}
	merged, err := p.merger.Merge(sections)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Data: merged, ContentType: ContentTypePDF, Name: NamePDF, Entries: len(blobs)}, nil
}

func (p *Packager) archive(blobs []conversion.Blob, name string) (Artifact, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := p.now()
	for _, blob := range blobs {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     blob.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return Artifact{}, services.Wrap(services.ErrResource, "packager", "archive", blob.Name, err)
		}
		if _, err := w.Write(blob.Data); err != nil {
			return Artifact{}, services.Wrap(services.ErrResource, "packager", "archive", blob.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return Artifact{}, services.Wrap(services.ErrResource, "packager", "archive", "finalize", err)
	}
	return Artifact{Data: buf.Bytes(), ContentType: ContentTypeZIP, Name: name, Entries: len(blobs)}, nil
}

package pdfkit

import (
	"bytes"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"toolbox/internal/services"
)

func init() {
	// pdfcpu otherwise writes its config and font cache under the user config dir.
	api.DisableConfigDir()
}

// Merge concatenates the pages of each section, in order, into a single
// document. A single section is returned unchanged.
func Merge(sections [][]byte) ([]byte, error) {
	switch len(sections) {
	case 0:
		return nil, services.Wrap(services.ErrValidation, "pdfkit", "merge", "no pages to merge", nil)
	case 1:
		return sections[0], nil
	}

	readers := make([]io.ReadSeeker, 0, len(sections))
	for _, section := range sections {
		readers = append(readers, bytes.NewReader(section))
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, conf); err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "pdfkit", "merge", "", err)
	}
	return buf.Bytes(), nil
}

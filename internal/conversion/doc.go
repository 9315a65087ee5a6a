// Package conversion turns a batch of uploaded files into named output blobs
// for one requested target format.
//
// The Dispatcher classifies every file by extension, hands it to the converter
// that owns the target's family, and collects the results in input order. Four
// family converters exist:
//
//   - PDFUnifier produces one PDF section per input for later merging.
//   - RasterConverter re-encodes images and renders PDF pages to images.
//   - DocumentConverter produces DOCX (from PDF only) or plain text.
//   - MediaConverter transcodes audio and video through ffmpeg.
//
// Converters depend on narrow capability interfaces rather than concrete
// backends so tests can substitute fakes. Files a family has no rule for are
// skipped and contribute nothing. Any converter error aborts the whole batch.
package conversion

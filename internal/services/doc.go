// Package services defines shared utilities consumed by the converters and the
// external tool integrations.
//
// It carries the error markers used to classify failures (unsupported target,
// unsupported source, tool failure, resource failure) together with the Wrap
// helper, the HTTP status mapping applied at the API boundary, and context
// helpers that stamp request identifiers and batch positions for logging.
//
// Subpackages wrap the external binaries (ffmpeg, soffice) the media and
// document converters shell out to.
package services

package format

import (
	"path/filepath"
	"strings"
)

// SourceKind is the coarse category of an uploaded file.
type SourceKind int

const (
	Unknown SourceKind = iota
	RasterImage
	VectorImage
	PDF
	TextLike
	ArbitraryDocument
	AudioVideo
)

var kindNames = map[SourceKind]string{
	Unknown:           "unknown",
	RasterImage:       "raster_image",
	VectorImage:       "vector_image",
	PDF:               "pdf",
	TextLike:          "text",
	ArbitraryDocument: "document",
	AudioVideo:        "audio_video",
}

func (k SourceKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

var extensionKinds = map[string]SourceKind{
	"png":  RasterImage,
	"jpg":  RasterImage,
	"jpeg": RasterImage,
	"gif":  RasterImage,
	"bmp":  RasterImage,
	"tiff": RasterImage,
	"tif":  RasterImage,
	"webp": RasterImage,
	"heic": RasterImage,

	"svg": VectorImage,

	"pdf": PDF,

	"txt": TextLike,
	"md":  TextLike,
	"csv": TextLike,

	"doc":  ArbitraryDocument,
	"docx": ArbitraryDocument,
	"odt":  ArbitraryDocument,
	"rtf":  ArbitraryDocument,
	"xls":  ArbitraryDocument,
	"xlsx": ArbitraryDocument,
	"ods":  ArbitraryDocument,
	"ppt":  ArbitraryDocument,
	"pptx": ArbitraryDocument,
	"odp":  ArbitraryDocument,
	"html": ArbitraryDocument,
	"htm":  ArbitraryDocument,
	"epub": ArbitraryDocument,

	"mp3":  AudioVideo,
	"wav":  AudioVideo,
	"ogg":  AudioVideo,
	"flac": AudioVideo,
	"aac":  AudioVideo,
	"m4a":  AudioVideo,
	"wma":  AudioVideo,
	"opus": AudioVideo,
	"mp4":  AudioVideo,
	"mov":  AudioVideo,
	"avi":  AudioVideo,
	"mkv":  AudioVideo,
	"webm": AudioVideo,
	"flv":  AudioVideo,
	"wmv":  AudioVideo,
	"m4v":  AudioVideo,
	"mpeg": AudioVideo,
	"mpg":  AudioVideo,
}

// Extension returns the lower-cased final extension of name without the dot,
// or an empty string when the name has none.
func Extension(name string) string {
	ext := filepath.Ext(strings.TrimSpace(name))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Classify maps a client-supplied filename to its SourceKind. Only the final
// extension is considered, so "archive.tar.pdf" is a PDF and names without an
// extension are Unknown.
func Classify(name string) SourceKind {
	if kind, ok := extensionKinds[Extension(name)]; ok {
		return kind
	}
	return Unknown
}

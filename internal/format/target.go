package format

import (
	"strings"

	"toolbox/internal/services"
)

// Family groups target formats that share a converter and packaging rule.
type Family int

const (
	FamilyPDF Family = iota + 1
	FamilyRaster
	FamilyDocument
	FamilyMedia
)

func (f Family) String() string {
	switch f {
	case FamilyPDF:
		return "pdf"
	case FamilyRaster:
		return "raster"
	case FamilyDocument:
		return "document"
	case FamilyMedia:
		return "media"
	default:
		return "unknown"
	}
}

// Target is a validated output format.
type Target struct {
	Format string
	Family Family
}

var targets = map[string]Family{
	"pdf":  FamilyPDF,
	"png":  FamilyRaster,
	"jpg":  FamilyRaster,
	"webp": FamilyRaster,
	"docx": FamilyDocument,
	"txt":  FamilyDocument,
	"mp3":  FamilyMedia,
	"wav":  FamilyMedia,
	"ogg":  FamilyMedia,
	"mp4":  FamilyMedia,
	"mov":  FamilyMedia,
}

var aliases = map[string]string{
	"jpeg": "jpg",
}

// ParseTarget validates a requested output format. Matching is
// case-insensitive and tolerates a leading dot.
func ParseTarget(raw string) (Target, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "."))
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	family, ok := targets[name]
	if !ok {
		if name == "" {
			return Target{}, services.Wrap(services.ErrUnsupportedTarget, "format", "parse target", "target format required", nil)
		}
		return Target{}, services.Wrap(services.ErrUnsupportedTarget, "format", "parse target", "unsupported target format "+name, nil)
	}
	return Target{Format: name, Family: family}, nil
}

// Supported lists the accepted target formats in a stable order.
func Supported() []string {
	return []string{"pdf", "png", "jpg", "webp", "docx", "txt", "mp3", "wav", "ogg", "mp4", "mov"}
}

// Ext returns the file extension used for entries of this target.
func (t Target) Ext() string {
	return t.Format
}

// IsAudio reports whether the target is an audio-only container.
func (t Target) IsAudio() bool {
	switch t.Format {
	case "mp3", "wav", "ogg":
		return true
	default:
		return false
	}
}

func (t Target) String() string {
	return t.Format
}

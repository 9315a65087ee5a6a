package textutil

import (
	"strings"
	"unicode"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// maxNameBytes bounds names echoed into logs and the history ledger.
const maxNameBytes = 255

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters and control characters are removed. The result is trimmed of
// leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// UploadName reduces a multipart filename to a safe base name. Directory
// components from either path convention are dropped, the extension is kept
// when the name must be shortened, and an empty result becomes "upload".
func UploadName(raw string) string {
	if idx := strings.LastIndexAny(raw, `/\`); idx >= 0 {
		raw = raw[idx+1:]
	}
	name := SanitizeFileName(raw)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "upload"
	}
	if len(name) <= maxNameBytes {
		return name
	}
	ext := ""
	if dot := strings.LastIndexByte(name, '.'); dot > 0 && len(name)-dot <= 16 {
		ext = name[dot:]
	}
	stem := strings.ToValidUTF8(name[:maxNameBytes-len(ext)], "")
	return stem + ext
}

// Package audio classifies audio containers by file extension or, for
// extension-less input such as stdin, by sniffing magic bytes.
package audio

import (
	"bytes"
	"net/url"
	"path"
	"sort"
	"strings"
)

// Format is a supported audio container format.
type Format string

const (
	FormatFLAC Format = "flac"
	FormatWAV  Format = "wav"
	FormatM4A  Format = "m4a"
	FormatMP3  Format = "mp3"
)

var supported = map[string]Format{
	"flac": FormatFLAC,
	"wav":  FormatWAV,
	"m4a":  FormatM4A,
	"mp3":  FormatMP3,
}

// Extensions returns the supported file extensions sorted alphabetically.
func Extensions() []string {
	exts := make([]string, 0, len(supported))
	for ext := range supported {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Classify maps the file extension of a path or URL to a supported format.
// The extension is compared case-insensitively; query strings and fragments
// are ignored for URLs. The second return value is false when the extension
// is absent from the supported set.
func Classify(pathOrURL string) (Format, bool) {
	f, ok := supported[extensionOf(pathOrURL)]
	return f, ok
}

// Sniff inspects the leading bytes of audio data and returns the matching
// format. Unrecognized data falls back to m4a rather than failing; genuinely
// malformed input is rejected later by the engine's container parsing.
func Sniff(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case len(data) > 0 && data[0] == 0xFF:
		return FormatMP3
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	default:
		return FormatM4A
	}
}

// Extension returns the canonical file extension without the leading dot.
func (f Format) Extension() string {
	return string(f)
}

func extensionOf(pathOrURL string) string {
	candidate := pathOrURL
	if u, err := url.Parse(pathOrURL); err == nil && u.Scheme != "" && u.Path != "" {
		candidate = u.Path
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(candidate), "."))
}

package domain

import (
	"bytes"
	"path/filepath"
	"strings"
)

// FileType is the detected document format.
type FileType string

// Supported document formats.
const (
	FileTypePDF   FileType = "pdf"
	FileTypeWord  FileType = "word"
	FileTypeImage FileType = "image"
	FileTypePlain FileType = "plain"

	// FileTypeUnknown means detection failed; ingestion rejects it.
	FileTypeUnknown FileType = "unknown"
)

// IsValid returns true if the file type is a supported format.
func (t FileType) IsValid() bool {
	switch t {
	case FileTypePDF, FileTypeWord, FileTypeImage, FileTypePlain:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// Magic byte prefixes used for content sniffing.
var (
	pdfMagic  = []byte("%PDF-")
	zipMagic  = []byte("PK\x03\x04") // docx is a zip container
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte("\xff\xd8\xff")
)

// imageExtensions maps filename extensions to the image type.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// DetectFileType determines the document format from content magic bytes,
// falling back to the filename extension. Content wins over extension so a
// mislabelled upload is still handled by the right extractor.
func DetectFileType(filename string, content []byte) FileType {
	switch {
	case bytes.HasPrefix(content, pdfMagic):
		return FileTypePDF
	case bytes.HasPrefix(content, zipMagic):
		return FileTypeWord
	case bytes.HasPrefix(content, pngMagic), bytes.HasPrefix(content, jpegMagic):
		return FileTypeImage
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); {
	case ext == ".pdf":
		return FileTypePDF
	case ext == ".docx" || ext == ".doc":
		return FileTypeWord
	case imageExtensions[ext]:
		return FileTypeImage
	case ext == ".txt" || ext == ".md" || ext == ".text" || ext == "":
		if looksLikeText(content) {
			return FileTypePlain
		}
		return FileTypeUnknown
	default:
		if looksLikeText(content) {
			return FileTypePlain
		}
		return FileTypeUnknown
	}
}

// looksLikeText reports whether the first KB of content is plausibly UTF-8
// text. A NUL byte is a strong binary signal.
func looksLikeText(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	sample := content
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	return !bytes.ContainsRune(sample, 0)
}

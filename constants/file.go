package constants

import "strings"

// AllowedExtensions holds the file extensions accepted for certificate upload.
// Anything else is rejected before text extraction is attempted.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tiff": {},
	"bmp":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether a (possibly dotted, mixed-case) extension is
// accepted for upload.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// IsPDFExt reports whether the extension selects the PDF text path rather
// than image OCR.
func IsPDFExt(ext string) bool {
	return NormalizeExt(ext) == "pdf"
}

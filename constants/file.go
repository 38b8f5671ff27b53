package constants

import "strings"

// File types accepted for upload.
const (
	FileTypePDF = "pdf"
	FileTypeTXT = "txt"
)

// AllowedExtensions holds the file extensions accepted by the extract endpoint.
var AllowedExtensions = map[string]struct{}{
	FileTypePDF: {},
	FileTypeTXT: {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedFilename reports whether name has a dot and an allowed extension.
func IsAllowedFilename(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	_, ok := AllowedExtensions[NormalizeExt(name[i:])]
	return ok
}

package domain

import (
	"path/filepath"
	"strings"
)

// IsImageContentType reports whether ct is an image media type.
func IsImageContentType(ct string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "image/")
}

// PhotoFileName is the stored name of a bootcamp's photo: photo_<id><ext>.
// The extension comes from the uploaded name and is lower-cased.
func PhotoFileName(bootcampID, originalName string) string {
	return "photo_" + bootcampID + strings.ToLower(filepath.Ext(originalName))
}

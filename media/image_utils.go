package media

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// allow-listed image content types for uploads
var allowedImageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// IsAllowedImageExt checks the filename extension against the allow-list.
func IsAllowedImageExt(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return allowedImageExtensions[ext]
}

// SniffImageMIME detects the content type from the first bytes of an
// uploaded file; rewinding the file afterwards is the caller's job.
func SniffImageMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if n == 0 && err != nil {
		return "", err
	}
	return strings.Split(http.DetectContentType(buf[:n]), ";")[0], nil
}

// IsAllowedImageMIME checks a detected content type against the allow-list.
func IsAllowedImageMIME(contentType string) bool {
	return allowedImageMIMETypes[strings.ToLower(strings.TrimSpace(contentType))]
}

package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
)

// ValidateMimeType sniffs the first 512 bytes and checks the detected MIME
// type against the allowed prefixes or exact types.
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// SafeFileName normalizes an original upload name into something usable as
// an object-key component.
func SafeFileName(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	return unsafeNameChars.ReplaceAllString(base, "")
}

package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"lesson.mp4", "lesson.mp4"},
		{"my lesson.mp4", "my_lesson.mp4"},
		{"../../etc/passwd", "passwd"},
		{"notes (final)!.pdf", "notes_final.pdf"},
	}
	for _, tt := range tests {
		if got := SafeFileName(tt.in); got != tt.want {
			t.Errorf("SafeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateMimeType(t *testing.T) {
	// %PDF magic makes http.DetectContentType report application/pdf.
	pdf := append([]byte("%PDF-1.4"), bytes.Repeat([]byte{' '}, 64)...)

	mime, err := ValidateMimeType(bytes.NewReader(pdf), []string{MimePDF})
	if err != nil {
		t.Fatalf("ValidateMimeType() error = %v", err)
	}
	if !strings.HasPrefix(mime, "application/pdf") {
		t.Errorf("detected mime = %q, want application/pdf", mime)
	}

	if _, err := ValidateMimeType(bytes.NewReader(pdf), []string{MimeImage}); err == nil {
		t.Error("pdf bytes accepted against an image allowlist")
	}
}

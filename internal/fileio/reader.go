package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxUploadSize caps accepted uploads at 10 MB.
const MaxUploadSize = 10 << 20

// Stored when a format is accepted but has no extractor; the content
// column is NOT NULL so a placeholder string stands in for real text.
const officePlaceholder = "[Office document content - Office document parsing not implemented yet]"

var allowedExact = map[string]bool{
	"application/json":     true,
	"application/pdf":      true,
	"application/xml":      true,
	"text/csv":             true,
	"application/csv":      true,
	"application/msword":   true,
	"application/vnd.ms-excel": true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

// AllowedType reports whether a MIME type is accepted for upload. Any
// text/* subtype (plain, html, markdown, xml, ...) is accepted.
func AllowedType(mimetype string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimetype))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	return allowedExact[mt]
}

func isOffice(mimetype string) bool {
	return strings.Contains(mimetype, "word") ||
		strings.Contains(mimetype, "excel") ||
		strings.Contains(mimetype, "powerpoint") ||
		strings.Contains(mimetype, "officedocument")
}

// ReadContent extracts the text of an uploaded file. The returned string
// is always non-empty for a nil error: unsupported-but-accepted formats
// degrade to a placeholder string rather than an empty or missing value.
// A returned error means the upload must be rejected and nothing persisted.
func ReadContent(path, mimetype string) (string, error) {
	switch {
	case mimetype == "application/pdf":
		return readPDF(path)
	case isOffice(mimetype):
		return officePlaceholder, nil
	default:
		// text/*, json, csv, xml and anything else we let through reads
		// as plain text.
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file content: %w", err)
		}
		return string(b), nil
	}
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "encrypted") {
			return "", errors.New("PDF file is encrypted or password-protected. Please upload an unprotected PDF.")
		}
		return "", fmt.Errorf("invalid PDF file format: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}
	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return "[PDF file contains no readable text content]", nil
	}
	return text, nil
}

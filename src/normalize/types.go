package normalize

import (
	"errors"
	"io"
	"os"
	"strings"
)

// Upload is a file handed over by a surface (HTTP form field, CLI path).
// MIME is whatever the client declared; it may be empty.
type Upload struct {
	Name   string
	MIME   string
	Reader io.Reader
}

// Artifact is the normalized temporary file that gets transferred to the
// model provider. LocalPath is owned by the caller until Remove is called.
type Artifact struct {
	OriginalName string
	MIMEType     string
	LocalPath    string
	SizeBytes    int64
	Converted    bool // true when a spreadsheet was rewritten as CSV
}

// Remove deletes the local temp file. Missing files are not an error.
func (a *Artifact) Remove() error {
	if a == nil || a.LocalPath == "" {
		return nil
	}
	if err := os.Remove(a.LocalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

const CSVMIME = "text/csv"

// allowedExts is the upload allow-list, keyed by lower-case extension.
var allowedExts = map[string]struct{}{
	".pdf":  {},
	".txt":  {},
	".csv":  {},
	".xlsx": {},
	".xls":  {},
	".jpg":  {},
	".png":  {},
}

// AllowedExtensions returns the allow-list without dots, in display order.
func AllowedExtensions() []string {
	return []string{"pdf", "txt", "csv", "xlsx", "xls", "jpg", "png"}
}

// Allowed reports whether ext (with or without the leading dot) may be uploaded.
func Allowed(ext string) bool {
	_, ok := allowedExts[dotted(ext)]
	return ok
}

// IsSpreadsheet reports whether ext is converted to CSV before upload.
func IsSpreadsheet(ext string) bool {
	switch dotted(ext) {
	case ".xlsx", ".xls":
		return true
	default:
		return false
	}
}

func dotted(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

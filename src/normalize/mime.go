package normalize

import (
	"mime"
	"path/filepath"
	"strings"
)

// MIME type lookup tables for the allow-listed extensions.
var (
	mimeExtMap = map[string]string{
		".pdf":  "application/pdf",
		".txt":  "text/plain",
		".csv":  "text/csv",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".xls":  "application/vnd.ms-excel",
		".jpg":  "image/jpeg",
		".png":  "image/png",
	}

	mimeAliasMap = map[string]string{
		"image/jpg":                   "image/jpeg",
		"image/pjpeg":                 "image/jpeg",
		"image/x-png":                 "image/png",
		"application/x-pdf":           "application/pdf",
		"text/comma-separated-values": "text/csv",
		"application/csv":             "text/csv",
	}
)

// ResolveMIME returns the content type to declare for a pass-through upload.
// The client-declared value wins when it is well formed; aliases are folded
// and parameters stripped. Otherwise the type is derived from the extension.
func ResolveMIME(name, declared string) string {
	raw := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}

	// Browsers occasionally double the top-level type.
	for _, top := range []string{"image/", "text/", "application/"} {
		for strings.HasPrefix(raw, top+top) {
			raw = strings.TrimPrefix(raw, top)
		}
	}

	if alias, ok := mimeAliasMap[raw]; ok {
		return alias
	}
	if raw != "" && strings.Contains(raw, "/") && !strings.HasSuffix(raw, "/") &&
		raw != "application/octet-stream" {
		return raw
	}
	return mimeFromExt(name)
}

func mimeFromExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "application/octet-stream"
	}
	if mt, ok := mimeExtMap[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = mt[:i]
		}
		return strings.TrimSpace(mt)
	}
	return "application/octet-stream"
}

package models

import (
	"fmt"
	"strings"
)

func isTextMIME(m string) bool {
	m = strings.ToLower(strings.TrimSpace(m))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	if m == "" {
		return false
	}
	if strings.HasPrefix(m, "text/") {
		return true
	}
	switch m {
	case "application/json",
		"application/xml",
		"application/x-yaml",
		"application/yaml":
		return true
	default:
		return false
	}
}

func isPDFMIME(m string) bool {
	return strings.EqualFold(strings.TrimSpace(m), "application/pdf")
}

// combinePromptWithFiles inlines text attachments into the prompt; everything
// else is referenced by name and type only.
func combinePromptWithFiles(base string, files []*RemoteFile) string {
	if len(files) == 0 {
		return base
	}

	// Pre-calculate approximate size to reduce allocations
	estimatedSize := len(base) + 200
	for _, f := range files {
		estimatedSize += len(f.DisplayName) + 100
		if isTextMIME(f.MIMEType) {
			estimatedSize += len(f.Data)
		}
	}

	var b strings.Builder
	b.Grow(estimatedSize)

	b.WriteString(base)
	b.WriteString("\n\n---\nATTACHMENTS CONTEXT (inline for text files) — BEGIN\n")

	for i, f := range files {
		title := strings.TrimSpace(f.DisplayName)
		if title == "" {
			title = fmt.Sprintf("file_%d", i+1)
		}
		mt := f.MIMEType

		if isTextMIME(mt) && len(f.Data) > 0 {
			b.WriteString("\n<<<FILE ")
			b.WriteString(title)
			if mt != "" {
				b.WriteString(" [")
				b.WriteString(mt)
				b.WriteString("]")
			}
			b.WriteString(">>>:\n")
			b.Write(f.Data)
			b.WriteString("\n<<<END FILE ")
			b.WriteString(title)
			b.WriteString(">>>\n")
		} else {
			b.WriteString("\n[Non-text attachment] ")
			b.WriteString(title)
			if mt != "" {
				b.WriteString(" (")
				b.WriteString(mt)
				b.WriteString(")")
			}
		}
	}

	b.WriteString("\nATTACHMENTS CONTEXT — END\n---\n")
	return b.String()
}

// renderParts flattens message parts for providers without a file API:
// text parts are joined, PDFs become text, and files are inlined.
func renderParts(parts []Part) string {
	var texts []string
	var files []*RemoteFile
	for _, p := range parts {
		switch {
		case p.File != nil:
			files = append(files, inlineable(p.File))
		case strings.TrimSpace(p.Text) != "":
			texts = append(texts, p.Text)
		}
	}
	return combinePromptWithFiles(strings.Join(texts, "\n\n"), files)
}

// inlineable returns f, or a text copy of it when f is a readable PDF.
func inlineable(f *RemoteFile) *RemoteFile {
	if !isPDFMIME(f.MIMEType) || len(f.Data) == 0 {
		return f
	}
	txt, err := pdfText(f.Data)
	if err != nil || strings.TrimSpace(txt) == "" {
		return f
	}
	cp := *f
	cp.MIMEType = "text/plain"
	cp.Data = []byte(txt)
	return &cp
}

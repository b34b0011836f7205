package analyst

import "github.com/Protocol-Lattice/go-analyst/src/models"

// attachmentNote precedes the file in a message that carries an upload.
const attachmentNote = "Attached is the data file the user uploaded. Analyze it:"

// Bundle is one outgoing user message.
type Bundle struct {
	Text       string
	Attachment *models.RemoteFile
}

func (b Bundle) HasAttachment() bool { return b.Attachment != nil }

// Parts expands the bundle into the ordered content sent to the provider:
// the prompt, then the note and the file when an attachment is present.
func (b Bundle) Parts() []models.Part {
	parts := []models.Part{models.Text(b.Text)}
	if b.Attachment != nil {
		parts = append(parts, models.Text(attachmentNote), models.FilePart(b.Attachment))
	}
	return parts
}

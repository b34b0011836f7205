// Package normalize turns a user upload into a temporary file that a model
// provider can ingest. Spreadsheets are rewritten as CSV; every other
// allow-listed type is copied byte for byte.
package normalize

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const DefaultMaxBytes int64 = 10 << 20 // 10 MiB

// Normalizer converts uploads into temp-file artifacts.
type Normalizer struct {
	TempDir  string // empty means os.TempDir()
	MaxBytes int64  // <= 0 means DefaultMaxBytes
	logger   *zap.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithTempDir places artifacts under dir.
func WithTempDir(dir string) Option {
	return func(n *Normalizer) { n.TempDir = strings.TrimSpace(dir) }
}

// WithMaxBytes caps the accepted upload size.
func WithMaxBytes(max int64) Option {
	return func(n *Normalizer) { n.MaxBytes = max }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// New returns a Normalizer with defaults applied.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{MaxBytes: DefaultMaxBytes, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(n)
	}
	if n.MaxBytes <= 0 {
		n.MaxBytes = DefaultMaxBytes
	}
	return n
}

// Normalize writes exactly one temp file for up and describes it. The caller
// must Remove the artifact; WithArtifact does that automatically.
func (n *Normalizer) Normalize(ctx context.Context, up Upload) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(up.Name)
	if name == "" {
		return nil, newError(up.Name, KindUnsupported, ErrEmptyName)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !Allowed(ext) {
		return nil, newError(name, KindUnsupported,
			fmt.Errorf("extension %q not allowed; accepted: %s", ext, strings.Join(AllowedExtensions(), ", ")))
	}
	if up.Reader == nil {
		return nil, newError(name, KindIO, ErrNoContent)
	}

	// Read with cap
	data, err := io.ReadAll(io.LimitReader(up.Reader, n.MaxBytes+1))
	if err != nil {
		return nil, newError(name, KindIO, err)
	}
	if int64(len(data)) > n.MaxBytes {
		return nil, newError(name, KindTooLarge, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, n.MaxBytes))
	}

	if IsSpreadsheet(ext) {
		return n.convertSpreadsheet(name, ext, data)
	}
	return n.passThrough(name, ext, up.MIME, data)
}

// WithArtifact normalizes up, hands the artifact to fn, and removes the temp
// file on every exit path, including a panic inside fn.
func (n *Normalizer) WithArtifact(ctx context.Context, up Upload, fn func(*Artifact) error) error {
	art, err := n.Normalize(ctx, up)
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := art.Remove(); rmErr != nil {
			n.logger.Warn("remove temp artifact", zap.String("path", art.LocalPath), zap.Error(rmErr))
		}
	}()
	return fn(art)
}

func (n *Normalizer) convertSpreadsheet(name, ext string, data []byte) (*Artifact, error) {
	rows, err := readSheet(ext, data)
	if err != nil {
		return nil, newError(name, KindParse, err)
	}

	var buf bytes.Buffer
	if err := writeCSV(&buf, rows); err != nil {
		return nil, newError(name, KindParse, err)
	}

	art, err := n.writeTemp(name, ".csv", CSVMIME, buf.Bytes())
	if err != nil {
		return nil, err
	}
	art.Converted = true
	n.logger.Debug("spreadsheet converted to csv",
		zap.String("file", name),
		zap.Int("rows", len(rows)),
		zap.Int64("bytes", art.SizeBytes))
	return art, nil
}

func (n *Normalizer) passThrough(name, ext, declared string, data []byte) (*Artifact, error) {
	return n.writeTemp(name, ext, ResolveMIME(name, declared), data)
}

func (n *Normalizer) writeTemp(name, suffix, mimeType string, data []byte) (*Artifact, error) {
	dir := n.TempDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, newError(name, KindIO, err)
		}
	}
	f, err := os.CreateTemp(dir, "upload-*"+suffix)
	if err != nil {
		return nil, newError(name, KindIO, err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, newError(name, KindIO, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, newError(name, KindIO, err)
	}

	return &Artifact{
		OriginalName: name,
		MIMEType:     mimeType,
		LocalPath:    path,
		SizeBytes:    int64(len(data)),
	}, nil
}

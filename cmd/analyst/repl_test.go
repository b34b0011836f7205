package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	analyst "github.com/Protocol-Lattice/go-analyst"
	"github.com/Protocol-Lattice/go-analyst/src/models"
	"github.com/Protocol-Lattice/go-analyst/src/normalize"
)

func runScript(t *testing.T, script string) (string, *analyst.Session) {
	t.Helper()
	s, err := analyst.New(analyst.Options{
		Provider:   models.NewDummyProvider("echo:"),
		Normalizer: normalize.New(normalize.WithTempDir(t.TempDir())),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	var out bytes.Buffer
	if err := newREPL(s, strings.NewReader(script), &out).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String(), s
}

func TestREPLUploadAndSend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("kilroy was here"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, s := runScript(t, strings.Join([]string{
		"/upload " + path,
		"/upload " + path,
		"explain",
		"more detail",
		"/quit",
		"never sent",
	}, "\n"))

	if !strings.Contains(out, "Uploading notes.txt...\nAttached notes.txt (text/plain)") {
		t.Fatalf("missing upload confirmation:\n%s", out)
	}
	if !strings.Contains(out, "notes.txt is already uploaded.") {
		t.Fatalf("second upload not skipped:\n%s", out)
	}
	if !strings.Contains(out, "kilroy was here") {
		t.Fatalf("first reply should echo the attachment:\n%s", out)
	}
	if !strings.Contains(out, "Thinking...\necho: more detail\n") {
		t.Fatalf("second reply missing:\n%s", out)
	}
	if got := len(s.Transcript()); got != 4 {
		t.Fatalf("transcript has %d entries, want 4", got)
	}
}

func TestREPLCommands(t *testing.T) {
	out, s := runScript(t, strings.Join([]string{
		"hello",
		"/persona survey",
		"/persona survey",
		"/persona poet",
		"/personas",
		"/bogus",
		"/upload",
		"/upload /does/not/exist.txt",
		"/reset",
	}, "\n"))

	for _, want := range []string{
		"echo: hello",
		"Switched to Availability Survey.",
		"Already using Availability Survey.",
		"error: unknown persona",
		"* survey",
		"error: unknown command /bogus",
		"error: usage: /upload <path>",
		"Conversation cleared.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if s.Persona() != analyst.PersonaSurvey {
		t.Fatalf("persona = %s, want survey", s.Persona())
	}
	if len(s.Transcript()) != 0 {
		t.Fatalf("transcript should be empty after reset")
	}
}

func TestREPLHistory(t *testing.T) {
	out, _ := runScript(t, "hi\n/history\n")
	if !strings.Contains(out, "[user] hi\n") || !strings.Contains(out, "[assistant] echo: hi\n") {
		t.Fatalf("history not printed:\n%s", out)
	}
}

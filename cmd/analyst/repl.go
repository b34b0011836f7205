package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	analyst "github.com/Protocol-Lattice/go-analyst"
	"github.com/Protocol-Lattice/go-analyst/src/normalize"
)

const prompt = "> "

// repl drives a session from line-oriented input. Errors from the session are
// printed and the loop continues; only input errors end it.
type repl struct {
	session *analyst.Session
	in      *bufio.Scanner
	out     io.Writer
}

func newREPL(s *analyst.Session, in io.Reader, out io.Writer) *repl {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &repl{session: s, in: sc, out: out}
}

func (r *repl) Run(ctx context.Context) error {
	snap := r.session.Snapshot()
	fmt.Fprintf(r.out, "Persona: %s. Type /upload <path> to attach a file, /quit to leave.\n", snap.PersonaTitle)

	for {
		fmt.Fprint(r.out, prompt)
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}
		if err := r.handle(ctx, line); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

func (r *repl) handle(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/upload":
		return r.upload(ctx, arg)
	case "/reset":
		r.session.Reset()
		fmt.Fprintln(r.out, "Conversation cleared.")
	case "/persona":
		return r.persona(arg)
	case "/personas":
		active := r.session.Persona()
		for _, p := range analyst.Personas() {
			mark := " "
			if p == active {
				mark = "*"
			}
			fmt.Fprintf(r.out, "%s %-10s %s\n", mark, p, p.Title())
		}
	case "/history":
		for _, e := range r.session.Transcript() {
			fmt.Fprintf(r.out, "[%s] %s\n", e.Role, e.Text)
		}
	default:
		if strings.HasPrefix(cmd, "/") {
			return fmt.Errorf("unknown command %s", cmd)
		}
		fmt.Fprintln(r.out, "Thinking...")
		reply, err := r.session.Send(ctx, line)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, reply)
	}
	return nil
}

func (r *repl) upload(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("usage: /upload <path>")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := filepath.Base(path)
	fmt.Fprintf(r.out, "Uploading %s...\n", name)
	res, err := r.session.Upload(ctx, normalize.Upload{Name: name, Reader: f})
	if err != nil {
		return err
	}
	switch {
	case res.Skipped:
		fmt.Fprintf(r.out, "%s is already uploaded.\n", res.Name)
	case res.Converted:
		fmt.Fprintf(r.out, "Converted %s to CSV and attached it to your next message.\n", res.Name)
	default:
		fmt.Fprintf(r.out, "Attached %s (%s) to your next message.\n", res.Name, res.MIMEType)
	}
	return nil
}

func (r *repl) persona(name string) error {
	if name == "" {
		return errors.New("usage: /persona <name>")
	}
	p, err := analyst.ParsePersona(name)
	if err != nil {
		return err
	}
	changed, err := r.session.SwitchPersona(p)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintf(r.out, "Already using %s.\n", p.Title())
		return nil
	}
	fmt.Fprintf(r.out, "Switched to %s. Conversation cleared.\n", p.Title())
	return nil
}

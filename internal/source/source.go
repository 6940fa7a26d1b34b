// Package source reads server logs as ordered lines from files, standard input,
// Docker containers and mclo.gs.
package source

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single log line, stack traces from modded servers can be long.
const maxLineSize = 1 << 20

// Source yields the full log as lines.
type Source interface {
	Lines(ctx context.Context) ([]string, error)
	String() string // Label stored with the report
}

// ReadLines splits r into lines without line terminators, CRLF included.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// File reads a log file, "-" reads standard input.
type File string

func (path File) String() string {
	if path == "-" {
		return "stdin"
	}
	return "file:" + string(path)
}

func (path File) Lines(_ context.Context) ([]string, error) {
	if path == "-" {
		return ReadLines(os.Stdin)
	}

	file, err := os.Open(string(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	return ReadLines(file)
}

// Text is an in-memory log, used for HTTP submissions.
type Text struct {
	Label   string
	Content string
}

func (text Text) String() string { return text.Label }

func (text Text) Lines(_ context.Context) ([]string, error) {
	return ReadLines(strings.NewReader(text.Content))
}

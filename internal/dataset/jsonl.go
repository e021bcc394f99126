package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxLineBytes bounds one JSONL line; synthesized batches can be large
const maxLineBytes = 16 << 20

// Line is one non-empty line of a JSONL file
type Line struct {
	Number int
	Raw    []byte
}

// ReadLines calls fn for each non-empty line of path, in order. A
// truncated final line is delivered like any other; parsing is the
// caller's concern. Returning an error from fn stops the scan.
func ReadLines(path string, fn func(Line) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ScanLines(f, fn)
}

// ScanLines is ReadLines over a reader
func ScanLines(r io.Reader, fn func(Line) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	n := 0
	for scanner.Scan() {
		n++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		if err := fn(Line{Number: n, Raw: append([]byte(nil), raw...)}); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// ReadObjects decodes every line of path into T, skipping lines that do
// not parse. It returns the decoded values and the number skipped.
func ReadObjects[T any](path string) ([]T, int, error) {
	var (
		out     []T
		skipped int
	)
	err := ReadLines(path, func(l Line) error {
		var v T
		if json.Unmarshal(l.Raw, &v) != nil {
			skipped++
			return nil
		}
		out = append(out, v)
		return nil
	})
	return out, skipped, err
}

// Writer appends JSON values one per line without escaping non-ASCII or
// HTML characters. Call Flush after each batch to bound loss on crash.
type Writer struct {
	f   *os.File
	buf *bufio.Writer
	enc *json.Encoder
	n   int
}

// OpenWriter opens path for writing, appending unless truncate is set
func OpenWriter(path string, truncate bool) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}
	flags := os.O_CREATE | os.O_WRONLY
	if truncate {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return newWriter(f), nil
}

func newWriter(f *os.File) *Writer {
	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &Writer{f: f, buf: buf, enc: enc}
}

// Write encodes v as one line
func (w *Writer) Write(v any) error {
	if err := w.enc.Encode(v); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns how many values were written through w
func (w *Writer) Count() int {
	return w.n
}

// Flush pushes buffered lines to the OS
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// Close flushes and closes the file
func (w *Writer) Close() error {
	return errors.Join(w.buf.Flush(), w.f.Close())
}

// WriteAll truncates path and writes every value
func WriteAll[T any](path string, values []T) error {
	w, err := OpenWriter(path, true)
	if err != nil {
		return err
	}
	for _, v := range values {
		if err := w.Write(v); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

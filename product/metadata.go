/*
DESCRIPTION
  metadata.go implements the typed key/value metadata sidecar written
  alongside every raw file product, replacing the original's variadic
  format-string writer with a small typed builder.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package product

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Metadata is an ordered set of typed key/value pairs, written one per
// line as "<key> <value>\n" per spec.md §6.3, with value formatted
// according to its declared type: s (string), i (decimal int64) or d
// (%.15e float). This is a typed replacement for write_metadata's variadic
// format-string interface in tools.c: each call site names its value's
// type explicitly instead of relying on a printf-style format string.
type Metadata struct {
	lines []string
}

// NewMetadata returns an empty Metadata builder.
func NewMetadata() *Metadata {
	return &Metadata{}
}

// String appends a string-valued field.
func (m *Metadata) String(key, val string) *Metadata {
	m.lines = append(m.lines, fmt.Sprintf("%s %s", key, val))
	return m
}

// Int appends an integer-valued field.
func (m *Metadata) Int(key string, val int64) *Metadata {
	m.lines = append(m.lines, fmt.Sprintf("%s %d", key, val))
	return m
}

// Float appends a float-valued field, formatted per spec.md §6.3 as %.15e.
func (m *Metadata) Float(key string, val float64) *Metadata {
	m.lines = append(m.lines, fmt.Sprintf("%s %.15e", key, val))
	return m
}

// WriteFile writes m to path, one field per line.
func (m *Metadata) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("product: could not create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range m.lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("product: could not write %s: %w", path, err)
		}
	}
	return w.Flush()
}

// Field is one parsed metadata line. The sidecar format (spec.md §6.3)
// carries no type tag in the file itself; callers that need a typed value
// know the key's declared type in advance and call Int or Float
// accordingly.
type Field struct {
	Key   string
	Value string
}

// ReadMetadataFile parses a file written by WriteFile.
func ReadMetadataFile(path string) ([]Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("product: could not open %s: %w", path, err)
	}
	defer f.Close()

	var fields []Field
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("product: malformed metadata line %q in %s", line, path)
		}
		fields = append(fields, Field{Key: parts[0], Value: parts[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("product: could not read %s: %w", path, err)
	}
	return fields, nil
}

// Int parses a Field's value as an int64; it is a convenience for callers
// that already know a field's type from its key.
func (f Field) Int() (int64, error) { return strconv.ParseInt(f.Value, 10, 64) }

// Float parses a Field's value as a float64.
func (f Field) Float() (float64, error) { return strconv.ParseFloat(f.Value, 64) }

// Package parser reads client config documents. Documents are decoded
// generically so that members mcpm does not understand survive a rewrite,
// and numbers keep their exact textual form.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// ErrNotObject indicates the document's top-level value is not an object.
var ErrNotObject = errors.New("top-level value is not an object")

// ParseError wraps a decode failure with the file it came from.
// It matches errors.ErrMalformedConfig.
type ParseError struct {
	Path string
	Err  error
}

// Error renders "<path>: <cause>".
func (e *ParseError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is errors.ErrMalformedConfig.
func (e *ParseError) Is(target error) bool {
	return target == errors.ErrMalformedConfig
}

// Decode parses a JSON document. Empty input is a syntax error. Numbers
// decode as json.Number.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, describe(data, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		line, col := position(data, dec.InputOffset())
		return nil, errors.Newf("trailing characters at line %d column %d", line, col)
	}
	return v, nil
}

// DecodeObject is Decode restricted to object documents.
func DecodeObject(data []byte) (map[string]any, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

// ReadFile reads and decodes path. Read failures are returned wrapped and
// keep matching fs.ErrNotExist; decode failures are *ParseError.
func ReadFile(path string) (any, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	v, err := Decode(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return v, nil
}

// ReadDocument reads an object document for rewriting. A missing file is
// an empty document. Anything that is not a JSON object is a *ParseError.
func ReadDocument(path string) (map[string]any, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	obj, err := DecodeObject(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return obj, nil
}

// Encode renders a document the way mcpm writes every file: sorted keys,
// two-space indent and a trailing newline.
func Encode(doc map[string]any) ([]byte, error) {
	return fileutil.MarshalJSON(doc)
}

// describe adds a line and column to syntax errors.
func describe(data []byte, err error) error {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		line, col := position(data, syn.Offset)
		return errors.Newf("%s at line %d column %d", syn.Error(), line, col)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		line, col := position(data, int64(len(data)))
		return errors.Newf("unexpected end of input at line %d column %d", line, col)
	}
	return err
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

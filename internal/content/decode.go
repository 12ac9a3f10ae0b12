// Package content implements the content engine: decoding file text with BOM
// detection, enumerating regex matches, applying replacements, and proposing
// renames. Mutating writes go through filelock.AtomicWrite so interrupted
// operations never leave partial files.
package content

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

const binarySniffSize = 4096

// EncodingError reports that a file's bytes could not be decoded as text.
type EncodingError struct {
	Path  string
	Cause error
}

func (e *EncodingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot decode %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("cannot decode %s", e.Path)
}

func (e *EncodingError) Unwrap() error { return e.Cause }

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// LookupEncoding resolves an --encoding flag value (an IANA name such as
// "utf-8", "windows-1252" or "utf-16le").
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return enc, nil
}

// Text is decoded file content together with enough information to encode an
// edited version back into the file's original representation.
type Text struct {
	// Content is the decoded UTF-8 text.
	Content string

	enc encoding.Encoding
	bom []byte
}

// Encode converts edited content back into the file's original encoding,
// restoring the BOM the file carried.
func (t Text) Encode(content string) ([]byte, error) {
	if t.enc == nil {
		return append(append([]byte{}, t.bom...), content...), nil
	}
	encoded, err := t.enc.NewEncoder().Bytes([]byte(content))
	if err != nil {
		return nil, err
	}
	return encoded, nil
}

// DecodeBytes decodes data using its BOM when present, else fallback, else
// plain UTF-8. Binary-looking input (a NUL byte in the leading sample with no
// recognised BOM) and invalid UTF-8 are decode failures.
func DecodeBytes(path string, data []byte, fallback encoding.Encoding) (Text, error) {
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		body := data[len(utf8BOM):]
		if !utf8.Valid(body) {
			return Text{}, &EncodingError{Path: path, Cause: fmt.Errorf("invalid UTF-8 after BOM")}
		}
		return Text{Content: string(body), bom: utf8BOM}, nil
	case bytes.HasPrefix(data, utf16LEBOM):
		return decodeUTF16(path, data, unicode.LittleEndian)
	case bytes.HasPrefix(data, utf16BEBOM):
		return decodeUTF16(path, data, unicode.BigEndian)
	}

	if fallback != nil {
		decoded, err := fallback.NewDecoder().Bytes(data)
		if err != nil {
			return Text{}, &EncodingError{Path: path, Cause: err}
		}
		return Text{Content: string(decoded), enc: fallback}, nil
	}

	sample := data
	if len(sample) > binarySniffSize {
		sample = sample[:binarySniffSize]
	}
	if bytes.IndexByte(sample, 0x00) != -1 {
		return Text{}, &EncodingError{Path: path, Cause: fmt.Errorf("binary content")}
	}
	if !utf8.Valid(data) {
		return Text{}, &EncodingError{Path: path, Cause: fmt.Errorf("invalid UTF-8")}
	}
	return Text{Content: string(data)}, nil
}

func decodeUTF16(path string, data []byte, endian unicode.Endianness) (Text, error) {
	enc := unicode.UTF16(endian, unicode.UseBOM)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return Text{}, &EncodingError{Path: path, Cause: err}
	}
	// Re-encoding with ExpectBOM writes the BOM back out.
	return Text{Content: string(decoded), enc: unicode.UTF16(endian, unicode.ExpectBOM)}, nil
}

// ReadText reads and decodes a whole file.
func ReadText(path string, fallback encoding.Encoding) (Text, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Text{}, err
	}
	return DecodeBytes(path, data, fallback)
}

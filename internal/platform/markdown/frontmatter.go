package markdown

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var fence = []byte("---\n")

var ErrUnclosedHeader = errors.New("markdown: header has no closing fence")

// Encode writes meta as a fenced YAML header followed by body. Pass a struct
// to keep keys in field order.
func Encode(meta any, body string) ([]byte, error) {
	header, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode note header: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(fence)*2 + len(header) + len(body) + 1)
	buf.Write(fence)
	buf.Write(header)
	buf.Write(fence)
	if len(body) > 0 && body[0] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// Decode fills meta from the header of doc and returns the body. A document
// without a header is all body.
func Decode(doc []byte, meta any) (string, error) {
	if !bytes.HasPrefix(doc, fence) {
		return string(doc), nil
	}
	rest := doc[len(fence):]
	end := bytes.Index(rest, append([]byte("\n"), fence...))
	if end < 0 {
		return "", ErrUnclosedHeader
	}
	if err := yaml.Unmarshal(rest[:end+1], meta); err != nil {
		return "", fmt.Errorf("decode note header: %w", err)
	}
	return string(bytes.TrimPrefix(rest[end+1+len(fence):], []byte("\n"))), nil
}

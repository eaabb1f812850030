package object

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// Sniff resolves a content type, reading up to 512 bytes of r when
// contentType is empty. The returned reader replays those bytes.
func Sniff(contentType string, r io.Reader) (string, io.Reader, error) {
	if contentType != "" {
		return contentType, r, nil
	}
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	return http.DetectContentType(head[:n]), io.MultiReader(bytes.NewReader(head[:n]), r), nil
}

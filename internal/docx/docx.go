package docx

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	ooxml "github.com/nguyenthenguyen/docx"

	"contract-validator/internal/contracts"
	"contract-validator/internal/shared/util"
)

// DefaultMaxFileSize is the upload limit when none is configured.
const DefaultMaxFileSize int64 = 10 << 20

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInvalidDocument     = errors.New("invalid document")
)

// Paragraph is one numbered, non-blank body paragraph.
type Paragraph struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// ParsedDocument is the reader's output.
type ParsedDocument struct {
	// Text holds "[P<n>] " prefixed blocks separated by a blank line.
	Text       string                  `json:"text"`
	Paragraphs []Paragraph             `json:"paragraphs"`
	Redlines   []contracts.RedlineItem `json:"redlines"`
}

// Reader extracts numbered text and tracked changes from DOCX uploads.
type Reader struct {
	MaxFileSize  int64
	AllowedTypes []string
}

// NewReader constructs a Reader. Empty arguments fall back to a 10 MiB
// limit and DOCX only.
func NewReader(maxFileSize int64, allowedTypes []string) *Reader {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if len(allowedTypes) == 0 {
		allowedTypes = []string{"docx"}
	}
	return &Reader{MaxFileSize: maxFileSize, AllowedTypes: allowedTypes}
}

// Parse validates the upload and extracts its paragraphs and redlines.
func (r *Reader) Parse(ctx context.Context, fileName string, data []byte) (ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return ParsedDocument{}, err
	}
	if !r.allowed(fileName) {
		return ParsedDocument{}, fmt.Errorf("%w: %q, allowed: %s", ErrUnsupportedFileType, fileName, strings.Join(r.AllowedTypes, ", "))
	}
	if int64(len(data)) > r.MaxFileSize {
		return ParsedDocument{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(data), r.MaxFileSize)
	}

	body, err := documentXML(data)
	if err != nil {
		return ParsedDocument{}, err
	}
	return parseBody(body)
}

func (r *Reader) allowed(fileName string) bool {
	ext := util.FileExtension(fileName)
	for _, t := range r.AllowedTypes {
		if strings.EqualFold(t, ext) {
			return true
		}
	}
	return false
}

// documentXML returns word/document.xml from the container.
func documentXML(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidDocument)
	}
	if !isWordprocessingML(data) {
		return "", fmt.Errorf("%w: not a WordprocessingML package", ErrInvalidDocument)
	}
	doc, err := ooxml.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	defer doc.Close()
	return doc.Editable().GetContent(), nil
}

func parseBody(body string) (ParsedDocument, error) {
	decoder := xml.NewDecoder(strings.NewReader(body))
	out := ParsedDocument{
		Paragraphs: []Paragraph{},
		Redlines:   []contracts.RedlineItem{},
	}
	var blocks []string
	var stack []string

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ParsedDocument{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" && len(stack) > 0 && stack[len(stack)-1] == "body" {
				var p node
				if err := decoder.DecodeElement(&p, &t); err != nil {
					return ParsedDocument{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
				}
				text := p.text()
				if strings.TrimSpace(text) == "" {
					continue
				}
				number := len(out.Paragraphs) + 1
				out.Paragraphs = append(out.Paragraphs, Paragraph{Number: number, Text: text})
				blocks = append(blocks, "[P"+strconv.Itoa(number)+"] "+text)
				out.Redlines = append(out.Redlines, p.redlines(number)...)
				continue
			}
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	out.Text = strings.Join(blocks, "\n\n")
	return out, nil
}

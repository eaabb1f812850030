package docx

import (
	"archive/zip"
	"bytes"
	"strings"
)

// isWordprocessingML reports whether data is a zip package holding a
// word/document.xml part.
func isWordprocessingML(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}

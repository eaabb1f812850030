// Package docxtest builds minimal DOCX packages in memory for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"html"
	"strings"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

const documentHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentTail = `<w:sectPr/></w:body></w:document>`

// Para returns a plain paragraph with a single run.
func Para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + html.EscapeString(text) + `</w:t></w:r></w:p>`
}

// Ins returns an insertion marker wrapping one run.
func Ins(author, date, text string) string {
	return `<w:ins` + revAttrs(author, date) + `><w:r><w:t>` + html.EscapeString(text) + `</w:t></w:r></w:ins>`
}

// Del returns a deletion marker wrapping one run.
func Del(author, date, text string) string {
	return `<w:del` + revAttrs(author, date) + `><w:r><w:delText>` + html.EscapeString(text) + `</w:delText></w:r></w:del>`
}

// Run returns a plain run.
func Run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + html.EscapeString(text) + `</w:t></w:r>`
}

// P wraps raw inner XML in a paragraph element.
func P(inner ...string) string {
	return `<w:p>` + strings.Join(inner, "") + `</w:p>`
}

// Paragraphs builds a package with one plain paragraph per text.
func Paragraphs(texts ...string) []byte {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, Para(t))
	}
	return Build(parts...)
}

// Build assembles a package whose body holds the given raw XML fragments.
func Build(body ...string) []byte {
	return BuildRaw(documentHead + strings.Join(body, "") + documentTail)
}

// BuildRaw assembles a package around a complete document.xml.
func BuildRaw(documentXML string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rootRels},
		{"word/_rels/document.xml.rels", documentRels},
		{"word/document.xml", documentXML},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(f.body)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func revAttrs(author, date string) string {
	var b strings.Builder
	b.WriteString(` w:id="1"`)
	if author != "" {
		b.WriteString(` w:author="` + html.EscapeString(author) + `"`)
	}
	if date != "" {
		b.WriteString(` w:date="` + html.EscapeString(date) + `"`)
	}
	return b.String()
}

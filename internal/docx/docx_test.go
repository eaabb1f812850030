package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"contract-validator/internal/contracts"
	"contract-validator/internal/docx/docxtest"
)

func TestParseNumbersNonBlankParagraphs(t *testing.T) {
	data := docxtest.Paragraphs(
		"Liability Clause",
		"",
		"The contractor shall be liable for all damages.",
		"   ",
		"Payment Terms",
		"Payment shall be made within 30 days.",
	)

	doc, err := NewReader(0, nil).Parse(context.Background(), "contract.docx", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Paragraphs) != 4 {
		t.Fatalf("expected 4 paragraphs, got %d", len(doc.Paragraphs))
	}
	want := strings.Join([]string{
		"[P1] Liability Clause",
		"[P2] The contractor shall be liable for all damages.",
		"[P3] Payment Terms",
		"[P4] Payment shall be made within 30 days.",
	}, "\n\n")
	if doc.Text != want {
		t.Fatalf("unexpected text:\n%s", doc.Text)
	}
	for i, p := range doc.Paragraphs {
		if p.Number != i+1 {
			t.Fatalf("paragraph %d numbered %d", i, p.Number)
		}
	}
	if len(doc.Redlines) != 0 {
		t.Fatalf("expected no redlines, got %d", len(doc.Redlines))
	}
}

func TestParseBlockCountMatchesNonBlankParagraphs(t *testing.T) {
	for _, n := range []int{1, 3, 12} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			var texts []string
			for i := 0; i < n; i++ {
				texts = append(texts, fmt.Sprintf("Clause %d", i+1), "")
			}
			doc, err := NewReader(0, nil).Parse(context.Background(), "c.docx", docxtest.Paragraphs(texts...))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			blocks := strings.Split(doc.Text, "\n\n")
			if len(blocks) != n {
				t.Fatalf("expected %d blocks, got %d", n, len(blocks))
			}
			last := fmt.Sprintf("[P%d] Clause %d", n, n)
			if blocks[n-1] != last {
				t.Fatalf("expected %q, got %q", last, blocks[n-1])
			}
		})
	}
}

func TestParseRedlines(t *testing.T) {
	data := docxtest.Build(
		docxtest.Para("Heading"),
		docxtest.P(
			docxtest.Run("Payment due in "),
			docxtest.Del("Alice", "2024-01-02T00:00:00Z", "30"),
			docxtest.Ins("Bob", "2024-01-03T00:00:00Z", "45"),
			docxtest.Run(" days."),
		),
		docxtest.P(
			docxtest.Run("Moved "),
			`<w:moveFrom w:id="5" w:author="Carol"><w:r><w:t>old</w:t></w:r></w:moveFrom>`,
			`<w:moveTo w:id="6" w:author="Carol"><w:r><w:t>new</w:t></w:r></w:moveTo>`,
		),
	)

	doc, err := NewReader(0, nil).Parse(context.Background(), "c.docx", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Paragraphs[1].Text != "Payment due in 45 days." {
		t.Fatalf("expected deleted text excluded, got %q", doc.Paragraphs[1].Text)
	}
	if doc.Paragraphs[2].Text != "Moved new" {
		t.Fatalf("expected moved-from text excluded, got %q", doc.Paragraphs[2].Text)
	}

	want := []contracts.RedlineItem{
		{ParagraphNumber: 2, OriginalText: "30", Author: "Alice", Date: "2024-01-02T00:00:00Z", ChangeType: contracts.ChangeDeletion},
		{ParagraphNumber: 2, ModifiedText: "45", Author: "Bob", Date: "2024-01-03T00:00:00Z", ChangeType: contracts.ChangeInsertion},
		{ParagraphNumber: 3, OriginalText: "old", Author: "Carol", Date: "Unknown", ChangeType: contracts.ChangeDeletion},
		{ParagraphNumber: 3, ModifiedText: "new", Author: "Carol", Date: "Unknown", ChangeType: contracts.ChangeInsertion},
	}
	if len(doc.Redlines) != len(want) {
		t.Fatalf("expected %d redlines, got %d: %+v", len(want), len(doc.Redlines), doc.Redlines)
	}
	for i := range want {
		if doc.Redlines[i] != want[i] {
			t.Fatalf("redline %d: expected %+v, got %+v", i, want[i], doc.Redlines[i])
		}
	}
}

func TestParseRedlineWithoutAuthorIsUnknown(t *testing.T) {
	data := docxtest.Build(docxtest.P(docxtest.Run("Term: "), docxtest.Ins("", "", "two years")))
	doc, err := NewReader(0, nil).Parse(context.Background(), "c.docx", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Redlines) != 1 {
		t.Fatalf("expected 1 redline, got %d", len(doc.Redlines))
	}
	if doc.Redlines[0].Author != "Unknown" || doc.Redlines[0].Date != "Unknown" {
		t.Fatalf("expected Unknown author/date, got %+v", doc.Redlines[0])
	}
}

func TestParseSkipsEmptyMarkersAndProperties(t *testing.T) {
	data := docxtest.Build(
		`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs><w:rPr><w:ins w:id="9" w:author="Dan"/></w:rPr></w:pPr>` +
			`<w:r><w:t>A</w:t><w:tab/><w:t>B</w:t><w:br/><w:t>C</w:t></w:r></w:p>`,
	)
	doc, err := NewReader(0, nil).Parse(context.Background(), "c.docx", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Paragraphs[0].Text != "A\tB\nC" {
		t.Fatalf("unexpected text %q", doc.Paragraphs[0].Text)
	}
	if len(doc.Redlines) != 0 {
		t.Fatalf("expected paragraph-mark revision to be ignored, got %+v", doc.Redlines)
	}
}

func TestParseIgnoresTableParagraphs(t *testing.T) {
	data := docxtest.Build(
		docxtest.Para("Body"),
		`<w:tbl><w:tr><w:tc>`+docxtest.Para("Cell")+`</w:tc></w:tr></w:tbl>`,
		docxtest.Para("After"),
	)
	doc, err := NewReader(0, nil).Parse(context.Background(), "c.docx", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Text != "[P1] Body\n\n[P2] After" {
		t.Fatalf("unexpected text %q", doc.Text)
	}
}

func TestParseRejectsInput(t *testing.T) {
	notZip := []byte("Not a DOCX file")

	var onlyNotes bytes.Buffer
	zw := zip.NewWriter(&onlyNotes)
	w, _ := zw.Create("notes.txt")
	_, _ = w.Write([]byte("hello"))
	_ = zw.Close()

	tests := []struct {
		name     string
		fileName string
		data     []byte
		reader   *Reader
		wantErr  error
	}{
		{name: "wrong extension", fileName: "contract.txt", data: docxtest.Paragraphs("x"), reader: NewReader(0, nil), wantErr: ErrUnsupportedFileType},
		{name: "no extension", fileName: "contract", data: docxtest.Paragraphs("x"), reader: NewReader(0, nil), wantErr: ErrUnsupportedFileType},
		{name: "too large", fileName: "big.docx", data: docxtest.Paragraphs(strings.Repeat("a", 2048)), reader: NewReader(100, nil), wantErr: ErrFileTooLarge},
		{name: "not a zip", fileName: "bad.docx", data: notZip, reader: NewReader(0, nil), wantErr: ErrInvalidDocument},
		{name: "zip without document", fileName: "bad.docx", data: onlyNotes.Bytes(), reader: NewReader(0, nil), wantErr: ErrInvalidDocument},
		{name: "empty", fileName: "empty.docx", data: nil, reader: NewReader(0, nil), wantErr: ErrInvalidDocument},
		{name: "malformed xml", fileName: "bad.docx", data: docxtest.BuildRaw(`<w:document xmlns:w="x"><w:body><w:p><w:r>`), reader: NewReader(0, nil), wantErr: ErrInvalidDocument},
		{name: "malformed paragraph after valid one", fileName: "bad.docx", data: docxtest.BuildRaw(`<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>ok</w:t></w:r></w:p><w:p><w:r><w:t>bad</w:r></w:p></w:body></w:document>`), reader: NewReader(0, nil), wantErr: ErrInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := tt.reader.Parse(context.Background(), tt.fileName, tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if doc.Text != "" || len(doc.Paragraphs) != 0 {
				t.Fatalf("expected no partial output, got %+v", doc)
			}
		})
	}
}

func TestParseExtensionCaseInsensitive(t *testing.T) {
	if _, err := NewReader(0, nil).Parse(context.Background(), "CONTRACT.DOCX", docxtest.Paragraphs("Agreement")); err != nil {
		t.Fatalf("expected upper-case extension to be accepted, got %v", err)
	}
}

func TestParseHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewReader(0, nil).Parse(ctx, "c.docx", docxtest.Paragraphs("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

package object

import (
	"io"
	"strings"
	"testing"
)

func TestSniffKeepsExplicitType(t *testing.T) {
	ct, r, err := Sniff("application/custom", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if ct != "application/custom" {
		t.Fatalf("unexpected type %q", ct)
	}
	b, _ := io.ReadAll(r)
	if string(b) != "hello" {
		t.Fatalf("unexpected body %q", b)
	}
}

func TestSniffReplaysHead(t *testing.T) {
	body := "PK\x03\x04" + strings.Repeat("x", 1000)
	ct, r, err := Sniff("", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if ct != "application/zip" {
		t.Fatalf("unexpected type %q", ct)
	}
	b, _ := io.ReadAll(r)
	if string(b) != body {
		t.Fatalf("body not replayed, got %d bytes", len(b))
	}
}

package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestWriteEmitsJSONLine(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("llm.paragraph.approximate", map[string]any{
		"ordinal": 3,
		"err":     errors.New("no digits"),
		"msg":     "caller value is overwritten",
	})

	line := strings.TrimSpace(buf.String())
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("expected level warn, got %v", payload["level"])
	}
	if payload["msg"] != "llm.paragraph.approximate" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["err"] != "no digits" {
		t.Fatalf("expected error to be rendered as string, got %v", payload["err"])
	}
	if payload["ordinal"] != float64(3) {
		t.Fatalf("unexpected ordinal: %v", payload["ordinal"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts")
	}
}

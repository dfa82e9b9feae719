package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestWithFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "info").With(String("comp", "runner"))

	log.Debug("hidden")
	log.Info("run finished", Int("notified", 2), Err(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if rec["comp"] != "runner" || rec["message"] != "run finished" || rec["notified"] != float64(2) {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["caller"] == nil {
		t.Fatalf("missing caller: %v", rec)
	}
}

func TestZeroValueIsNoop(t *testing.T) {
	var log Logger
	if !log.IsZero() {
		t.Fatal("zero Logger should report IsZero")
	}
	log.Info("dropped", String("k", "v"))
	log.With(String("a", "b")).Error("dropped")
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"", "debug", "INFO", " warn ", "warning", "error", "trace"} {
		if !ValidLevel(s) {
			t.Fatalf("ValidLevel(%q) = false", s)
		}
	}
	if ValidLevel("verbose") {
		t.Fatal("ValidLevel(verbose) = true")
	}
}

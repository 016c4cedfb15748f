package framework

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/MartinT518/apex-sync/pkg/integrations/garmin"
)

// captureStdout swaps the package stdout for the duration of a test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = orig })
	return &buf
}

func decodeDoc(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("stdout carried %d documents, want exactly 1: %q", len(lines), buf.String())
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &doc); err != nil {
		t.Fatalf("stdout is not a JSON document: %v", err)
	}
	return doc
}

func TestRunDateRangeSuccess(t *testing.T) {
	buf := captureStdout(t)

	code := RunDateRange("test", "usage", []string{"2025-06-01", "2025-06-03"},
		func(_ context.Context, _ *RunContext, startDate, endDate string) (any, error) {
			return map[string]any{"success": true, "start": startDate, "end": endDate}, nil
		})

	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	doc := decodeDoc(t, buf)
	if doc["success"] != true || doc["start"] != "2025-06-01" {
		t.Errorf("doc = %v", doc)
	}
}

func TestRunDateRangeWrongArity(t *testing.T) {
	buf := captureStdout(t)

	code := RunDateRange("test", "usage: test <start> <end>", []string{"2025-06-01"},
		func(context.Context, *RunContext, string, string) (any, error) {
			t.Fatal("handler must not run on bad arity")
			return nil, nil
		})

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	doc := decodeDoc(t, buf)
	if doc["success"] != false || doc["error"] != "INVALID_ARGS" {
		t.Errorf("doc = %v", doc)
	}
	if doc["message"] != "usage: test <start> <end>" {
		t.Errorf("message = %v, want the usage string", doc["message"])
	}
}

func TestRunDateRangeMalformedDates(t *testing.T) {
	buf := captureStdout(t)

	code := RunDateRange("test", "usage", []string{"June 1st", "2025-06-03"},
		func(context.Context, *RunContext, string, string) (any, error) {
			t.Fatal("handler must not run on malformed dates")
			return nil, nil
		})

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if doc := decodeDoc(t, buf); doc["error"] != "INVALID_ARGS" {
		t.Errorf("doc = %v", doc)
	}
}

func TestRunDateRangeHandlerError(t *testing.T) {
	buf := captureStdout(t)

	code := RunDateRange("test", "usage", []string{"2025-06-01", "2025-06-03"},
		func(context.Context, *RunContext, string, string) (any, error) {
			return nil, &garmin.AuthError{Err: errors.New("401")}
		})

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	doc := decodeDoc(t, buf)
	if doc["error"] != "AUTH_FAILED" {
		t.Errorf("error = %v, want AUTH_FAILED", doc["error"])
	}
}

func TestValidateDates(t *testing.T) {
	if msg, ok := validateDates("2025-06-01", "2025-06-30"); !ok {
		t.Errorf("valid dates rejected: %s", msg)
	}
	if _, ok := validateDates("2025-6-1", "2025-06-30"); ok {
		t.Error("non-padded date accepted")
	}
	if _, ok := validateDates("2025-06-01", "30/06/2025"); ok {
		t.Error("slash date accepted")
	}
}

func TestEmitInvalidArgs(t *testing.T) {
	buf := captureStdout(t)
	rc, flush := Setup("test")
	defer flush()

	if code := EmitInvalidArgs(rc, "bad flag"); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	doc := decodeDoc(t, buf)
	if doc["error"] != "INVALID_ARGS" || doc["message"] != "bad flag" {
		t.Errorf("doc = %v", doc)
	}
}

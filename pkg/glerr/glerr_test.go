package glerr

import (
	"errors"
	"strings"
	"testing"
)

func TestIsClassification(t *testing.T) {
	err := NotFound("get_or_create_node", errors.New("no rows"))
	if !Is(err, KindNotFound) {
		t.Error("expected KindNotFound")
	}
	if Is(err, KindConflict) {
		t.Error("did not expect KindConflict")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transport("get_content", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestContentNotFoundCarriesTrace(t *testing.T) {
	trace := []byte(`{"origin":"1234"}`)
	err := ContentNotFound("get_content", trace)
	if !Is(err, KindContentNotFound) {
		t.Error("expected KindContentNotFound")
	}
	if string(err.Trace) != string(trace) {
		t.Error("expected trace to round-trip on the error")
	}
}

func TestErrorMessageIncludesOpAndKind(t *testing.T) {
	err := InvalidTransition("record_audit_result", errors.New("audit is not pending"))
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty error message")
	}
	if !strings.Contains(msg, "record_audit_result") || !strings.Contains(msg, "invalid_transition") {
		t.Errorf("expected message to include op and kind, got %q", msg)
	}
}

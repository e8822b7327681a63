package effects

import (
	"errors"
	"testing"
)

func TestRecorderCollectsFailures(t *testing.T) {
	rec := NewRecorder(nil)

	calls := 0
	if !rec.Run(ActivityLog, func() error { calls++; return nil }) {
		t.Fatal("expected success")
	}
	if rec.Run(Notification, func() error { calls++; return errors.New("smtp down") }) {
		t.Fatal("expected failure")
	}
	if rec.Run(DraftQuote, func() error { calls++; panic("nil customer") }) {
		t.Fatal("expected panic to be reported as failure")
	}

	if calls != 3 {
		t.Fatalf("expected every effect to run once, got %d", calls)
	}
	warnings := rec.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}
	if warnings[0].Effect != Notification || warnings[0].Message != "smtp down" {
		t.Fatalf("unexpected first warning %+v", warnings[0])
	}
	if warnings[1].Effect != DraftQuote {
		t.Fatalf("unexpected second warning %+v", warnings[1])
	}
}

func TestRecorderWarningsNeverNil(t *testing.T) {
	if NewRecorder(nil).Warnings() == nil {
		t.Fatal("expected empty slice")
	}
}

package errors

import (
	"fmt"
	"testing"
)

func TestSessionErrorFormatting(t *testing.T) {
	err := NewSessionError("send-keys failed", ErrTmuxUnavailable).WithSession("video")

	want := "session error [session=video]: send-keys failed: tmux unavailable"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !Is(err, ErrTmuxUnavailable) {
		t.Error("expected error to match ErrTmuxUnavailable")
	}
}

func TestBootstrapErrorMatchesSentinel(t *testing.T) {
	err := NewBootstrapError("symlink failed", fmt.Errorf("permission denied")).WithStep("dns-link")

	if !Is(err, ErrBootstrapFailed) {
		t.Error("expected BootstrapError to match ErrBootstrapFailed")
	}

	var berr *BootstrapError
	if !As(err, &berr) {
		t.Fatal("expected errors.As to find *BootstrapError")
	}
	if berr.Step != "dns-link" {
		t.Errorf("Step = %q, want %q", berr.Step, "dns-link")
	}
}

func TestValidationErrorFields(t *testing.T) {
	err := NewValidationError("name is not unique").
		WithField("name").
		WithValue("video")

	want := "validation error [field=name, value=video]: name is not unique"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestGetSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{"nil", nil, SeverityDegraded},
		{"session error", NewSessionError("x", nil), SeverityFatal},
		{"bootstrap error", NewBootstrapError("x", nil), SeverityFatal},
		{"validation error", NewValidationError("x"), SeverityFatal},
		{"unknown error", fmt.Errorf("mystery"), SeverityFatal},
		{"wrapped domain error", Wrap(NewSessionError("x", nil), "outer"), SeverityFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSeverity(tt.err); got != tt.want {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("nil error should not be fatal")
	}
	if !IsFatal(NewBootstrapError("x", nil)) {
		t.Error("bootstrap error should be fatal")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

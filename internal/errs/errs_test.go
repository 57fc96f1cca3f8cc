package errs

import (
	"errors"
	"testing"
)

func TestExitCode_IoAndWalkAre74(t *testing.T) {
	for _, k := range []Kind{Io, Walk} {
		err := New(k, "some/path", errors.New("boom"))
		if got := ExitCode(err); got != 74 {
			t.Fatalf("ExitCode(%v) = %d, want 74", k, got)
		}
	}
}

func TestExitCode_BadPathIsOne(t *testing.T) {
	err := New(BadPath, "x", errors.New("boom"))
	if got := ExitCode(err); got != 1 {
		t.Fatalf("ExitCode(BadPath) = %d, want 1", got)
	}
}

func TestExitCode_NilIsZero(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("ExitCode(nil) = %d, want 0", got)
	}
}

func TestExitCode_UnwrappedErrorFallsBackToOne(t *testing.T) {
	if got := ExitCode(errors.New("unstructured")); got != 1 {
		t.Fatalf("ExitCode(plain error) = %d, want 1", got)
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("underlying")
	err := New(Io, "f.txt", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}

func TestError_MessageIncludesPath(t *testing.T) {
	err := New(Walk, "a/b", errors.New("denied"))
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty error message")
	}
}

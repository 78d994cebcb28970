package errs

import (
	"errors"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := New(AllocFailed, cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true")
	}
	var target *Error
	if !errors.As(err, &target) {
		t.Fatalf("errors.As failed to recover *Error")
	}
	if target.Kind != AllocFailed {
		t.Errorf("Kind = %v, want %v", target.Kind, AllocFailed)
	}
}

func TestErrorMessageWithSubKind(t *testing.T) {
	err := NewSub(AllocFailed, SubKindNoContiguousRun, errors.New("exhausted retries"))
	want := "alloc-failed/no-contiguous-run: exhausted retries"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestKindIsFatal(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{Config, true},
		{AllocFailed, true},
		{Affinity, false},
		{UnknownPattern, true},
		{ChainBuildTimeout, true},
		{KernelIoctl, true},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			if got := c.kind.IsFatal(); got != c.want {
				t.Errorf("IsFatal() = %v, want %v", got, c.want)
			}
		})
	}
}

package reliability

import (
	"errors"
	"fmt"
	"testing"
)

func TestUpstreamErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("signed url: %w", &UpstreamError{Status: 403, Body: "bad key"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("errors.Is(err, ErrUpstream) = false, want true")
	}
	if errors.Is(err, ErrConfiguration) {
		t.Fatalf("errors.Is(err, ErrConfiguration) = true, want false")
	}
	if got := UpstreamStatus(err); got != 403 {
		t.Fatalf("UpstreamStatus() = %d, want 403", got)
	}
}

func TestUpstreamStatusWithoutUpstreamError(t *testing.T) {
	if got := UpstreamStatus(fmt.Errorf("%w: dial", ErrUpstream)); got != 0 {
		t.Fatalf("UpstreamStatus() = %d, want 0", got)
	}
	if got := UpstreamStatus(nil); got != 0 {
		t.Fatalf("UpstreamStatus(nil) = %d, want 0", got)
	}
}

package reliability

import (
	"errors"
	"fmt"
)

// Failure classes shared by the provisioning and broker flows. Callers wrap
// the underlying cause with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrProvisioning  = errors.New("room provisioning failed")
	ErrSigning       = errors.New("token signing failed")
	ErrDispatch      = errors.New("agent dispatch failed")
	ErrUpstream      = errors.New("upstream request failed")
)

// UpstreamError carries a non-success upstream response. Body is kept for
// server-side logging only and must not be written to clients.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Status)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// UpstreamStatus returns the upstream HTTP status carried by err, or 0.
func UpstreamStatus(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status
	}
	return 0
}

package reliability

import "strconv"

// IsSuccessStatus reports whether an upstream HTTP status counts as success.
func IsSuccessStatus(code int) bool {
	return code >= 200 && code < 300
}

// StatusClass buckets an upstream HTTP status for metric labels.
// A zero code means no response was received.
func StatusClass(code int) string {
	switch {
	case code == 0:
		return "transport_error"
	case code < 100 || code > 599:
		return "invalid"
	default:
		return strconv.Itoa(code/100) + "xx"
	}
}

package policy

import (
	"net/url"
	"strings"
)

const revealPrefix = 6

// MaskSecret keeps a short prefix of a bearer value so log lines can be
// correlated without making the credential usable.
func MaskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	if len(secret) <= revealPrefix*2 {
		return "[REDACTED]"
	}
	return secret[:revealPrefix] + "…[REDACTED]"
}

// RedactURL drops the query string, fragment and userinfo of a URL. Signed
// connection URLs carry their credential in the query.
func RedactURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[REDACTED_URL]"
	}
	u.User = nil
	if u.RawQuery != "" {
		u.RawQuery = "redacted"
	}
	u.Fragment = ""
	return u.String()
}

// Truncate bounds upstream bodies before they are logged.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}

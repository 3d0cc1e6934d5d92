package policy

import (
	"strings"
	"testing"
)

func TestMaskSecret(t *testing.T) {
	token := "eyJhbGciOiJIUzI1NiJ9.payload.signature"
	out := MaskSecret(token)
	if strings.Contains(out, "signature") {
		t.Fatalf("MaskSecret leaked token tail: %q", out)
	}
	if !strings.HasPrefix(out, "eyJhbG") {
		t.Fatalf("MaskSecret(%q) = %q, want prefix kept", token, out)
	}
	if got := MaskSecret("short"); got != "[REDACTED]" {
		t.Fatalf("MaskSecret(short) = %q, want fully redacted", got)
	}
	if got := MaskSecret("   "); got != "" {
		t.Fatalf("MaskSecret(blank) = %q, want empty", got)
	}
}

func TestRedactURL(t *testing.T) {
	in := "wss://api.elevenlabs.io/v1/convai/conversation?agent_id=a1&conversation_signature=secret#frag"
	out := RedactURL(in)
	if strings.Contains(out, "secret") || strings.Contains(out, "frag") {
		t.Fatalf("RedactURL leaked credential: %q", out)
	}
	if !strings.HasPrefix(out, "wss://api.elevenlabs.io/v1/convai/conversation") {
		t.Fatalf("RedactURL(%q) = %q, want host and path kept", in, out)
	}
	if got := RedactURL("https://user:pw@example.test/x"); strings.Contains(got, "pw") {
		t.Fatalf("RedactURL kept userinfo: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("  abcdef  ", 3); got != "abc…" {
		t.Fatalf("Truncate() = %q, want %q", got, "abc…")
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("Truncate() = %q, want %q", got, "abc")
	}
}

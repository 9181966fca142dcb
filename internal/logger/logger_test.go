package logger

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRedactToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty", "", ""},
		{"short token fully masked", "abc", "[redacted]"},
		{"boundary length fully masked", "12345678", "[redacted]"},
		{"long token keeps prefix", "tok_abcdef123456", "tok_ab...[redacted]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RedactToken(tc.token); got != tc.want {
				t.Errorf("RedactToken(%q) = %q, want %q", tc.token, got, tc.want)
			}
		})
	}
}

func TestRedactTokenNeverEchoesSecret(t *testing.T) {
	secret := "tok_supersecretvalue"
	if redacted := RedactToken(secret); strings.Contains(redacted, "supersecret") {
		t.Errorf("redaction leaked the secret: %q", redacted)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf strings.Builder
	log := zerolog.New(&buf)

	ctx := WithContext(context.Background(), log)
	got := FromContext(ctx)
	got.Info().Msg("hello")

	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected context logger to write, got %q", buf.String())
	}
}

func TestFromContextFallsBackToNop(t *testing.T) {
	log := FromContext(context.Background())
	// A disabled logger must not panic on use
	log.Info().Msg("discarded")

	if log.GetLevel() != zerolog.Disabled {
		t.Errorf("expected disabled logger, got level %v", log.GetLevel())
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("expected empty id for bare context, got %q", got)
	}
}

package observability

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger_JSONWithLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "prod", "warn")

	l.Info().Msg("hidden")
	l.Warn().Str("collection", "reviews").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"collection":"reviews"`) || !strings.Contains(out, `"service":"dealership-reviews"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

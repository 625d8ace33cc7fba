package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitOnceAndComponent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "debug", Service: "campusconnect", Output: &buf})
	Init(Options{Level: "error", Output: &bytes.Buffer{}})

	l := Component("notify")
	l.Debug().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one json line, got %q: %v", buf.String(), err)
	}
	if line["service"] != "campusconnect" || line["component"] != "notify" || line["message"] != "hello" {
		t.Fatalf("unexpected fields: %v", line)
	}
}

func TestGetBeforeInit(t *testing.T) {
	Reset()
	l := Get()
	l.Info().Msg("dropped")
	if l.GetLevel() != zerolog.Disabled {
		t.Fatalf("expected disabled logger before Init, got %v", l.GetLevel())
	}
}

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestComponentAttribute(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Level: slog.LevelDebug, Component: "service"})

	l.Info("session opened", "user", "u1")
	l.WithComponent("bot").Warn("slow update")
	l.With("op", "delete").Debug("remote call")

	out := buf.String()
	for _, want := range []string{
		"component=service", "user=u1", "component=bot", "op=delete", "msg=\"remote call\"",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Level: slog.LevelWarn})
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered, got %q", buf.String())
	}
	if l.Component() != "app" {
		t.Fatalf("default component = %q", l.Component())
	}
}

package logger

import (
	"context"
	"testing"
)

func TestInitFormats(t *testing.T) {
	for _, format := range []string{"text", "json", "", "bogus"} {
		if err := Init(format); err != nil {
			t.Fatalf("Init(%q) failed: %v", format, err)
		}
		if Get() == nil {
			t.Fatalf("logger is nil after Init(%q)", format)
		}
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init("text"); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	l := Get()
	l.Debug(ctx, "debug message", String("k", "v"))
	l.Info(ctx, "info message", Int("n", 1), Float64("f", 2.5))
	l.Warn(ctx, "warn message", Bool("flag", true))
	l.Error(ctx, "error message", Error(nil))
}

func TestLoggerNamed(t *testing.T) {
	if err := Init("json"); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	named := Named("segmenter")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(context.Background(), "named message", String("cohort", "new_players"))
}

func TestSetLevelString(t *testing.T) {
	if err := Init("text"); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	for _, level := range []string{"debug", "info", "warn", "warning", "error", ""} {
		if err := SetLevelString(level); err != nil {
			t.Errorf("SetLevelString(%q) failed: %v", level, err)
		}
	}

	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

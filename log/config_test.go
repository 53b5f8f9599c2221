package log

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestConfig_Options(t *testing.T) {
	c := apply(config{},
		WithLevel(LevelWarn),
		WithFormat(FormatJSON),
		WithCaller(true),
		WithPretty(false),
	)

	if c.level != LevelWarn {
		t.Errorf("level = %v, want %v", c.level, LevelWarn)
	}

	if c.format != FormatJSON {
		t.Errorf("format = %v, want %v", c.format, FormatJSON)
	}

	if !c.caller {
		t.Error("caller = false, want true")
	}

	if c.pretty {
		t.Error("pretty = true, want false")
	}
}

func TestConfig_WithOutput_NilDiscards(t *testing.T) {
	c := WithOutput(nil)(config{})
	if c.output == nil {
		t.Fatal("expected non-nil output for nil writer")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warn ", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	got := slices.Collect(Levels())
	want := []string{"debug", "info", "warn", "error"}

	if !slices.Equal(got, want) {
		t.Errorf("Levels() = %v, want %v", got, want)
	}

	if s := (LevelInfo + 2).String(); s != "INFO+2" {
		t.Errorf("(LevelInfo+2).String() = %q, want %q", s, "INFO+2")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFormat(tt.in); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestConfig_formatTime(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"rfc3339", "RFC3339", "2023-10-15T14:30:45Z"},
		{"rfc3339 nano", "RFC3339Nano", "2023-10-15T14:30:45.123456789Z"},
		{"kitchen", "kitchen", "2:30PM"},
		{"custom", "2006.01.02", "2023.10.15"},
		{"none", "none", ""},
		{"empty", "", ""},
		{"whitespace", "  \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := WithTimeLayout(tt.layout)(config{})
			if got := c.formatTime(now); got != tt.want {
				t.Errorf("formatTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_formatTime_UnknownNameIsLayout(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 0, time.UTC)
	c := WithTimeLayout("UNKNOWN_FORMAT")(config{})

	if got := c.formatTime(now); !strings.Contains(got, "UNKNOWN_FORMAT") {
		t.Errorf("formatTime() = %q, want verbatim layout text", got)
	}
}

package cli

import (
	"testing"
)

func TestParseArgs_ValidArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected Config
	}{
		{
			name: "defaults",
			args: []string{},
			expected: Config{
				Path:     "",
				Seed:     0,
				LogLevel: "info",
			},
		},
		{
			name: "path only",
			args: []string{"castle.des"},
			expected: Config{
				Path:     "castle.des",
				Seed:     0,
				LogLevel: "info",
			},
		},
		{
			name: "seed flag",
			args: []string{"-seed", "42", "castle.des"},
			expected: Config{
				Path:     "castle.des",
				Seed:     42,
				LogLevel: "info",
			},
		},
		{
			name: "seed short form",
			args: []string{"-s", "7", "castle.des"},
			expected: Config{
				Path:     "castle.des",
				Seed:     7,
				LogLevel: "info",
			},
		},
		{
			name: "log level",
			args: []string{"--log-level", "debug"},
			expected: Config{
				Path:     "",
				Seed:     0,
				LogLevel: "debug",
			},
		},
		{
			name: "log level short form",
			args: []string{"-l", "error"},
			expected: Config{
				Path:     "",
				Seed:     0,
				LogLevel: "error",
			},
		},
		{
			name: "run flag",
			args: []string{"-run", "castle.des"},
			expected: Config{
				Path:     "castle.des",
				Seed:     0,
				LogLevel: "info",
				Run:      true,
			},
		},
		{
			name: "dump flag",
			args: []string{"-dump", "castle.des"},
			expected: Config{
				Path:     "castle.des",
				Seed:     0,
				LogLevel: "info",
				Dump:     true,
			},
		},
		{
			name: "flags after the positional argument",
			args: []string{"castle.des", "-run", "-seed", "3"},
			expected: Config{
				Path:     "castle.des",
				Seed:     3,
				LogLevel: "info",
				Run:      true,
			},
		},
		{
			name: "help flag",
			args: []string{"-h"},
			expected: Config{
				Path:     "",
				Seed:     0,
				LogLevel: "info",
				ShowHelp: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *config != tt.expected {
				t.Errorf("got %+v, want %+v", *config, tt.expected)
			}
		})
	}
}

func TestParseArgs_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "negative seed", args: []string{"-seed", "-5"}},
		{name: "invalid log level", args: []string{"-l", "loud"}},
		{name: "unknown flag", args: []string{"-frobnicate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseArgs(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseArgs_EnvFallbacks(t *testing.T) {
	t.Run("SEED applies when flag absent", func(t *testing.T) {
		t.Setenv("SEED", "99")
		config, err := ParseArgs([]string{"castle.des"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Seed != 99 {
			t.Errorf("Seed = %d, want 99", config.Seed)
		}
	})

	t.Run("seed flag takes precedence over SEED", func(t *testing.T) {
		t.Setenv("SEED", "99")
		config, err := ParseArgs([]string{"-seed", "5", "castle.des"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Seed != 5 {
			t.Errorf("Seed = %d, want 5", config.Seed)
		}
	})

	t.Run("LOG_LEVEL applies when flag absent", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "DEBUG")
		config, err := ParseArgs([]string{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want %q", config.LogLevel, "debug")
		}
	})

	t.Run("log level flag takes precedence over LOG_LEVEL", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "error")
		config, err := ParseArgs([]string{"-l", "warn"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.LogLevel != "warn" {
			t.Errorf("LogLevel = %q, want %q", config.LogLevel, "warn")
		}
	})
}

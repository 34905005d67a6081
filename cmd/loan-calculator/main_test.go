package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(viper.New())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    config.LoggingConfig
		override  string
		wantError bool
	}{
		{"Defaults", config.LoggingConfig{}, "", false},
		{"Console debug", config.LoggingConfig{Level: "debug", Format: "console"}, "", false},
		{"Override level", config.LoggingConfig{Level: "debug"}, "warning", false},
		{"Invalid level", config.LoggingConfig{Level: "loud"}, "", true},
		{"Invalid override", config.LoggingConfig{}, "verbose", true},
		{"Invalid format", config.LoggingConfig{Format: "xml"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.config, tt.override)
			if tt.wantError {
				if err == nil {
					t.Errorf("initializeLogger() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			if logger == nil {
				t.Fatalf("initializeLogger() returned nil logger")
			}
		})
	}
}

func TestInitializeLoggerIgnoresCase(t *testing.T) {
	conf, err := config.LoadConfigurationFromReader(strings.NewReader("logging:\n  level: DEBUG\n  format: JSON\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	logger, err := initializeLogger(conf.Logging, "")
	if err != nil {
		t.Fatalf("initializeLogger() error = %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("expected debug logging to be enabled")
	}

	logger, err = initializeLogger(config.LoggingConfig{Level: "Info", Format: " Console "}, " WARN ")
	if err != nil {
		t.Fatalf("initializeLogger() error = %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) || !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Errorf("expected the override to set warn level")
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "loan-calculator.log")
	logger, err := initializeLogger(config.LoggingConfig{Level: "info", Format: "json", OutputFile: path}, "")
	if err != nil {
		t.Fatalf("initializeLogger() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestCalculateCommandPretty(t *testing.T) {
	out, err := execute(t, "calculate", "--amount", "100,000", "--rate", "5", "--years", "30")
	if err != nil {
		t.Fatalf("calculate error = %v", err)
	}
	for _, want := range []string{"Monthly payment | $536.82", "Total payment   | $193,255.78", "Total interest  | $93,255.78"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCalculateCommandScheduleCSV(t *testing.T) {
	out, err := execute(t, "calculate", "--amount", "200000", "--rate", "6", "--years", "15", "--schedule", "--output-format", "csv")
	if err != nil {
		t.Fatalf("calculate error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 181 {
		t.Fatalf("expected header plus 180 rows, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "1,1687.71,") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.HasSuffix(lines[180], ",0.00") {
		t.Errorf("final balance not zero: %q", lines[180])
	}
}

func TestCalculateCommandExtraJSON(t *testing.T) {
	out, err := execute(t, "calculate", "--amount", "100000", "--rate", "5", "--years", "30",
		"--extra", "5000", "--extra-mode", "one-time", "--start", "2025-01", "--output-format", "json")
	if err != nil {
		t.Fatalf("calculate error = %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if report.Extra == nil {
		t.Fatalf("expected extra payment section")
	}
	impact := report.Extra.Impact
	if impact.Extra.Mode != "one-time" || impact.MonthsSaved <= 0 {
		t.Errorf("unexpected impact %+v", impact)
	}
	if impact.Schedule != nil || report.Schedule != nil {
		t.Errorf("schedule included without --schedule")
	}
	if impact.PayoffDate == "" {
		t.Errorf("expected payoff month with --start")
	}
}

func TestCalculateCommandPayoffTarget(t *testing.T) {
	out, err := execute(t, "calculate", "--amount", "100000", "--rate", "5", "--years", "30",
		"--target-months", "180", "--output-format", "json")
	if err != nil {
		t.Fatalf("calculate error = %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if report.Target == nil {
		t.Fatalf("expected payoff target section")
	}
	if report.Target.Payments != 180 || report.Target.Extra < 253 || report.Target.Extra > 255 {
		t.Errorf("unexpected payoff target %+v", report.Target)
	}

	if _, err := execute(t, "calculate", "--amount", "100000", "--rate", "5", "--years", "30",
		"--target-months", "180", "--extra", "100"); err == nil {
		t.Errorf("expected --extra and --target-months to be mutually exclusive")
	}
}

func TestCalculateCommandInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Negative amount", []string{"--amount", "-5", "--rate", "5", "--years", "30"}},
		{"Text rate", []string{"--amount", "5000", "--rate", "five", "--years", "30"}},
		{"Zero extra", []string{"--amount", "5000", "--rate", "5", "--years", "30", "--extra", "0"}},
		{"Bad extra mode", []string{"--amount", "5000", "--rate", "5", "--years", "30", "--extra", "10", "--extra-mode", "weekly"}},
		{"Zero target", []string{"--amount", "5000", "--rate", "5", "--years", "30", "--target-months", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"calculate"}, tt.args...)...)
			if !errors.Is(err, validation.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCalculateCommandRequiresFlags(t *testing.T) {
	if _, err := execute(t, "calculate", "--amount", "1000"); err == nil {
		t.Errorf("expected error for missing required flags")
	}
}

func TestCalculateCommandBadOutputFormat(t *testing.T) {
	if _, err := execute(t, "calculate", "--amount", "1000", "--rate", "5", "--years", "1", "--output-format", "xml"); err == nil {
		t.Errorf("expected error for unknown output format")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "loan-calculator dev") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  safetyFactor: 4\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	out, err := execute(t, "--config", path, "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if !strings.Contains(out, "safetyFactor: 4") {
		t.Errorf("config output missing override:\n%s", out)
	}

	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "config"); err == nil {
		t.Errorf("expected error for missing explicit config file")
	}
}

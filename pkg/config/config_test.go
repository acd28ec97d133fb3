package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildDefaults(t *testing.T) {
	cfg, err := Build(writeConfig(t, "spreadsheet_id: sheet-123\n"), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if cfg.SpreadsheetID != "sheet-123" {
		t.Errorf("unexpected spreadsheet id: %q", cfg.SpreadsheetID)
	}
	if cfg.CredentialsEnv != "GSA_CREDENTIALS" {
		t.Errorf("unexpected credentials env: %q", cfg.CredentialsEnv)
	}
	if cfg.AppWorksheet != "APP" || cfg.TrierWorksheet != "APP_TRIER" || cfg.OutputWorksheet != "APPXTRIER" {
		t.Errorf("unexpected worksheet defaults: %+v", cfg)
	}
	if cfg.ValueTolerance != 0.15 || cfg.TimeToleranceMinutes != 5 || !cfg.MatchByTime {
		t.Errorf("unexpected tolerance defaults: %+v", cfg)
	}
}

func TestBuildFileOverrides(t *testing.T) {
	content := "value_tolerance: 0.50\ntime_tolerance_minutes: 10\nmatch_by_time: false\n"
	cfg, err := Build(writeConfig(t, content), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.ValueTolerance != 0.50 || cfg.TimeToleranceMinutes != 10 || cfg.MatchByTime {
		t.Errorf("file values did not land: %+v", cfg)
	}
}

func TestBuildFlagOverrides(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("value-tolerance", 0.15, "")
	flags.Int("time-tolerance", 5, "")
	flags.Bool("match-by-time", true, "")
	flags.String("spreadsheet", "", "")
	if err := flags.Parse([]string{"--value-tolerance=0.30", "--spreadsheet=flag-sheet"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Build(writeConfig(t, "value_tolerance: 0.99\nspreadsheet_id: file-sheet\n"), flags)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.ValueTolerance != 0.30 {
		t.Errorf("changed flag must beat the file, got %v", cfg.ValueTolerance)
	}
	if cfg.SpreadsheetID != "flag-sheet" {
		t.Errorf("changed flag must beat the file, got %q", cfg.SpreadsheetID)
	}
	// Unchanged flags never shadow the file or the defaults.
	if cfg.TimeToleranceMinutes != 5 {
		t.Errorf("unexpected time tolerance: %d", cfg.TimeToleranceMinutes)
	}
}

func TestBuildEnvOverride(t *testing.T) {
	t.Setenv("APPTRIER_SPREADSHEET_ID", "env-sheet")

	cfg, err := Build(writeConfig(t, ""), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.SpreadsheetID != "env-sheet" {
		t.Errorf("environment value did not land: %q", cfg.SpreadsheetID)
	}
}

func TestBuildRejectsBadTolerances(t *testing.T) {
	if _, err := Build(writeConfig(t, "value_tolerance: 0\n"), nil); err == nil {
		t.Error("expected an error for a zero value tolerance")
	}
	if _, err := Build(writeConfig(t, "time_tolerance_minutes: -1\n"), nil); err == nil {
		t.Error("expected an error for a negative time tolerance")
	}

	// A disabled time check tolerates a zero time tolerance.
	cfg, err := Build(writeConfig(t, "match_by_time: false\ntime_tolerance_minutes: 0\n"), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.MatchByTime {
		t.Error("match_by_time should be off")
	}
}

func TestMatchOptions(t *testing.T) {
	cfg := &Config{ValueTolerance: 0.15, TimeToleranceMinutes: 5, MatchByTime: true}

	opts := cfg.MatchOptions()
	if opts.ValueTolerance.StringFixed(2) != "0.15" {
		t.Errorf("unexpected value tolerance: %s", opts.ValueTolerance)
	}
	if opts.TimeToleranceMinutes != 5 || !opts.MatchByTime {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestCredentials(t *testing.T) {
	cfg := &Config{CredentialsEnv: "TEST_GSA_CREDENTIALS"}

	if _, err := cfg.Credentials(); err == nil {
		t.Error("expected an error when the variable is unset")
	}

	t.Setenv("TEST_GSA_CREDENTIALS", `{"type":"service_account"}`)
	raw, err := cfg.Credentials()
	if err != nil {
		t.Fatalf("Credentials failed: %v", err)
	}
	if string(raw) != `{"type":"service_account"}` {
		t.Errorf("unexpected credentials payload: %q", raw)
	}
}

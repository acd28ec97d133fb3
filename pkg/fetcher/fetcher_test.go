package fetcher

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestReportRange(t *testing.T) {
	day := func(s string) time.Time {
		t.Helper()
		d, err := time.Parse("02/01/2006", s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	// Tuesday run covers Monday.
	start, end := ReportRange(day("11/08/2026"))
	if !start.Equal(day("10/08/2026")) || !end.Equal(day("10/08/2026")) {
		t.Errorf("weekday run: expected 10/08 only, got %s to %s", start, end)
	}

	// Monday run reaches back through Sunday to Saturday.
	start, end = ReportRange(day("10/08/2026"))
	if !start.Equal(day("08/08/2026")) {
		t.Errorf("monday run should start on Saturday, got %s", start)
	}
	if !end.Equal(day("09/08/2026")) {
		t.Errorf("monday run should end on Sunday, got %s", end)
	}
}

func TestLoadPortal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	content := "url: https://portal.example.com\ncard_codes: [\"1\", \"9\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPortal(path)
	if err != nil {
		t.Fatalf("LoadPortal failed: %v", err)
	}
	if p.URL != "https://portal.example.com" {
		t.Errorf("unexpected url: %q", p.URL)
	}
	if !reflect.DeepEqual(p.CardCodes, []string{"1", "9"}) {
		t.Errorf("unexpected card codes: %v", p.CardCodes)
	}
	if p.UserEnv != "trier_user" || p.PasswordEnv != "trier_password" {
		t.Errorf("unexpected credential defaults: %q %q", p.UserEnv, p.PasswordEnv)
	}
	if p.DownloadDir != "." {
		t.Errorf("unexpected download dir default: %q", p.DownloadDir)
	}
}

func TestLoadPortalDefaultsCardCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	if err := os.WriteFile(path, []byte("url: https://portal.example.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPortal(path)
	if err != nil {
		t.Fatalf("LoadPortal failed: %v", err)
	}
	if !reflect.DeepEqual(p.CardCodes, defaultCardCodes) {
		t.Errorf("expected default card codes, got %v", p.CardCodes)
	}
}

func TestLoadPortalMissingURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	if err := os.WriteFile(path, []byte("user_env: foo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadPortal(path); err == nil {
		t.Error("expected an error for a portal file without url")
	}
	if _, err := LoadPortal(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestPortalCredentials(t *testing.T) {
	p := &Portal{UserEnv: "TEST_TRIER_USER", PasswordEnv: "TEST_TRIER_PASSWORD"}

	if _, _, err := p.Credentials(); err == nil {
		t.Error("expected an error when the environment is empty")
	}

	t.Setenv("TEST_TRIER_USER", "operator")
	t.Setenv("TEST_TRIER_PASSWORD", "s3cret")
	user, password, err := p.Credentials()
	if err != nil {
		t.Fatalf("Credentials failed: %v", err)
	}
	if user != "operator" || password != "s3cret" {
		t.Errorf("unexpected credentials: %q %q", user, password)
	}
}

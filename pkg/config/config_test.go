package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type sampleConfig struct {
	Addr    string        `envconfig:"ADDR" split_words:"true" default:":8080"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
	Mode    string        `envconfig:"MODE" split_words:"true"`
}

func (c sampleConfig) Validate() error {
	if c.Mode == "broken" {
		return errors.New("mode must not be broken")
	}
	return nil
}

type requiredConfig struct {
	Key string `envconfig:"KEY" split_words:"true" required:"true"`
}

func TestNewAppliesDefaultsAndEnv(t *testing.T) {
	t.Setenv("SAMPLE_TIMEOUT", "2s")

	conf, err := New[sampleConfig]("SAMPLE")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Addr != ":8080" {
		t.Fatalf("Addr = %q, want :8080", conf.Addr)
	}
	if conf.Timeout != 2*time.Second {
		t.Fatalf("Timeout = %v, want 2s", conf.Timeout)
	}
}

func TestNewRunsValidate(t *testing.T) {
	t.Setenv("CHECKED_MODE", "broken")

	_, err := New[sampleConfig]("CHECKED")
	if err == nil || !strings.Contains(err.Error(), "invalid CHECKED config") {
		t.Fatalf("New() error = %v, want validation failure", err)
	}
}

func TestNewRequiredField(t *testing.T) {
	t.Setenv("MISSING_KEY", "")
	os.Unsetenv("MISSING_KEY")

	if _, err := New[requiredConfig]("MISSING"); err == nil {
		t.Fatal("expected error for missing required key")
	}
}

func TestExportEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("EXPORTED_KEY=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("EXPORTED_KEY", "")

	if err := exportEnvironment(path); err != nil {
		t.Fatalf("exportEnvironment() error = %v", err)
	}
	if got := os.Getenv("EXPORTED_KEY"); got != "from-file" {
		t.Fatalf("EXPORTED_KEY = %q, want from-file", got)
	}
}

func TestExportEnvironmentIfExistsMissingFile(t *testing.T) {
	if err := exportEnvironmentIfExists(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("exportEnvironmentIfExists() error = %v", err)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("FOLIO_TEST_NAME", "from-env")
	path := writeYAML(t, "name: ${FOLIO_TEST_NAME}\nport: 80\n")
	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" {
		t.Errorf("name = %q", s.Name)
	}
}

func TestLoad_RunsValidator(t *testing.T) {
	path := writeYAML(t, "name: x\n")
	var s sample
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "port is required") {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeYAML(t, "name: x\nport: 1\nprot: 2\n")
	var s sample
	if err := Load(path, &s); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &s); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadLiteral_KeepsDollarSigns(t *testing.T) {
	t.Setenv("FOLIO_TEST_NAME", "from-env")
	path := writeYAML(t, "name: \"$5 off ${FOLIO_TEST_NAME} $HOME\"\nport: 80\n")
	var s sample
	if err := LoadLiteral(path, &s); err != nil {
		t.Fatalf("LoadLiteral: %v", err)
	}
	if want := "$5 off ${FOLIO_TEST_NAME} $HOME"; s.Name != want {
		t.Errorf("name = %q, want %q", s.Name, want)
	}
}

func TestLoadLiteral_RunsValidatorAndRejectsUnknownKeys(t *testing.T) {
	var s sample
	if err := LoadLiteral(writeYAML(t, "name: x\n"), &s); err == nil || !strings.Contains(err.Error(), "port is required") {
		t.Fatalf("err = %v, want validation failure", err)
	}
	if err := LoadLiteral(writeYAML(t, "name: x\nport: 1\nprot: 2\n"), &s); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

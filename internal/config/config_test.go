package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvCatalog, EnvSeed, EnvLogLevel} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.CatalogPath() != "" {
		t.Fatalf("expected bundled catalog, got %q", c.CatalogPath())
	}
	if c.LogLevel() != "info" {
		t.Fatalf("log level = %q, want info", c.LogLevel())
	}
	want := filepath.Join(projectDir, AppDir, "logs", "session.log")
	if c.LogFile() != want {
		t.Fatalf("log file = %q, want %q", c.LogFile(), want)
	}
}

func TestInitDirWritesDefaultConfig(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(projectDir, AppDir, "logs")); err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("default config failed to load: %v", err)
	}
	if c.Seed() != 0 || c.CatalogPath() != "" {
		t.Fatalf("unexpected defaults: seed=%d catalog=%q", c.Seed(), c.CatalogPath())
	}
	// a second init must keep user edits
	path := c.ProjectConfigPath()
	if err := os.WriteFile(path, []byte("version: 1\nsampling:\n  seed: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("second InitDir returned error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "seed: 5") {
		t.Fatalf("InitDir overwrote existing config: %s", data)
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	appDir := filepath.Join(projectDir, AppDir)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
catalog:
  path: data/idols.yaml
sampling:
  seed: 42
logging:
  level: DEBUG
  file: /tmp/idolmbti-test.log
`)
	if err := os.WriteFile(filepath.Join(appDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if want := filepath.Join(projectDir, "data", "idols.yaml"); c.CatalogPath() != want {
		t.Fatalf("catalog path = %q, want %q", c.CatalogPath(), want)
	}
	if c.Seed() != 42 {
		t.Fatalf("seed = %d, want 42", c.Seed())
	}
	if c.LogLevel() != "debug" {
		t.Fatalf("log level = %q, want debug", c.LogLevel())
	}
	if c.LogFile() != "/tmp/idolmbti-test.log" {
		t.Fatalf("log file = %q", c.LogFile())
	}
}

func TestNewConfigValidation(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"bad level":     "version: 1\nlogging:\n  level: loud\n",
		"negative seed": "version: 1\nsampling:\n  seed: -3\n",
		"bad version":   "version: -1\n",
		"broken yaml":   "version: [1\n",
	}
	for name, body := range cases {
		projectDir := t.TempDir()
		appDir := filepath.Join(projectDir, AppDir)
		if err := os.MkdirAll(appDir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(appDir, "config.yaml"), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewConfig(projectDir); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	t.Setenv(EnvCatalog, "custom.json")
	t.Setenv(EnvSeed, "7")
	t.Setenv(EnvLogLevel, "WARN")
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if want := filepath.Join(projectDir, "custom.json"); c.CatalogPath() != want {
		t.Fatalf("catalog = %q, want %q", c.CatalogPath(), want)
	}
	if c.Seed() != 7 || c.LogLevel() != "warn" {
		t.Fatalf("seed=%d level=%q", c.Seed(), c.LogLevel())
	}

	t.Setenv(EnvSeed, "abc")
	if _, err := NewConfig(projectDir); err == nil {
		t.Fatalf("expected error for non-numeric seed")
	}
}

func TestDotEnvFileIsRead(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(projectDir, ".env"), []byte(EnvSeed+"=11\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Seed() != 11 {
		t.Fatalf("seed = %d, want 11 from .env", c.Seed())
	}
}

// internal/config/config.go
//
// This package handles configuration and the .idolmbti directory structure.
// Every project directory the picker runs in gets a .idolmbti/ folder with a
// config.yaml and a logs/ directory.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the name of the directory we create in each project
	AppDir = ".idolmbti"

	defaultLogLevel = "info"
	defaultLogFile  = "logs/session.log"
)

// Environment overrides, applied after config.yaml.
const (
	EnvCatalog  = "IDOLMBTI_CATALOG"
	EnvSeed     = "IDOLMBTI_SEED"
	EnvLogLevel = "IDOLMBTI_LOG_LEVEL"
)

const defaultProjectConfigYAML = `# idolmbti project configuration
version: 1

# Idol catalog. Leave path empty to use the bundled dataset.
# JSON or YAML, a list of {"Name (Group)": ..., "Personality": ...} records.
catalog:
  path: ""

# Seed for the random sample of matching idols. 0 picks a new seed every run.
sampling:
  seed: 0

logging:
  level: info
  file: logs/session.log
`

// CatalogConfig selects the idol dataset.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// SamplingConfig controls the random sample of matching idols.
type SamplingConfig struct {
	Seed int64 `yaml:"seed"`
}

// LoggingConfig controls the session logbook.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ProjectConfig models .idolmbti/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Sampling SamplingConfig `yaml:"sampling"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory the picker was started from
	ProjectDir string

	// AppProjectDir is ProjectDir/.idolmbti
	AppProjectDir string

	Project ProjectConfig
}

// InitDir creates the .idolmbti directory structure in the given project
// directory and writes a default config.yaml if none exists.
//
// Structure created:
// .idolmbti/
// ├── config.yaml
// └── logs/
func InitDir(projectDir string) error {
	appDir := filepath.Join(projectDir, AppDir)
	if err := os.MkdirAll(filepath.Join(appDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(appDir, "config.yaml"))
}

// NewConfig loads config.yaml (if present) and applies environment
// overrides. A .env file in the project directory is read first.
func NewConfig(projectDir string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(projectDir, ".env"))

	cfg := &Config{
		ProjectDir:    projectDir,
		AppProjectDir: filepath.Join(projectDir, AppDir),
		Project:       defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.AppProjectDir, "config.yaml")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.AppProjectDir, "logs")
}

// CatalogPath returns the configured catalog file, or "" for the bundled dataset.
func (c *Config) CatalogPath() string {
	return c.Project.Catalog.Path
}

// Seed returns the sampling seed; 0 means time-seeded.
func (c *Config) Seed() int64 {
	return c.Project.Sampling.Seed
}

// LogLevel returns the normalized logbook level.
func (c *Config) LogLevel() string {
	return c.Project.Logging.Level
}

// LogFile returns the absolute logbook path.
func (c *Config) LogFile() string {
	return c.Project.Logging.File
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Project.normalize(c.AppProjectDir, c.ProjectDir)
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.AppProjectDir, c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvCatalog)); v != "" {
		c.Project.Catalog.Path = resolvePath(c.ProjectDir, v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSeed)); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSeed, err)
		}
		c.Project.Sampling.Seed = seed
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Project.Logging.Level = strings.ToLower(v)
	}
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Logging: LoggingConfig{
			Level: defaultLogLevel,
			File:  defaultLogFile,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(pc.Logging.File) == "" {
		pc.Logging.File = defaultLogFile
	}
}

// normalize resolves the catalog path against the project directory and the
// log file against the .idolmbti directory.
func (pc *ProjectConfig) normalize(appDir, projectDir string) {
	pc.Catalog.Path = resolvePath(projectDir, pc.Catalog.Path)
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
	pc.Logging.File = resolvePath(appDir, pc.Logging.File)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	if pc.Sampling.Seed < 0 {
		return fmt.Errorf("sampling.seed must be >= 0")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

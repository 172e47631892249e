// Package config carga la configuración YAML con defaults y overrides de
// entorno.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/rijalprasetyo/converter-file/internal/converter"
)

// Config es la configuración de fconv y fconvd
type Config struct {
	DataDir      string        `yaml:"data_dir"`
	SocketPath   string        `yaml:"socket_path"`
	Workers      int           `yaml:"workers"`
	PollInterval time.Duration `yaml:"poll_interval"`
	LogLevel     string        `yaml:"log_level"`
	LogJSON      bool          `yaml:"log_json"`
	OfficeBinary string        `yaml:"office_binary"`
	WebPQuality  int           `yaml:"webp_quality"`
	Notify       bool          `yaml:"notify"`
}

// DefaultPath retorna ~/.config/fconv/config.yaml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "fconv", "config.yaml")
}

// Default retorna la configuración sin archivo
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load lee el archivo YAML. Si el path es el default y no existe, usa los
// defaults. Luego aplica overrides de entorno.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := &Config{}

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// sin archivo, solo defaults
	default:
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FCONV_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("FCONV_SOCKET"); v != "" {
		c.SocketPath = v
	}
	if v := os.Getenv("FCONV_OFFICE_BIN"); v != "" {
		c.OfficeBinary = v
	}
	if v := os.Getenv("FCONV_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(home, ".local", "share", "fconv")
		} else {
			c.DataDir = "fconv-data"
		}
	}
	if c.SocketPath == "" {
		c.SocketPath = DefaultSocketPath()
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.OfficeBinary == "" {
		c.OfficeBinary = converter.DefaultOfficeBinary
	}
	if c.WebPQuality == 0 {
		c.WebPQuality = converter.DefaultWebPQuality
	}
}

// Validate verifica rangos
func (c *Config) Validate() error {
	if c.WebPQuality < 1 || c.WebPQuality > 100 {
		return fmt.Errorf("webp_quality must be between 1 and 100, got %d", c.WebPQuality)
	}
	return nil
}

// DefaultSocketPath usa XDG_RUNTIME_DIR, con fallback a /run/user/<uid>
func DefaultSocketPath() string {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = fmt.Sprintf("/run/user/%d", os.Getuid())
	}
	return filepath.Join(runtimeDir, "fconv.sock")
}

// EngineOptions traduce la configuración a opciones del motor
func (c *Config) EngineOptions() converter.Options {
	return converter.Options{
		OfficeBinary: c.OfficeBinary,
		WebPQuality:  c.WebPQuality,
	}
}

// Package config loads runtime settings for the regform binary.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "REGFORM_"

const (
	DefaultHTTPAddr    = ":8080"
	DefaultLogLevel    = "info"
	DefaultUploadLimit = int64(5 << 20)
)

// Config holds the settings shared by the serve and fill commands.
type Config struct {
	HTTPAddr      string `yaml:"http_addr"`
	LogLevel      string `yaml:"log_level"`
	DevLogging    bool   `yaml:"dev_logging"`
	UnicodeNames  bool   `yaml:"unicode_names"`
	StrictGender  bool   `yaml:"strict_gender"`
	CountriesFile string `yaml:"countries_file"`
	ThemeVariant  string `yaml:"theme_variant"`
	UploadLimit   int64  `yaml:"upload_limit"`

	// CORSOrigins enables CORS on the JSON endpoints for these origins.
	CORSOrigins []string `yaml:"cors_origins"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTPAddr:     DefaultHTTPAddr,
		LogLevel:     DefaultLogLevel,
		ThemeVariant: "light",
		UploadLimit:  DefaultUploadLimit,
	}
}

// Sources names the files consulted by Load. Empty paths are skipped.
type Sources struct {
	// File is a YAML config file. A missing file is an error.
	File string
	// EnvFile is a dotenv file. A missing file is ignored.
	EnvFile string
}

// Load resolves the configuration. Later layers win: defaults, the YAML
// file, the dotenv file, then the process environment.
func Load(src Sources) (Config, error) {
	cfg := Default()

	if src.File != "" {
		data, err := os.ReadFile(src.File)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", src.File, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", src.File, err)
		}
	}

	dotenv := map[string]string{}
	if src.EnvFile != "" {
		values, err := godotenv.Read(src.EnvFile)
		switch {
		case err == nil:
			dotenv = values
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", src.EnvFile, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*dst = parsed
		return nil
	}

	str("HTTP_ADDR", &c.HTTPAddr)
	str("LOG_LEVEL", &c.LogLevel)
	str("COUNTRIES_FILE", &c.CountriesFile)
	str("THEME_VARIANT", &c.ThemeVariant)
	if err := boolean("DEV_LOGGING", &c.DevLogging); err != nil {
		return err
	}
	if err := boolean("UNICODE_NAMES", &c.UnicodeNames); err != nil {
		return err
	}
	if err := boolean("STRICT_GENDER", &c.StrictGender); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		c.CORSOrigins = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "UPLOAD_LIMIT"); ok && strings.TrimSpace(v) != "" {
		limit, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("config: %sUPLOAD_LIMIT: %w", EnvPrefix, err)
		}
		c.UploadLimit = limit
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports settings the binary cannot run with.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	switch c.ThemeVariant {
	case "", "light", "dark":
	default:
		return fmt.Errorf("config: unknown theme variant %q", c.ThemeVariant)
	}
	if c.UploadLimit <= 0 {
		return fmt.Errorf("config: upload limit must be positive, got %d", c.UploadLimit)
	}
	return nil
}

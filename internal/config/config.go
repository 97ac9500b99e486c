package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Dir    string `toml:"dir"`
}

// Convert contains conversion behavior configuration.
type Convert struct {
	// SpoolCeilingMiB bounds the in-memory size of each deferred asset
	// buffer before it spills to a temporary file.
	SpoolCeilingMiB int `toml:"spool_ceiling_mib"`
	// ZipCompression is the deflate level used for destination archive
	// members (-2..9, matching klauspost/compress flate levels).
	ZipCompression int `toml:"zip_compression"`
	// Overwrite allows replacing an existing destination archive.
	Overwrite bool `toml:"overwrite"`
}

// Config is the root configuration document.
type Config struct {
	Logging Logging `toml:"logging"`
	Convert Convert `toml:"convert"`
}

// SpoolCeilingBytes returns the spool ceiling in bytes.
func (c *Config) SpoolCeilingBytes() int64 {
	return int64(c.Convert.SpoolCeilingMiB) * 1024 * 1024
}

// LogFilePath returns the log file destination, or empty when file logging
// is disabled.
func (c *Config) LogFilePath() string {
	if strings.TrimSpace(c.Logging.Dir) == "" {
		return ""
	}
	return filepath.Join(c.Logging.Dir, "upmconv.log")
}

// DefaultConfigPath returns the expanded default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/upmconv/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config %q: %w", expanded, err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(defaultPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultPath, false, nil
		}
		return "", false, fmt.Errorf("stat config %q: %w", defaultPath, err)
	}
	return defaultPath, true, nil
}

// CreateSample writes the embedded sample configuration to the target path.
func CreateSample(target string) error {
	return os.WriteFile(target, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates directories the configuration references.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Logging.Dir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Logging.Dir, 0o755); err != nil {
		return fmt.Errorf("create log directory %q: %w", c.Logging.Dir, err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

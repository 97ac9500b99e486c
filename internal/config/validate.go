package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateConvert()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateConvert() error {
	if c.Convert.SpoolCeilingMiB < 0 {
		return errors.New("convert.spool_ceiling_mib must not be negative")
	}
	if c.Convert.ZipCompression < -2 || c.Convert.ZipCompression > 9 {
		return fmt.Errorf("convert.zip_compression must be between -2 and 9 (got %d)", c.Convert.ZipCompression)
	}
	return nil
}

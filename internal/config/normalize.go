package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}

	if strings.TrimSpace(c.Logging.Dir) != "" {
		expanded, err := expandPath(c.Logging.Dir)
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = expanded
	} else {
		c.Logging.Dir = ""
	}

	if c.Convert.SpoolCeilingMiB == 0 {
		c.Convert.SpoolCeilingMiB = defaultSpoolCeilingMiB
	}
	return nil
}

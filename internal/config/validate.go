package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateVectorIndex(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Count < 1 {
		return errors.New("workers.count must be at least 1")
	}
	if c.Workers.Count > 64 {
		return errors.New("workers.count must be 64 or fewer")
	}
	if c.Workers.BusyWaitSeconds > c.Workers.IdleWaitSeconds {
		return errors.New("workers.busy_wait_seconds must not exceed workers.idle_wait_seconds")
	}
	if c.Workers.StaleAfterSeconds > 0 {
		// Reclamation races a slow-but-alive worker when the cutoff is
		// shorter than the combined stage deadlines.
		minimum := c.Pipeline.ExtractionTimeoutSeconds + c.Pipeline.IndexingTimeoutSeconds
		if c.Workers.StaleAfterSeconds < minimum {
			return fmt.Errorf("workers.stale_after_seconds must be 0 or at least %d (the combined stage timeouts)", minimum)
		}
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.ChunkOverlap >= c.Pipeline.DefaultChunkSize {
		return errors.New("pipeline.chunk_overlap must be smaller than pipeline.default_chunk_size")
	}
	return nil
}

func (c *Config) validateVectorIndex() error {
	if strings.TrimSpace(c.VectorIndex.BaseURL) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/verso/config.toml"
		}
		return fmt.Errorf("vector_index.base_url is required. Edit %s (create with 'verso config init')", defaultPath)
	}
	if !strings.HasPrefix(c.VectorIndex.BaseURL, "http://") && !strings.HasPrefix(c.VectorIndex.BaseURL, "https://") {
		return errors.New("vector_index.base_url must start with http:// or https://")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWorkers()
	c.normalizePipeline()
	c.normalizeVectorIndex()
	c.normalizeAPI()
	c.normalizeIntake()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWorkers() {
	if c.Workers.Count <= 0 {
		c.Workers.Count = defaultWorkerCount
	}
	if c.Workers.IdleWaitSeconds <= 0 {
		c.Workers.IdleWaitSeconds = defaultIdleWaitSeconds
	}
	if c.Workers.BusyWaitSeconds <= 0 {
		c.Workers.BusyWaitSeconds = defaultBusyWaitSeconds
	}
	if c.Workers.HeartbeatIntervalSeconds <= 0 {
		c.Workers.HeartbeatIntervalSeconds = defaultHeartbeatInterval
	}
	if c.Workers.StaleAfterSeconds < 0 {
		c.Workers.StaleAfterSeconds = 0
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.ExtractionTimeoutSeconds <= 0 {
		c.Pipeline.ExtractionTimeoutSeconds = defaultExtractionTimeout
	}
	if c.Pipeline.IndexingTimeoutSeconds <= 0 {
		c.Pipeline.IndexingTimeoutSeconds = defaultIndexingTimeout
	}
	if c.Pipeline.MaxChars < 0 {
		c.Pipeline.MaxChars = 0
	}
	if c.Pipeline.DefaultChunkSize <= 0 {
		c.Pipeline.DefaultChunkSize = defaultChunkSize
	}
	if c.Pipeline.ChunkOverlap < 0 {
		c.Pipeline.ChunkOverlap = 0
	}
	if c.Pipeline.InsertBatchSize <= 0 {
		c.Pipeline.InsertBatchSize = defaultInsertBatchSize
	}
}

func (c *Config) normalizeVectorIndex() {
	c.VectorIndex.BaseURL = strings.TrimSpace(c.VectorIndex.BaseURL)
	c.VectorIndex.APIKey = strings.TrimSpace(c.VectorIndex.APIKey)
	if c.VectorIndex.APIKey == "" {
		if value, ok := os.LookupEnv("VERSO_VECTOR_API_KEY"); ok {
			c.VectorIndex.APIKey = strings.TrimSpace(value)
		}
	}
	if c.VectorIndex.TimeoutSeconds <= 0 {
		c.VectorIndex.TimeoutSeconds = defaultVectorTimeout
	}
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		if value, ok := os.LookupEnv("VERSO_API_TOKEN"); ok {
			c.API.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeIntake() {
	if len(c.Intake.Extensions) == 0 {
		c.Intake.Extensions = defaultIntakeExtensions()
	}
	normalized := make([]string, 0, len(c.Intake.Extensions))
	for _, ext := range c.Intake.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	c.Intake.Extensions = normalized
	if c.Intake.MaxFileSizeMiB < 0 {
		c.Intake.MaxFileSizeMiB = 0
	}
	c.Intake.DefaultKnowledgeBase = strings.TrimSpace(c.Intake.DefaultKnowledgeBase)
	if c.Intake.DefaultKnowledgeBase == "" {
		c.Intake.DefaultKnowledgeBase = defaultKnowledgeBase
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}

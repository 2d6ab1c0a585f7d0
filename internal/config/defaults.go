package config

const (
	defaultDataDir    = "~/.local/share/verso/data"
	defaultStagingDir = "~/.local/share/verso/staging"
	defaultLogDir     = "~/.local/share/verso/logs"

	defaultWorkerCount       = 4
	defaultIdleWaitSeconds   = 3.0
	defaultBusyWaitSeconds   = 0.1
	defaultHeartbeatInterval = 15
	defaultStaleAfterSeconds = 900

	defaultExtractionTimeout = 300
	defaultIndexingTimeout   = 300
	defaultMaxChars          = 1_000_000
	defaultChunkSize         = 800
	defaultChunkOverlap      = 80
	defaultInsertBatchSize   = 64

	defaultVectorTimeout = 60

	defaultAPIBind = "127.0.0.1:7391"

	defaultNotifyTimeout = 10

	defaultMaxFileSizeMiB   = 128
	defaultKnowledgeBase    = "default"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
)

func defaultIntakeExtensions() []string {
	return []string{".md", ".markdown", ".txt", ".text", ".html", ".htm", ".csv", ".json", ".log"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Workers: Workers{
			Count:                    defaultWorkerCount,
			IdleWaitSeconds:          defaultIdleWaitSeconds,
			BusyWaitSeconds:          defaultBusyWaitSeconds,
			HeartbeatIntervalSeconds: defaultHeartbeatInterval,
			StaleAfterSeconds:        defaultStaleAfterSeconds,
		},
		Pipeline: Pipeline{
			ExtractionTimeoutSeconds: defaultExtractionTimeout,
			IndexingTimeoutSeconds:   defaultIndexingTimeout,
			MaxChars:                 defaultMaxChars,
			DefaultChunkSize:         defaultChunkSize,
			ChunkOverlap:             defaultChunkOverlap,
			InsertBatchSize:          defaultInsertBatchSize,
		},
		VectorIndex: VectorIndex{
			TimeoutSeconds: defaultVectorTimeout,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeout,
			Completed:             true,
			Failed:                true,
		},
		Intake: Intake{
			Extensions:           defaultIntakeExtensions(),
			MaxFileSizeMiB:       defaultMaxFileSizeMiB,
			DefaultKnowledgeBase: defaultKnowledgeBase,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

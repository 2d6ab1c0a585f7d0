package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"verso/internal/extraction"
	"verso/internal/logging"
	"verso/internal/queue"
	"verso/internal/stageexec"
)

func newDebugCommand(ctx *commandContext) *cobra.Command {
	debugCmd := &cobra.Command{
		Use:   "debug",
		Short: "Run pipeline stages against local files without queueing",
	}

	debugCmd.AddCommand(newDebugExtractCommand(ctx))

	return debugCmd
}

func newDebugExtractCommand(ctx *commandContext) *cobra.Command {
	var chunkSize int
	var timeoutSeconds int

	cmd := &cobra.Command{
		Use:   "extract <path>",
		Short: "Extract and chunk a document, printing the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			logger := logging.NewNop()
			result, err := stageexec.Run(cmd.Context(), stageexec.Options{
				Logger:     logger,
				Handler:    extraction.NewExtractor(cfg, store, logger),
				StageName:  "extraction",
				SourcePath: absPath,
				ChunkSize:  chunkSize,
				Timeout:    time.Duration(timeoutSeconds) * time.Second,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Extracted %s in %s\n", filepath.Base(absPath), result.Duration.Round(time.Millisecond))
			fmt.Fprintf(out, "Content:  %d chars\n", result.Item.ContentLength)
			fmt.Fprintf(out, "Chunks:   %d (chunk size %d)\n", result.Item.ChunkCount, result.Item.ChunkSize)
			if result.Item.Message != "" {
				fmt.Fprintf(out, "Message:  %s\n", result.Item.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Override chunk size in characters")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Stage deadline in seconds (0 disables)")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"verso/internal/ipc"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var knowledgeBase string
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Add a document to the ingestion queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("path is a directory: %s", absPath)
			}

			cfg := ctx.configValue()
			if cfg != nil && !cfg.AcceptsExtension(filepath.Ext(absPath)) {
				return fmt.Errorf("unsupported file extension %q (accepted: %s)",
					filepath.Ext(absPath), strings.Join(cfg.Intake.Extensions, ", "))
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.AddDocument(ipc.AddDocumentRequest{
					Path:            absPath,
					KnowledgeBaseID: knowledgeBase,
					ChunkSize:       chunkSize,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Queued %s as item %d\n", resp.Item.Name, resp.Item.ID)
				fmt.Fprintf(out, "Document ID: %s\n", resp.Item.DocumentID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&knowledgeBase, "kb", "", "Target knowledge base (defaults to configured default)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Override chunk size in characters")
	return cmd
}

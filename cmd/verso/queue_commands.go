package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"verso/internal/api"
	"verso/internal/ipc"
	"verso/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the work queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueDescribeCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueClearFailedCommand(ctx))
	queueCmd.AddCommand(newQueueResetCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var stats map[string]int64
				if client != nil {
					resp, err := client.QueueHealth()
					if err != nil {
						return err
					}
					stats = map[string]int64{
						string(queue.StatusPending):    resp.Pending,
						string(queue.StatusProcessing): resp.Processing,
						string(queue.StatusCompleted):  resp.Completed,
						string(queue.StatusFailed):     resp.Failed,
					}
				} else {
					summary, err := store.Health(cmd.Context())
					if err != nil {
						return err
					}
					stats = map[string]int64{
						string(queue.StatusPending):    summary.Pending,
						string(queue.StatusProcessing): summary.Processing,
						string(queue.StatusCompleted):  summary.Completed,
						string(queue.StatusFailed):     summary.Failed,
					}
				}

				for key, count := range stats {
					if count == 0 {
						delete(stats, key)
					}
				}
				rows := buildQueueStatusRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var items []ipc.QueueItem
				if client != nil {
					resp, err := client.QueueList(listStatuses)
					if err != nil {
						return err
					}
					items = resp.Items
				} else {
					var statuses []queue.Status
					for _, value := range listStatuses {
						parsed, ok := queue.ParseStatus(value)
						if !ok {
							return fmt.Errorf("unknown status %q", value)
						}
						statuses = append(statuses, parsed)
					}
					stored, err := store.List(cmd.Context(), statuses...)
					if err != nil {
						return err
					}
					items = api.FromQueueItems(stored)
				}

				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Name", "Status", "Progress", "Created", "Document"},
					buildQueueListRows(items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by queue status (repeatable)")
	return cmd
}

func newQueueDescribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <id>",
		Short: "Show details for a single queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid queue item id %q", args[0])
			}
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var item *ipc.QueueItem
				if client != nil {
					resp, err := client.QueueDescribe(id)
					if err != nil {
						return err
					}
					item = &resp.Item
				} else {
					stored, err := store.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					if stored == nil {
						return fmt.Errorf("queue item %d not found", id)
					}
					converted := api.FromQueueItem(stored)
					item = &converted
				}
				printQueueItem(cmd, item)
				return nil
			})
		},
	}
}

func printQueueItem(cmd *cobra.Command, item *ipc.QueueItem) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:            %d\n", item.ID)
	fmt.Fprintf(out, "Document:      %s\n", item.DocumentID)
	fmt.Fprintf(out, "Knowledge base: %s\n", item.KnowledgeBaseID)
	fmt.Fprintf(out, "Name:          %s\n", item.Name)
	fmt.Fprintf(out, "Source:        %s\n", item.SourcePath)
	fmt.Fprintf(out, "Status:        %s\n", formatStatusLabel(item.Status))
	if item.Progress.Stage != "" {
		fmt.Fprintf(out, "Progress:      %s %d%%\n", item.Progress.Stage, item.Progress.Percent)
	}
	if item.Message != "" {
		fmt.Fprintf(out, "Message:       %s\n", item.Message)
	}
	if item.FileSize > 0 {
		fmt.Fprintf(out, "File size:     %d bytes\n", item.FileSize)
	}
	if item.ContentLength > 0 {
		fmt.Fprintf(out, "Content:       %d chars\n", item.ContentLength)
	}
	if item.ChunkCount > 0 {
		fmt.Fprintf(out, "Chunks:        %d\n", item.ChunkCount)
	}
	if item.WorkerOrdinal != nil {
		fmt.Fprintf(out, "Worker:        %d\n", *item.WorkerOrdinal)
	}
	fmt.Fprintf(out, "Created:       %s\n", formatDisplayTime(item.CreatedAt))
	fmt.Fprintf(out, "Updated:       %s\n", formatDisplayTime(item.UpdatedAt))
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted && clearFailed {
				return errors.New("specify only one of --completed or --failed")
			}
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				out := cmd.OutOrStdout()
				var removed int64
				var label string
				var err error

				switch {
				case clearCompleted:
					label = "completed items"
					if client != nil {
						var resp *ipc.QueueClearCompletedResponse
						if resp, err = client.QueueClearCompleted(); err == nil {
							removed = resp.Removed
						}
					} else {
						removed, err = store.ClearCompleted(cmd.Context())
					}
				case clearFailed:
					label = "failed items"
					if client != nil {
						var resp *ipc.QueueClearFailedResponse
						if resp, err = client.QueueClearFailed(); err == nil {
							removed = resp.Removed
						}
					} else {
						removed, err = store.ClearFailed(cmd.Context())
					}
				default:
					label = "queue items"
					if client != nil {
						var resp *ipc.QueueClearResponse
						if resp, err = client.QueueClear(); err == nil {
							removed = resp.Removed
						}
					} else {
						removed, err = store.ClearAll(cmd.Context())
					}
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %d %s\n", removed, label)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed items")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed items")
	return cmd
}

func newQueueClearFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-failed",
		Short: "Remove failed queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var removed int64
				if client != nil {
					resp, err := client.QueueClearFailed()
					if err != nil {
						return err
					}
					removed = resp.Removed
				} else {
					var err error
					removed, err = store.ClearFailed(cmd.Context())
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d failed items\n", removed)
				return nil
			})
		},
	}
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stuck",
		Short: "Fail items stuck in processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var updated int64
				if client != nil {
					resp, err := client.QueueReset()
					if err != nil {
						return err
					}
					updated = resp.Updated
				} else {
					var err error
					updated, err = store.ResetStuckProcessing(cmd.Context(), "reset by operator")
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d stuck items to failed\n", updated)
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Return failed items to pending",
		Long:  "Return failed items to pending. Without arguments, retries every failed item.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid queue item id %q", arg)
				}
				ids = append(ids, id)
			}
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var updated int64
				if client != nil {
					resp, err := client.QueueRetry(ids)
					if err != nil {
						return err
					}
					updated = resp.Updated
				} else {
					var err error
					updated, err = store.RetryFailed(cmd.Context(), ids...)
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retrying %d items\n", updated)
				return nil
			})
		},
	}
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show queue and database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				out := cmd.OutOrStdout()
				var summary queue.HealthSummary
				var db queue.DatabaseHealth

				if client != nil {
					health, err := client.QueueHealth()
					if err != nil {
						return err
					}
					summary = queue.HealthSummary{
						Total:      health.Total,
						Pending:    health.Pending,
						Processing: health.Processing,
						Completed:  health.Completed,
						Failed:     health.Failed,
					}
					dbResp, err := client.DatabaseHealth()
					if err != nil {
						return err
					}
					db = queue.DatabaseHealth{
						Path:        dbResp.DBPath,
						Reachable:   dbResp.Reachable,
						JournalMode: dbResp.JournalMode,
						Version:     dbResp.Version,
						Error:       dbResp.Error,
					}
				} else {
					var err error
					summary, err = store.Health(cmd.Context())
					if err != nil {
						return err
					}
					db = store.CheckDatabase(cmd.Context())
				}

				fmt.Fprintf(out, "Total:      %d\n", summary.Total)
				fmt.Fprintf(out, "Pending:    %d\n", summary.Pending)
				fmt.Fprintf(out, "Processing: %d\n", summary.Processing)
				fmt.Fprintf(out, "Completed:  %d\n", summary.Completed)
				fmt.Fprintf(out, "Failed:     %d\n", summary.Failed)
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Database:   %s\n", db.Path)
				fmt.Fprintf(out, "Reachable:  %s\n", yesNo(db.Reachable))
				if db.JournalMode != "" {
					fmt.Fprintf(out, "Journal:    %s\n", db.JournalMode)
				}
				if db.Version > 0 {
					fmt.Fprintf(out, "Schema:     v%d\n", db.Version)
				}
				if db.Error != "" {
					fmt.Fprintf(out, "Error:      %s\n", db.Error)
				}
				return nil
			})
		},
	}
}

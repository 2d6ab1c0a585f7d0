package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"verso/internal/ipc"
)

func newDocumentCommand(ctx *commandContext) *cobra.Command {
	documentCmd := &cobra.Command{
		Use:   "document",
		Short: "Inspect and manage documents",
	}

	documentCmd.AddCommand(newDocumentStatusCommand(ctx))
	documentCmd.AddCommand(newDocumentRemoveCommand(ctx))

	return documentCmd
}

func newDocumentStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <document-id>...",
		Short: "Show queue entries for one or more documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DocumentStatus(args)
				if err != nil {
					return err
				}
				if len(resp.Items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matching documents")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Name", "Status", "Progress", "Created", "Document"},
					buildQueueListRows(resp.Items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				if missing := len(args) - len(resp.Items); missing > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%d requested documents were not found\n", missing)
				}
				return nil
			})
		},
	}
}

func newDocumentRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <document-id>",
		Short: "Remove a document and its indexed chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RemoveDocument(args[0])
				if err != nil {
					return err
				}
				if resp.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed document %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Document %s was not removed\n", args[0])
				}
				return nil
			})
		},
	}
}

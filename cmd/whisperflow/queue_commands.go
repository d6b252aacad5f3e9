package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"whisperflow/internal/queue"
)

func newQueueCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newQueueListCommand(cmdCtx))
	cmd.AddCommand(newQueueShowCommand(cmdCtx))
	cmd.AddCommand(newQueueClearCommand(cmdCtx))
	cmd.AddCommand(newQueueHealthCommand(cmdCtx))
	return cmd
}

func newQueueListCommand(cmdCtx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.ensureStore()
			if err != nil {
				return err
			}
			var statuses []queue.Status
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				for _, raw := range strings.Split(trimmed, ",") {
					status, ok := queue.ParseStatus(raw)
					if !ok {
						return fmt.Errorf("unknown status %q", raw)
					}
					statuses = append(statuses, status)
				}
			}
			items, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.Title,
					string(item.Status),
					fmt.Sprintf("%.0f%%", item.ProgressPercent),
					item.ProgressMessage,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Status", "Progress", "Message"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Comma-separated status filter")
	return cmd
}

func newQueueShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.ensureStore()
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			item, err := store.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("job %d not found", id)
			}
			rows := [][]string{
				{"ID", strconv.FormatInt(item.ID, 10)},
				{"Title", item.Title},
				{"Status", string(item.Status)},
				{"Source", firstNonEmpty(item.SourcePath, item.SourceURL)},
				{"Target language", item.TargetLanguage},
				{"Submitted by", item.SubmittedBy},
				{"Chunks", strconv.Itoa(item.ChunkCount)},
				{"Duration", fmt.Sprintf("%.1fs", item.DurationSeconds)},
				{"Subtitle file", item.SubtitleFile},
				{"Transcript file", item.TranscriptFile},
				{"Translated file", item.TranslatedFile},
				{"Subtitle URL", item.SubtitleURL},
				{"Transcript URL", item.TranscriptURL},
				{"Progress", fmt.Sprintf("%s (%.0f%%) %s", item.ProgressStage, item.ProgressPercent, item.ProgressMessage)},
			}
			if item.ErrorMessage != "" {
				rows = append(rows, []string{"Error", item.ErrorMessage})
			}
			if item.NeedsReview {
				rows = append(rows, []string{"Review", item.ReviewReason})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newQueueClearCommand(cmdCtx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove finished jobs from the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.ensureStore()
			if err != nil {
				return err
			}
			var statuses []queue.Status
			if all {
				statuses = queue.AllStatuses()
			}
			removed, err := store.Clear(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d jobs\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every job, not just finished ones")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

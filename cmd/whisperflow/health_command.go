package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"whisperflow/internal/pipeline"
)

func newQueueHealthCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check readiness of every pipeline stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := cmdCtx.ensureStore()
			if err != nil {
				return err
			}
			manager := pipeline.NewManager(cfg, store, cmdCtx.logger())
			rows := make([][]string, 0, 4)
			allReady := true
			for _, report := range manager.Health(cmd.Context()) {
				state := "ready"
				if !report.Ready {
					state = "not ready"
					allReady = false
				}
				rows = append(rows, []string{report.Name, state, report.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Stage", "State", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			if !allReady {
				return fmt.Errorf("one or more stages are not ready")
			}
			return nil
		},
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"whisperflow/internal/config"
)

func newConfigCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage whisperflow configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigInitCommand(cmdCtx))
	cmd.AddCommand(newConfigShowCommand(cmdCtx))
	return cmd
}

func newConfigInitCommand(cmdCtx *commandContext) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(path)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				target = defaultPath
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample config to %s\n", target)
			fmt.Fprintln(cmd.OutOrStdout(), "Fill in API keys before starting the daemon")
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Destination path (defaults to the user config dir)")
	return cmd
}

func newConfigShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Config file", cmdCtx.configPath},
				{"Work dir", cfg.Paths.WorkDir},
				{"Output dir", cfg.Paths.OutputDir},
				{"Log dir", cfg.Paths.LogDir},
				{"Transcription model", cfg.Transcription.Model},
				{"Transcription key", maskSecret(cfg.Transcription.APIKey)},
				{"Chunk seconds", fmt.Sprintf("%d", cfg.Transcription.ChunkSeconds)},
				{"Transcription workers", fmt.Sprintf("%d", cfg.Transcription.MaxWorkers)},
				{"Pacing seconds", fmt.Sprintf("%d", cfg.Transcription.PacingSeconds)},
				{"Translation model", cfg.Translation.Model},
				{"Translation key", maskSecret(cfg.Translation.APIKey)},
				{"Token budget", fmt.Sprintf("%d", cfg.Translation.TokenBudget)},
				{"Translation workers", fmt.Sprintf("%d", cfg.Translation.MaxWorkers)},
				{"Storage enabled", fmt.Sprintf("%t", cfg.Storage.Enabled)},
				{"Identity enabled", fmt.Sprintf("%t", cfg.Identity.Enabled)},
				{"Free limit", fmt.Sprintf("%d", cfg.Quota.FreeLimit)},
				{"Notebook enabled", fmt.Sprintf("%t", cfg.Notebook.Enabled)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func maskSecret(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "(unset)"
	}
	if len(value) <= 6 {
		return "******"
	}
	return value[:3] + "..." + value[len(value)-3:]
}

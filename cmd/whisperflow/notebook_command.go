package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"whisperflow/internal/config"
	"whisperflow/internal/notebook"
)

// newNotebookCommand drives the remote kernel backend for URL sources the
// local pipeline cannot download.
func newNotebookCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notebook",
		Short: "Run transcription on the remote notebook backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newNotebookRunCommand(cmdCtx))
	cmd.AddCommand(newNotebookStatusCommand(cmdCtx))
	return cmd
}

func newNotebookRunCommand(cmdCtx *commandContext) *cobra.Command {
	var kernelDir string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Push the kernel, wait for completion, and pull subtitle outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Notebook.Enabled {
				return fmt.Errorf("notebook backend is disabled in configuration")
			}
			client := notebook.NewClient(notebook.Config{
				Kernel:              cfg.Notebook.Kernel,
				Dataset:             cfg.Notebook.Dataset,
				PollIntervalSeconds: cfg.Notebook.PollIntervalSeconds,
			}, cmdCtx.logger())

			dir, err := config.ExpandPath(kernelDir)
			if err != nil {
				return err
			}
			dest := outputDir
			if dest == "" {
				dest = cfg.Paths.OutputDir
			}
			dest, err = config.ExpandPath(dest)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Starting remote kernel run...")
			artifacts, err := client.Run(cmd.Context(), dir, dest)
			if err != nil {
				return err
			}
			for _, artifact := range artifacts {
				fmt.Fprintf(cmd.OutOrStdout(), "Fetched %s\n", artifact)
			}
			if len(artifacts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Kernel finished but produced no subtitle artifacts")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kernelDir, "kernel-dir", ".", "Directory holding the kernel metadata to push")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Where to place fetched artifacts (defaults to the configured output dir)")
	return cmd
}

func newNotebookStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the remote kernel's run state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Notebook.Enabled {
				return fmt.Errorf("notebook backend is disabled in configuration")
			}
			client := notebook.NewClient(notebook.Config{
				Kernel:              cfg.Notebook.Kernel,
				Dataset:             cfg.Notebook.Dataset,
				PollIntervalSeconds: cfg.Notebook.PollIntervalSeconds,
			}, cmdCtx.logger())
			state, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Kernel %s: %s\n", cfg.Notebook.Kernel, state)
			return nil
		},
	}
}

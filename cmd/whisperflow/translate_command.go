package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"whisperflow/internal/config"
	"whisperflow/internal/subtitle"
	"whisperflow/internal/translate"
)

// newTranslateCommand translates an existing SRT file without queueing a job,
// for subtitles produced elsewhere.
func newTranslateCommand(cmdCtx *commandContext) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "translate <srt-file>",
		Short: "Translate an existing subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			target, err := translate.NormalizeLanguage(language)
			if err != nil {
				return err
			}
			srtPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			content, err := os.ReadFile(srtPath)
			if err != nil {
				return err
			}

			client := translate.NewClient(translate.Config{
				APIKey:         cfg.Translation.APIKey,
				BaseURL:        cfg.Translation.BaseURL,
				Model:          cfg.Translation.Model,
				TimeoutSeconds: cfg.Translation.TimeoutSeconds,
			})
			counter, err := translate.NewTokenCounter(cfg.Translation.Model)
			if err != nil {
				return err
			}
			engine := translate.NewEngine(client, counter, cfg.Translation.TokenBudget, cfg.Translation.MaxWorkers, cmdCtx.logger())

			translated, err := engine.Translate(cmd.Context(), string(content), target)
			if err != nil {
				return err
			}
			outPath := subtitle.TranslatedPath(srtPath)
			if err := os.WriteFile(outPath, []byte(translated), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Target language (required)")
	_ = cmd.MarkFlagRequired("language")
	return cmd
}

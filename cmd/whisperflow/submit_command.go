package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"whisperflow/internal/config"
	"whisperflow/internal/identity"
	"whisperflow/internal/quota"
	"whisperflow/internal/services"
	"whisperflow/internal/storage"
)

func newSubmitCommand(cmdCtx *commandContext) *cobra.Command {
	var language string
	var title string
	var token string
	var email string

	cmd := &cobra.Command{
		Use:   "submit <file|url>",
		Short: "Queue a media file or URL for transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := cmdCtx.ensureStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			source := strings.TrimSpace(args[0])
			var sourcePath, sourceURL string
			if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
				sourceURL = source
			} else {
				sourcePath, err = config.ExpandPath(source)
				if err != nil {
					return err
				}
				if _, err := os.Stat(sourcePath); err != nil {
					return fmt.Errorf("inspect source %q: %w", sourcePath, err)
				}
			}

			submittedBy := strings.ToLower(strings.TrimSpace(email))
			if token != "" && cfg.Identity.Enabled {
				client := identity.NewClient(identity.Config{
					BaseURL:        cfg.Identity.BaseURL,
					TimeoutSeconds: cfg.Identity.TimeoutSeconds,
				})
				who, err := client.Lookup(ctx, token)
				if err != nil {
					if errors.Is(err, services.ErrNotFound) {
						return errors.New("token is not authenticated; sign in again")
					}
					return err
				}
				submittedBy = who.Email
				fmt.Fprintf(cmd.OutOrStdout(), "Authenticated as %s\n", who.Email)
			}

			if submittedBy != "" {
				var donors quota.DonorLookup
				if cfg.Storage.Enabled {
					donors = storage.NewClient(storage.Config{
						BaseURL:        cfg.Storage.BaseURL,
						APIKey:         cfg.Storage.APIKey,
						Bucket:         cfg.Storage.Bucket,
						TimeoutSeconds: cfg.Storage.TimeoutSeconds,
					})
				}
				gate := quota.NewGate(store, donors, cfg.Quota.FreeLimit, cfg.Quota.AllowList)
				if err := gate.Allow(ctx, submittedBy); err != nil {
					if services.IsBusinessRejection(err) {
						return fmt.Errorf("submission rejected: %w", err)
					}
					return err
				}
			}

			if title == "" {
				if sourcePath != "" {
					title = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
				} else {
					title = sourceURL
				}
			}

			item, err := store.NewJob(ctx, sourcePath, sourceURL, title, language, submittedBy)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued job %d (%s)\n", item.ID, title)
			if sourceURL != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "URL sources run on the notebook backend; see `whisperflow notebook run`")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Target language for a translated subtitle")
	cmd.Flags().StringVar(&title, "title", "", "Display title (defaults to the file name)")
	cmd.Flags().StringVar(&token, "token", "", "Identity access token")
	cmd.Flags().StringVar(&email, "email", "", "Submitting user email (when no token)")
	return cmd
}

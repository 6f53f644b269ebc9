package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"plinth/internal/catalog"
	"plinth/internal/config"
	"plinth/internal/importer"
	"plinth/internal/watcher"
)

// watchTrigger builds the per-directory import callback used by the watch
// loop. A Confirm that failed on an earlier trigger leaves the session in
// the reviewing phase so the next manual attempt can retry it; an unattended
// watcher has no operator to do that, so the trigger retries the confirm
// itself and cancels the session if the retry fails too. Without this, one
// transient store failure would leave every later trigger rejected with
// ErrSessionActive.
func watchTrigger(imp *importer.Importer, out io.Writer) watcher.TriggerFunc {
	return func(trigCtx context.Context, dir catalog.Directory) error {
		if imp.Status().Phase == importer.PhaseReviewing {
			if _, err := imp.Confirm(trigCtx, nil); err != nil {
				if cancelErr := imp.Cancel(trigCtx); cancelErr != nil {
					return fmt.Errorf("recover stalled session: %w", err)
				}
			}
		}
		if err := imp.StartScan(trigCtx, dir); err != nil {
			return err
		}
		if imp.Status().Phase != importer.PhaseReviewing {
			return nil
		}
		records, err := imp.Confirm(trigCtx, nil)
		if err != nil {
			if cancelErr := imp.Cancel(trigCtx); cancelErr != nil {
				return fmt.Errorf("recover stalled session: %w", err)
			}
			return err
		}
		fmt.Fprintf(out, "Imported %d model(s) from %s\n", len(records), dir.Path)
		return nil
	}
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch registered directories and import new models automatically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				dirs, err := store.ListDirectories(cmd.Context())
				if err != nil {
					return err
				}
				if len(dirs) == 0 {
					return fmt.Errorf("no directories registered; add one with `plinth dirs add <path>`")
				}

				logger, err := ctx.newLogger(false)
				if err != nil {
					return err
				}
				imp := importer.New(cfg, store, logger)

				// Watched imports are unattended, so each triggered
				// session is confirmed as-is.
				trigger := watchTrigger(imp, cmd.OutOrStdout())

				debounce := time.Duration(cfg.Watcher.DebounceMS) * time.Millisecond
				w, err := watcher.New(dirs, debounce, trigger, logger)
				if err != nil {
					return err
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				fmt.Fprintf(cmd.OutOrStdout(), "Watching %d directorie(s). Press Ctrl-C to stop.\n", len(dirs))
				if err := w.Run(runCtx); err != nil && err != context.Canceled {
					return err
				}
				return nil
			})
		},
	}
}

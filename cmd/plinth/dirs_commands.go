package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"plinth/internal/catalog"
	"plinth/internal/config"
	"plinth/internal/fileutil"
)

func newDirsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirs",
		Short: "Manage registered model directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newDirsAddCommand(ctx))
	cmd.AddCommand(newDirsListCommand(ctx))
	cmd.AddCommand(newDirsRemoveCommand(ctx))
	return cmd
}

func newDirsAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Register a directory for importing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := fileutil.ExpandPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				dir, err := store.AddDirectory(cmd.Context(), path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s as %q\n", dir.Path, dir.Name)
				return nil
			})
		},
	}
}

func newDirsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show registered directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				dirs, err := store.ListDirectories(cmd.Context())
				if err != nil {
					return err
				}
				if len(dirs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No directories registered. Add one with `plinth dirs add <path>`.")
					return nil
				}
				rows := make([][]string, 0, len(dirs))
				for _, dir := range dirs {
					lastScan := "never"
					if dir.LastScannedAt != nil {
						lastScan = dir.LastScannedAt.Local().Format("2006-01-02 15:04")
					}
					rows = append(rows, []string{
						strconv.FormatInt(dir.ID, 10),
						dir.Name,
						dir.Path,
						lastScan,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Path", "Last Scan"}, rows, 1))
				return nil
			})
		},
	}
}

func newDirsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a directory and every item imported from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid directory id %q", args[0])
			}
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				dir, err := store.DirectoryByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if dir == nil {
					return fmt.Errorf("no directory with id %d", id)
				}
				if err := store.RemoveDirectory(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", dir.Path)
				return nil
			})
		},
	}
}

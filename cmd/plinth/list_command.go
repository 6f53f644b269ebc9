package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"plinth/internal/catalog"
	"plinth/internal/config"
	"plinth/internal/fileutil"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show cataloged models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				var directoryID int64
				if dirFlag != "" {
					path, err := fileutil.ExpandPath(dirFlag)
					if err != nil {
						return err
					}
					dir, err := store.DirectoryByPath(cmd.Context(), path)
					if err != nil {
						return err
					}
					if dir == nil {
						return fmt.Errorf("%s is not a registered directory", path)
					}
					directoryID = dir.ID
				}

				items, err := store.ListConfirmed(cmd.Context(), directoryID)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "The catalog is empty. Import models with `plinth import <path>`.")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						item.Name,
						item.RelPath,
						humanize.IBytes(uint64(item.SizeBytes)),
						strconv.FormatInt(item.Triangles, 10),
						strings.Join(item.Tags, ", "),
						item.ImportedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Name", "Path", "Size", "Triangles", "Tags", "Imported"}, rows, 3, 4))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Limit the listing to one registered directory")
	return cmd
}

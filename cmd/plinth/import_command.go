package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"plinth/internal/catalog"
	"plinth/internal/config"
	"plinth/internal/fileutil"
	"plinth/internal/importer"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var yesFlag bool

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Scan a registered directory and review the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				path, err := resolveDirectoryPath(args[0])
				if err != nil {
					return err
				}
				dir, err := store.DirectoryByPath(cmd.Context(), path)
				if err != nil {
					return err
				}
				if dir == nil {
					return fmt.Errorf("%s is not registered; run `plinth dirs add %s` first", path, path)
				}

				logger, err := ctx.newLogger(true)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				imp := importer.New(cfg, store, logger, importer.WithProgressFunc(func(u importer.Update) {
					fmt.Fprintf(out, "  [%d/%d] %s\n", u.Processed, u.Total, u.CurrentName)
					for _, itemErr := range u.Errors {
						fmt.Fprintf(out, "    failed: %v\n", itemErr)
					}
				}))

				fmt.Fprintf(out, "Scanning %s ...\n", dir.Path)
				if err := imp.StartScan(cmd.Context(), *dir); err != nil {
					return err
				}

				snap := imp.Status()
				if snap.Phase != importer.PhaseReviewing {
					fmt.Fprintln(out, "Nothing to import.")
					return nil
				}

				renderReview(cmd, snap)
				if !yesFlag && !promptConfirm(cmd) {
					if err := imp.Cancel(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintln(out, "Import discarded.")
					return nil
				}

				records, err := imp.Confirm(cmd.Context(), nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Imported %d model(s) into the catalog.\n", len(records))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Confirm the import without prompting")
	return cmd
}

func renderReview(cmd *cobra.Command, snap importer.Snapshot) {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(snap.Records))
	for _, record := range snap.Records {
		rows = append(rows, []string{
			record.Name,
			record.RelPath,
			humanize.IBytes(uint64(record.SizeBytes)),
			strconv.FormatInt(record.Triangles, 10),
			strings.Join(record.Tags, ", "),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Name", "Path", "Size", "Triangles", "Tags"}, rows, 3, 4))

	if len(snap.Errors) > 0 {
		fmt.Fprintf(out, "\n%d item(s) failed:\n", len(snap.Errors))
		for _, itemErr := range snap.Errors {
			fmt.Fprintf(out, "  %v\n", itemErr)
		}
	}
}

// promptConfirm asks on an interactive terminal. Piped or redirected
// input counts as a decline so scripts must opt in with --yes.
func promptConfirm(cmd *cobra.Command) bool {
	stdin, ok := cmd.InOrStdin().(*os.File)
	if ok && !isatty.IsTerminal(stdin.Fd()) && !isatty.IsCygwinTerminal(stdin.Fd()) {
		return false
	}

	fmt.Fprint(cmd.OutOrStdout(), "\nImport these models? [y/N] ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func resolveDirectoryPath(arg string) (string, error) {
	return fileutil.ExpandPath(arg)
}

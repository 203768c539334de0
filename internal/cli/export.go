package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog document as indented JSON",
		Long: `Export writes the current catalog document to stdout, or to a file
when --out is given. The output round-trips through import.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, outPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func runExport(opts *RootOptions, outPath string, cmd *cobra.Command) error {
	st, err := openStore(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer st.Close()

	payload := st.ExportJSON()
	if outPath == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", payload)
		return nil
	}
	if err := os.WriteFile(outPath, payload, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "write export file", err)
	}
	newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr()).VerboseLog("wrote %d bytes to %s", len(payload), outPath)
	return nil
}

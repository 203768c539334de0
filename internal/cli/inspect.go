package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InspectResult summarizes the persisted catalog document.
type InspectResult struct {
	SchemaVersion int    `json:"schemaVersion"`
	Driver        string `json:"driver"`
	Mode          string `json:"mode"`
	Categories    int    `json:"categories"`
	Makes         int    `json:"makes"`
	Models        int    `json:"models"`
	Products      int    `json:"products"`
	Racks         int    `json:"racks"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "inspect",
		Short:         "Summarize the persisted catalog document",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, cmd)
		},
	}
}

func runInspect(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openStore(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer st.Close()

	state := st.Read()
	makes := 0
	for _, names := range state.Makes {
		makes += len(names)
	}
	models := 0
	for _, byMake := range state.Models {
		for _, names := range byMake {
			models += len(names)
		}
	}
	result := InspectResult{
		SchemaVersion: state.SchemaVersion,
		Categories:    len(state.Categories),
		Makes:         makes,
		Models:        models,
		Products:      len(state.Products),
		Racks:         len(state.Racks),
	}
	if backend := st.Backend(); backend != nil {
		result.Driver = string(backend.Driver())
		result.Mode = string(backend.Mode())
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "schema version: %d\n", result.SchemaVersion)
	if result.Driver != "" {
		fmt.Fprintf(w, "backend:        %s (%s)\n", result.Driver, result.Mode)
	}
	fmt.Fprintf(w, "categories:     %d\n", result.Categories)
	fmt.Fprintf(w, "makes:          %d\n", result.Makes)
	fmt.Fprintf(w, "models:         %d\n", result.Models)
	fmt.Fprintf(w, "products:       %d\n", result.Products)
	fmt.Fprintf(w, "racks:          %d\n", result.Racks)
	return nil
}

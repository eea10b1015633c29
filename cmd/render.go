package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alantheprice/goalview/pkg/pp"
)

var renderSpans bool

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Lay out a pretty-printer document",
	Long: `Reads the JSON form of a pretty-printer document (Pp_box, Pp_glue,
Pp_print_break, ...) from a file or stdin and prints it laid out within the
configured width.

With --spans the tag spans of the layout are printed as JSON instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		doc, err := pp.Decode(data)
		if err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		out, err := pp.Render(doc, renderWidth())
		if err != nil {
			return err
		}
		if renderSpans {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out.Spans)
		}
		return writeOutput(cmd.OutOrStdout(), out, cfg.Render.Format)
	},
}

func init() {
	renderCmd.Flags().BoolVar(&renderSpans, "spans", false, "print tag spans as JSON")
	rootCmd.AddCommand(renderCmd)
}

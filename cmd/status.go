package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alantheprice/goalview/pkg/fleche"
	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
)

var statusAt string

var statusCmd = &cobra.Command{
	Use:   "status [file]",
	Short: "Show the checking status of a document",
	Long: `Reads a coq/getDocument reply and prints how far the document has been
checked and how many sentences it has. With --at LINE:CHAR the sentence
containing that position is printed, including its raw span payload.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		var doc fleche.FlecheDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}

		out := cmd.OutOrStdout()
		c := doc.Completed
		state := "checking"
		if c.Done() {
			state = "done"
		}
		fmt.Fprintf(out, "Completed: %s up to %s (%s)\n", c.Status, c.Range.End, state)
		fmt.Fprintf(out, "%d sentences\n", len(doc.Spans))

		if statusAt == "" {
			return nil
		}
		pos, err := parsePosition(statusAt)
		if err != nil {
			return err
		}
		span, ok := doc.SpanAt(pos)
		if !ok {
			return fmt.Errorf("no sentence at %s", pos)
		}
		fmt.Fprintf(out, "Sentence %s\n", span.Range)
		if !span.Span.IsNull() {
			fmt.Fprintf(out, "%s\n", []byte(span.Span))
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusAt, "at", "", "show the sentence at LINE:CHAR (zero-based)")
	rootCmd.AddCommand(statusCmd)
}

func parsePosition(s string) (protocol.Position, error) {
	var p protocol.Position
	if _, err := fmt.Sscanf(s, "%d:%d", &p.Line, &p.Character); err != nil || p.Line < 0 || p.Character < 0 {
		return p, utils.NewValidationError(utils.KindInvalidRequest, "at", fmt.Sprintf("%q is not LINE:CHAR", s))
	}
	return p, nil
}

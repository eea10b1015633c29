package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alantheprice/goalview/pkg/config"
	"github.com/alantheprice/goalview/pkg/pp"
	"github.com/alantheprice/goalview/pkg/theme"
)

// readInput reads the file named by args[0], or stdin when there is no
// argument or it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

// writeOutput prints rendered output in the configured format.
func writeOutput(w io.Writer, out *pp.Output, format string) error {
	var err error
	switch format {
	case config.FormatHTML:
		_, err = fmt.Fprintf(w, "<pre class=\"goalview\">%s</pre>\n", out.Markup.HTML())
	case config.FormatANSI:
		_, err = fmt.Fprintln(w, theme.ANSI(out.Markup, theme.Default()))
	default:
		_, err = fmt.Fprintln(w, out.Text)
	}
	return err
}

// methodOf returns the "method" member of a JSON object and whether it
// carries a "jsonrpc" member.
func methodOf(data []byte) (method string, jsonrpc bool) {
	var probe struct {
		JSONRPC string `json:"jsonrpc"`
		Method  string `json:"method"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", false
	}
	return probe.Method, probe.JSONRPC != ""
}

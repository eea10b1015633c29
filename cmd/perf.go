package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alantheprice/goalview/pkg/config"
	"github.com/alantheprice/goalview/pkg/panel"
	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
	"github.com/alantheprice/goalview/pkg/viewmsg"
)

var perfTop int

var perfCmd = &cobra.Command{
	Use:   "perf [file]",
	Short: "Summarize per-sentence perf data",
	Long: `Reads perf data for a document and prints its totals and slowest
sentences. The input may be the bare report, an update view message, or a
$/coq/filePerfData notification.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		report, err := decodePerfReport(data)
		if err != nil {
			return err
		}
		return printPerf(cmd.OutOrStdout(), report, perfTop)
	},
}

func init() {
	perfCmd.Flags().IntVarP(&perfTop, "top", "n", 10, "number of slowest sentences to list (negative lists all)")
	rootCmd.AddCommand(perfCmd)
}

func decodePerfReport(data []byte) (panel.PerfReport, error) {
	method, jsonrpc := methodOf(data)
	switch {
	case method == "":
		var report panel.PerfReport
		if err := json.Unmarshal(data, &report); err != nil {
			return report, fmt.Errorf("decode perf data: %w", err)
		}
		return report, report.Validate()
	case jsonrpc:
		if method != protocol.MethodFilePerfData {
			return panel.PerfReport{}, utils.NewUnknownMethodError("server", method)
		}
		var n struct {
			Params panel.PerfReport `json:"params"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return panel.PerfReport{}, fmt.Errorf("%s params: %w", method, err)
		}
		return n.Params, n.Params.Validate()
	}
	msg, err := viewmsg.DecodePerf(data)
	if err != nil {
		return panel.PerfReport{}, err
	}
	upd, ok := msg.(viewmsg.Update)
	if !ok {
		return panel.PerfReport{}, fmt.Errorf("expected an update message, got %s", msg.Method())
	}
	return upd.Params, nil
}

var perfTitle = lipgloss.NewStyle().Bold(true)

func printPerf(w io.Writer, report panel.PerfReport, top int) error {
	totals := report.Totals()
	title := fmt.Sprintf("%s (version %d)", report.TextDocument.URI, report.TextDocument.Version)
	if cfg.Render.Format == config.FormatANSI {
		title = perfTitle.Render(title)
	}
	fmt.Fprintln(w, title)
	if report.Summary != "" {
		fmt.Fprintln(w, report.Summary)
	}
	fmt.Fprintf(w, "%d sentences, %.3fs total, %.3fs hashing, %.1f%% cache hits\n",
		totals.Sentences, totals.Time, totals.TimeHash, 100*totals.HitRate())

	slowest := report.Slowest(top)
	if len(slowest) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANGE\tTIME\tMEMORY\tCACHED")
	for _, s := range slowest {
		fmt.Fprintf(tw, "%s\t%.3fs\t%.0f\t%t\n", s.Range, s.Info.Time, s.Info.Memory, s.Info.CacheHit)
	}
	return tw.Flush()
}

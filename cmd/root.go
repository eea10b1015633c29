package cmd

import (
	"github.com/spf13/cobra"

	"github.com/alantheprice/goalview/pkg/config"
	"github.com/alantheprice/goalview/pkg/utils"
)

var (
	cfgFile    string
	widthFlag  int
	formatFlag string

	// cfg holds the settings in effect for the running command.
	cfg config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "goalview",
	Short: "Proof goal and document views for a proof assistant language server",
	Long: `goalview renders what a proof assistant's language server reports about
a document: pretty-printer layouts, goal panels, checking status and
per-sentence performance data. It can also serve those views to a browser.

Available commands:
  render   - Lay out a pretty-printer document
  goals    - Show a goal answer as a goal panel
  perf     - Summarize per-sentence perf data
  status   - Show the checking status of a document
  serve    - Push view messages to browsers over WebSocket`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			printVersionInfo(cmd.OutOrStdout())
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./.goalview/config.json, then ~/.goalview/config.json)")
	rootCmd.PersistentFlags().IntVarP(&widthFlag, "width", "w", 0, "layout width in columns (default: terminal width)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "output format: text, html or ansi")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information and exit")
}

// loadSettings reads the config file, applies flag overrides and points the
// logger at the configured file.
func loadSettings(cmd *cobra.Command) error {
	path := cfgFile
	if path == "" {
		path = config.Path()
	}
	c, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("width") {
		c.Render.Width = widthFlag
	}
	if cmd.Flags().Changed("format") {
		c.Render.Format = formatFlag
	}
	if err := c.Validate(); err != nil {
		return err
	}

	utils.SetLogFile(c.Log.File)
	if c.Log.JSON {
		utils.GetLogger().SetJSON(true)
	}
	cfg = c
	return nil
}

// renderWidth is the configured width, or the terminal's.
func renderWidth() int {
	if cfg.Render.Width > 0 {
		return cfg.Render.Width
	}
	return utils.GetTerminalWidth()
}

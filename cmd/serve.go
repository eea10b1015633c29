package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alantheprice/goalview/pkg/events"
	"github.com/alantheprice/goalview/pkg/utils"
	"github.com/alantheprice/goalview/pkg/webui"
)

var (
	servePort   int
	serveStdin  bool
	serveRecord bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Push view messages to browsers over WebSocket",
	Long: `Starts the goal view server. View messages (renderGoals, waitingForInfo,
infoError, update, reset) and $/coq/filePerfData notifications posted to
/api/messages, sent over /ws, or written one per line to stdin with --stdin
are applied to the goal and perf panels and pushed to every open browser.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.Serve.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		if port == 0 {
			port = webui.FindAvailablePort(webui.DefaultPort)
		}

		logger := utils.GetLogger()
		server, err := webui.NewViewServer(events.NewEventBus(), webui.Options{
			Port:      port,
			Width:     renderWidth(),
			CacheSize: cfg.Cache.Size,
			Format:    cfg.GoalOptions(),
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := server.Start(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Goal view available at http://localhost:%d\n", server.GetPort())

		if serveStdin {
			var dst ingester = server
			if serveRecord {
				session, err := utils.OpenSessionLog(utils.DefaultSessionDir)
				if err != nil {
					return err
				}
				defer session.Close()
				fmt.Fprintf(cmd.OutOrStdout(), "Recording messages to %s\n", session.Path())
				dst = recorder{dst: server, log: session}
			}
			go func() {
				applied, failed, err := ingestLines(ctx, cmd.InOrStdin(), dst)
				if err != nil {
					logger.LogError(fmt.Errorf("read stdin: %w", err))
				}
				logger.Logf("stdin closed: %d messages applied, %d discarded", applied, failed)
			}()
		}

		<-ctx.Done()
		return server.Shutdown()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default from config, 0 picks a free one)")
	serveCmd.Flags().BoolVar(&serveStdin, "stdin", false, "read view messages from stdin, one JSON object per line")
	serveCmd.Flags().BoolVar(&serveRecord, "record", false, "record stdin messages and their outcome under "+utils.DefaultSessionDir)
	rootCmd.AddCommand(serveCmd)
}

// ingester is the part of the view server fed by ingestLines.
type ingester interface {
	Ingest(data []byte) error
}

// ingestLines feeds each non-blank line of r to dst until r is exhausted or
// ctx is done.
func ingestLines(ctx context.Context, r io.Reader, dst ingester) (applied, failed int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return applied, failed, nil
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := dst.Ingest(line); err != nil {
			failed++
			continue
		}
		applied++
	}
	return applied, failed, scanner.Err()
}

// recorder logs every message passed to dst with its outcome.
type recorder struct {
	dst ingester
	log *utils.SessionLog
}

func (r recorder) Ingest(data []byte) error {
	err := r.dst.Ingest(data)
	fields := map[string]any{"message": utils.Payload(data)}
	eventType := "applied"
	if err != nil {
		eventType = "discarded"
		fields["kind"] = string(utils.KindOf(err))
		fields["error"] = err.Error()
	}
	r.log.LogEvent(eventType, fields)
	return err
}

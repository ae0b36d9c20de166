package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/toonknapen/racemonitorsdk/config"
	"github.com/toonknapen/racemonitorsdk/credentials"
	"github.com/toonknapen/racemonitorsdk/logging"
	"github.com/toonknapen/racemonitorsdk/network"
	"github.com/toonknapen/racemonitorsdk/timing"
)

var (
	flagURL            string
	flagKey            string
	flagInterval       time.Duration
	flagReconnectDelay time.Duration
)

// watchCmd connects to the stream and re-renders the two snapshot tables
// until interrupted. Reconnection is a watch-level policy: the client
// itself only reports that the stream ended.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live timing and render the standings",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagURL, "url", "", "WebSocket endpoint (wss://...)")
	watchCmd.Flags().StringVar(&flagKey, "key", "", "captured Sec-WebSocket-Key for the endpoint")
	watchCmd.Flags().DurationVar(&flagInterval, "interval", time.Second, "render interval")
	watchCmd.Flags().DurationVar(&flagReconnectDelay, "reconnect-delay", 0, "restart a failed stream after this delay, 0 disables")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		if cfg, err = config.Load(flagConfig); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Logging, "racewatch", logging.NewTransactionID())
	if err != nil {
		return err
	}

	provider := resolveProvider(cfg)
	handler := timing.NewHandler(logger)
	client := &network.Client{Logger: logger, Processor: handler}

	wsURL, wsKey, err := provider.Credentials()
	if err != nil {
		return err
	}
	if err := client.Connect(wsURL, wsKey); err != nil {
		return err
	}
	defer client.Disconnect()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(flagInterval)
	defer ticker.Stop()

	out := cmd.OutOrStdout()
	for {
		select {
		case <-sig:
			return nil
		case <-ticker.C:
			render(out, handler.Snapshot())
			if client.IsRunning() {
				continue
			}
			if flagReconnectDelay <= 0 {
				return fmt.Errorf("timing stream ended")
			}
			logger.Warn().Msgf("timing stream ended, reconnecting in %s", flagReconnectDelay)
			time.Sleep(flagReconnectDelay)
			if wsURL, wsKey, err = provider.Credentials(); err != nil {
				return err
			}
			if err := client.Connect(wsURL, wsKey); err != nil {
				logger.Error().Msgf("reconnect failed: %v", err)
			}
		}
	}
}

// resolveProvider picks the credential source: explicit flags, then the
// configuration file, then the environment.
func resolveProvider(cfg *config.Config) credentials.Provider {
	if flagURL != "" || flagKey != "" {
		return credentials.Static{URL: flagURL, Key: flagKey}
	}
	if cfg.WebsocketURL != "" && cfg.WebsocketKey != "" {
		return credentials.Static{URL: cfg.WebsocketURL, Key: cfg.WebsocketKey}
	}
	return credentials.FromEnv{URLVar: config.EnvWsURL, KeyVar: config.EnvWsKey}
}

// render repaints the session summary and the standings table.
func render(w io.Writer, snap *timing.Snapshot) {
	var b strings.Builder
	b.WriteString("\033[H\033[2J")

	s := snap.Session
	fmt.Fprintf(&b, "%s %s  |  %s (%s)  |  flag: %s  |  to go: %s laps / %s  |  %s\n\n",
		s.SessionID, s.SessionName, s.TrackName, s.TrackLength,
		s.FlagStatus, s.LapsToGo, s.TimeToGo, s.SortMode)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Pos\t#\tName\tLaps\tTime\tBest\tDiff\tGap")
	for _, r := range snap.Competitors {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Pos, r.Number, r.Name, r.Laps, r.Time, r.Best, r.Diff, r.Gap)
	}
	tw.Flush()

	fmt.Fprint(w, b.String())
}

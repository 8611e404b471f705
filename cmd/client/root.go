package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/atinyakov/GophNotes/internal/client/remote"
	"github.com/atinyakov/GophNotes/internal/config"
	"github.com/atinyakov/GophNotes/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath   string
	flagURL      string
	flagCA       string
	flagState    string
	flagLogLevel string
	flagDebounce time.Duration
)

// app is what every subcommand gets after the root has read the
// configuration.
type app struct {
	opts   *config.ClientOptions
	log    *zap.Logger
	client *http.Client
	auth   *remote.Auth
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "gophnotes",
	Short: "Terminal client for the GophNotes server",
	Long: `gophnotes signs you in to a GophNotes server and opens an interactive
shell to write notes and ask the AI assistant about them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		opts, err := config.LoadClient(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		flags := cmd.Flags()
		if flags.Changed("url") {
			opts.BaseURL = flagURL
		}
		if flags.Changed("ca") {
			opts.CAFile = flagCA
		}
		if flags.Changed("state") {
			opts.StateFile = flagState
		}
		if flags.Changed("log-level") {
			opts.LogLevel = flagLogLevel
		}
		if flags.Changed("debounce") && flagDebounce > 0 {
			opts.Debounce = flagDebounce
		}

		lg := logger.New()
		if err := lg.InitConsole(opts.LogLevel); err != nil {
			return err
		}

		client, err := remote.NewHTTPClient(opts.CAFile)
		if err != nil {
			return err
		}
		auth := remote.NewAuth(client, opts.BaseURL, opts.StateFile)
		if err := auth.Load(); err != nil {
			lg.Log.Warn("ignoring unreadable session state", zap.String("path", opts.StateFile), zap.Error(err))
		}

		current = &app{opts: opts, log: lg.Log, client: client, auth: auth}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			_ = current.log.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", config.DefaultClientConfigPath(), "path to the YAML config file")
	pf.StringVar(&flagURL, "url", "", "server base URL (default https://localhost:8080)")
	pf.StringVar(&flagCA, "ca", "", "CA certificate that signed the server certificate")
	pf.StringVar(&flagState, "state", "", "file that keeps the session token")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.DurationVar(&flagDebounce, "debounce", 0, "quiet period before edits are saved (default 500ms)")
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jobo-ai/jobo-go/config"
	"github.com/jobo-ai/jobo-go/filter"
	"github.com/jobo-ai/jobo-go/jobo"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *jobo.Client
	filters *filter.Manager

	// Shared command flags
	filterExpr string
	preset     string
	jsonOutput bool
	limit      int
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "jobo",
	Short: "Command line client for the Jobo job listings API",
	Long: `jobo is a CLI for the Jobo Enterprise API. It streams the job feed,
searches listings, geocodes locations, drives auto-apply sessions and keeps a
local SQLite mirror of the feed.

The API key is read from jobo.api_key in config.yaml or from JOBO_API_KEY.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if client != nil {
		_ = client.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := retryHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON lines")
}

// initializeApp loads the configuration and creates the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	client, err = jobo.NewClient(cfg.Jobo.APIKey,
		jobo.WithBaseURL(cfg.Jobo.URL),
		jobo.WithTimeout(cfg.Jobo.Timeout),
		jobo.WithUserAgent("jobo-cli/"+version),
		jobo.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create Jobo client: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	logger.Debug().Str("url", client.BaseURL()).Strs("presets", filters.ListFilters()).Msg("Initialized")
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, no colour when stderr is redirected
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// retryHint explains how long to wait after a rate limited request
func retryHint(err error) string {
	var apiErr *jobo.APIError
	if !errors.As(err, &apiErr) {
		return ""
	}
	switch {
	case apiErr.IsRateLimit():
		if secs, ok := apiErr.RetryAfter(); ok {
			return fmt.Sprintf("Rate limited: retry after %d seconds.", secs)
		}
		return "Rate limited: retry later."
	case apiErr.IsAuthentication():
		return "Check jobo.api_key or JOBO_API_KEY."
	}
	return ""
}

// resolveFilter picks the --filter expression or the --preset
func resolveFilter() (filter.Filter, error) {
	f, err := filters.Resolve(preset, filterExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return f, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after N results (0 = no limit)")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/webwatch/internal/cipher"
	"github.com/nao1215/webwatch/internal/config"
	"github.com/nao1215/webwatch/internal/database"
	"github.com/nao1215/webwatch/internal/fetcher"
	"github.com/nao1215/webwatch/internal/log"
	"github.com/nao1215/webwatch/internal/model"
	"github.com/nao1215/webwatch/internal/monitor"
	"github.com/nao1215/webwatch/internal/notifier"
	"github.com/nao1215/webwatch/internal/pipeline"
	"github.com/nao1215/webwatch/internal/report"
	"github.com/nao1215/webwatch/internal/store"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one monitoring pass over all configured sites",
		Long: `Check fetches every site in the sites file once, compares each page
against the previous run, and rewrites the status and history files.

A failing site never aborts the run: its status entry records the error
and the remaining sites are still checked. The command exits non-zero
only for configuration or persistence problems.

Encrypted site URLs are decrypted with the passphrase from the
WEBWATCH_SECRET environment variable. Without a passphrase those sites
fail individually while plaintext sites are still checked.

Examples:
  # Check all sites using files in the current directory
  webwatch check

  # Explicit file locations
  webwatch check --sites /srv/watch/sites.json --status /srv/watch/status.json

  # Pause two seconds between sites and notify a Discord channel
  webwatch check --delay 2s --notify "discord://token@id"

  # Write a markdown summary next to the JSON files
  webwatch check --markdown report.md`,
		Args: cobra.NoArgs,
		RunE: runCheckCmd,
	}

	cmd.Flags().StringP("sites", "s", config.DefaultSitesFile,
		"Path to the watched-sites file")
	cmd.Flags().String("status", config.DefaultStatusFile,
		"Path to the status snapshot file")
	cmd.Flags().String("history", config.DefaultHistoryFile,
		"Path to the check history file")
	cmd.Flags().StringP("config", "c", "",
		"Path to the tool configuration file")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Pause between consecutive site checks")
	cmd.Flags().String("user-agent", "",
		"Override the HTTP User-Agent header")
	cmd.Flags().Int64("max-body-size", 0,
		"Maximum response body size in bytes (0 = default)")
	cmd.Flags().String("socks5", "",
		"Route fetches through a SOCKS5 proxy (host:port)")
	cmd.Flags().Bool("insecure-default-key", false,
		"Allow the built-in fallback passphrase when WEBWATCH_SECRET is unset")
	cmd.Flags().StringSliceP("notify", "n", nil,
		"Notification service URL, repeatable (e.g. discord://token@id)")
	cmd.Flags().Bool("no-archive", false,
		"Skip the SQLite check archive for this run")
	cmd.Flags().String("archive-dir", "",
		"Directory for the check archive database (default: XDG data dir)")
	cmd.Flags().Int("archive-keep", 0,
		"Archived checks to retain per site (0 = default)")
	cmd.Flags().StringP("markdown", "m", "",
		"Write the run summary as Markdown to this file")
	cmd.Flags().BoolP("json", "j", false,
		"Print the run summary as JSON instead of text")
	cmd.Flags().Bool("changes-only", false,
		"Only list changed or failed sites in the summary")
	cmd.Flags().String("log-file", "",
		"Route logs to a rotated JSON log file")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := setupLogger(cfg)

	// Stop cleanly on Ctrl+C or SIGTERM. A cancelled run leaves the
	// previous status and history files untouched.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Warn("received signal, stopping", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCheck(ctx, cmd, cfg, logger)
}

// buildConfig assembles the runtime configuration from the optional
// configuration file and the command line flags. Flags the user actually
// passed win over file values, which in turn win over defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPath

	if found := config.FindConfigFile(configPath); found != "" {
		fc, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		if err := cfg.ApplyFile(fc); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", found, err)
		}
	} else if configPath != "" {
		// An explicitly named config file that does not exist is an
		// operator mistake, not a silent default.
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	if cmd.Flags().Changed("sites") {
		v, err := cmd.Flags().GetString("sites")
		if err != nil {
			return nil, err
		}
		cfg.SitesPath = v
	}

	if cmd.Flags().Changed("status") {
		v, err := cmd.Flags().GetString("status")
		if err != nil {
			return nil, err
		}
		cfg.StatusPath = v
	}

	if cmd.Flags().Changed("history") {
		v, err := cmd.Flags().GetString("history")
		if err != nil {
			return nil, err
		}
		cfg.HistoryPath = v
	}

	if cmd.Flags().Changed("delay") {
		v, err := cmd.Flags().GetDuration("delay")
		if err != nil {
			return nil, err
		}
		cfg.Delay = v
	}

	if cmd.Flags().Changed("user-agent") {
		v, err := cmd.Flags().GetString("user-agent")
		if err != nil {
			return nil, err
		}
		cfg.UserAgent = v
	}

	if cmd.Flags().Changed("max-body-size") {
		v, err := cmd.Flags().GetInt64("max-body-size")
		if err != nil {
			return nil, err
		}
		cfg.MaxBodySize = v
	}

	if cmd.Flags().Changed("socks5") {
		v, err := cmd.Flags().GetString("socks5")
		if err != nil {
			return nil, err
		}
		cfg.SOCKS5Proxy = v
	}

	if cmd.Flags().Changed("notify") {
		v, err := cmd.Flags().GetStringSlice("notify")
		if err != nil {
			return nil, err
		}
		cfg.Notify = v
	}

	if cmd.Flags().Changed("archive-dir") {
		v, err := cmd.Flags().GetString("archive-dir")
		if err != nil {
			return nil, err
		}
		cfg.ArchiveDir = v
	}

	if cmd.Flags().Changed("archive-keep") {
		v, err := cmd.Flags().GetInt("archive-keep")
		if err != nil {
			return nil, err
		}
		cfg.ArchiveKeep = v
	}

	if cmd.Flags().Changed("log-file") {
		v, err := cmd.Flags().GetString("log-file")
		if err != nil {
			return nil, err
		}
		cfg.LogFile = v
	}

	noArchive, err := cmd.Flags().GetBool("no-archive")
	if err != nil {
		return nil, err
	}
	cfg.NoArchive = noArchive

	markdownFile, err := cmd.Flags().GetString("markdown")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownFile = markdownFile

	insecure, err := cmd.Flags().GetBool("insecure-default-key")
	if err != nil {
		return nil, err
	}
	cfg.AllowFallbackKey = insecure
	cfg.Passphrase = config.Secret()

	return cfg, nil
}

// getVerboseFlag returns the persistent verbose flag from the command tree.
func getVerboseFlag(cmd *cobra.Command) bool {
	flag := cmd.Root().PersistentFlags().Lookup("verbose")
	if flag == nil {
		return false
	}
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}

// setupLogger creates the logger for command execution. With a log file
// configured, logs go to a rotated JSON file; otherwise to stderr.
func setupLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogFile != "" {
		return log.NewFileLogger(cfg.LogFile, cfg.Verbose)
	}
	return log.NewLogger(os.Stderr, cfg.Verbose)
}

// runCheck executes one monitoring pass with the given configuration.
func runCheck(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	sitesFile, err := config.LoadSites(cfg.SitesPath)
	if err != nil {
		return err
	}
	logger.Debug("loaded sites file",
		"path", cfg.SitesPath,
		"sites", len(sitesFile.Sites),
	)

	urlCipher, err := buildCipher(cfg)
	if err != nil {
		return err
	}

	f, err := buildFetcher(cfg)
	if err != nil {
		return fmt.Errorf("failed to build HTTP fetcher: %w", err)
	}

	pipe := pipeline.DefaultPipeline(urlCipher, f, pipeline.WithLogger(logger))

	opts := []monitor.Option{
		monitor.WithDelay(cfg.Delay),
		monitor.WithLogger(logger),
	}

	if !cfg.NoArchive {
		db, err := database.Open(cfg.ResolveArchiveDir(), database.DefaultOptions())
		if err != nil {
			// The archive only powers the history and diff commands; a
			// run must not fail because the data directory is unusable.
			logger.Warn("check archive unavailable", "error", err)
		} else {
			defer db.Close()
			opts = append(opts, monitor.WithArchive(db, cfg.ArchiveKeep))
		}
	}

	runner := monitor.New(sitesFile.Sites, pipe,
		store.NewStatusStore(cfg.StatusPath),
		store.NewHistoryStore(cfg.HistoryPath),
		opts...)

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if err := outputSummary(cmd, cfg, summary); err != nil {
		return err
	}

	notifyUpdates(cfg, summary, logger)
	return nil
}

// buildCipher resolves the URL cipher from the configured passphrase.
// It returns a nil cipher when no passphrase is available and the
// fallback was not requested; encrypted sites then fail individually
// instead of aborting the whole run.
func buildCipher(cfg *config.Config) (*cipher.URLCipher, error) {
	passphrase := cfg.Passphrase
	if passphrase == "" {
		if !cfg.AllowFallbackKey {
			return nil, nil
		}
		passphrase = cipher.FallbackPassphrase
	}
	return cipher.New(passphrase)
}

// buildFetcher creates the HTTP fetcher based on the configuration.
func buildFetcher(cfg *config.Config) (*fetcher.Fetcher, error) {
	var opts []fetcher.Option
	if cfg.UserAgent != "" {
		opts = append(opts, fetcher.WithUserAgent(cfg.UserAgent))
	}
	if cfg.MaxBodySize > 0 {
		opts = append(opts, fetcher.WithMaxBodySize(cfg.MaxBodySize))
	}
	if cfg.SOCKS5Proxy != "" {
		opts = append(opts, fetcher.WithSOCKSProxy(cfg.SOCKS5Proxy))
	}
	return fetcher.New(opts...)
}

// outputSummary writes the run summary to stdout and, when configured,
// to a markdown file.
func outputSummary(cmd *cobra.Command, cfg *config.Config, summary *model.RunSummary) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	changesOnly, err := cmd.Flags().GetBool("changes-only")
	if err != nil {
		return err
	}

	var console report.Writer
	if jsonOutput {
		console = report.NewJSONWriter(cmd.OutOrStdout(),
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()))
	} else {
		console = report.NewTextWriter(cmd.OutOrStdout(),
			report.WithChangesOnly(changesOnly),
			report.WithVerbose(cfg.Verbose))
	}
	if _, err := console.Write(summary); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}

	if cfg.MarkdownFile == "" {
		return nil
	}

	if dir := filepath.Dir(cfg.MarkdownFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	file, err := os.OpenFile(cfg.MarkdownFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create markdown report: %w", err)
	}
	defer file.Close()

	if _, err := report.NewMarkdownWriter(file).Write(summary); err != nil {
		return fmt.Errorf("failed to write markdown report: %w", err)
	}
	return nil
}

// notifyUpdates sends a change digest to the configured notification
// services. Notification problems are logged, never fatal: the JSON
// files already hold the authoritative result.
func notifyUpdates(cfg *config.Config, summary *model.RunSummary, logger *slog.Logger) {
	if len(cfg.Notify) == 0 || !summary.HasChanges() {
		return
	}

	n, err := notifier.New(cfg.Notify, notifier.WithLogger(logger))
	if err != nil {
		logger.Warn("invalid notification configuration", "error", err)
		return
	}
	if err := n.NotifyUpdates(summary.UpdatedSites); err != nil {
		logger.Warn("failed to send notifications", "error", err)
	}
}

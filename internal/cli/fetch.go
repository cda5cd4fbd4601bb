package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/multifetch/internal/logger"
	"github.com/glorpus-work/multifetch/pkg/archive"
	"github.com/glorpus-work/multifetch/pkg/config"
	"github.com/glorpus-work/multifetch/pkg/download"
	"github.com/glorpus-work/multifetch/pkg/errors"
	"github.com/glorpus-work/multifetch/pkg/hooks"
	"github.com/glorpus-work/multifetch/pkg/ledger"
	"github.com/glorpus-work/multifetch/pkg/metrics"
	"github.com/glorpus-work/multifetch/pkg/model"
	"github.com/glorpus-work/multifetch/pkg/orchestrator"
	"github.com/glorpus-work/multifetch/pkg/protocol"
)

// fetchOptions holds the flags of the root command.
type fetchOptions struct {
	destDir     string
	retries     int
	workers     int
	ledgerPath  string
	logFile     string
	failOnError bool
	metricsFile string
	extract     bool
	hookScript  string
	hooksDir    string
}

// BindFetch turns cmd into the download command: every positional argument is
// a URI to fetch.
func BindFetch(cmd *cobra.Command) {
	opts := &fetchOptions{}
	addFetchFlags(cmd, opts)
	cmd.Args = cobra.ArbitraryArgs
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runFetch(cmd, opts, args)
	}
}

func addFetchFlags(cmd *cobra.Command, o *fetchOptions) {
	defaults := config.DefaultConfig().Settings

	cmd.Flags().StringVarP(&o.destDir, "dest", "d", defaults.DestDir, "Destination directory")
	cmd.Flags().IntVarP(&o.retries, "retries", "r", defaults.Retries, "Maximum attempts per file")
	cmd.Flags().IntVarP(&o.workers, "workers", "w", defaults.MaxWorkers, "Maximum concurrent downloads (0 = one per URI)")
	cmd.Flags().StringVar(&o.ledgerPath, "ledger", defaults.LedgerPath, "Ledger file recording downloaded files")
	cmd.Flags().StringVar(&o.logFile, "log-file", defaults.LogFile, "Debug log file")
	cmd.Flags().BoolVar(&o.failOnError, "fail-on-error", false, "Exit with an error when any download failed")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	cmd.Flags().BoolVar(&o.extract, "extract", false, "Extract downloaded archives next to the download")
	cmd.Flags().StringVar(&o.hookScript, "hook", "", "Tengo script run after every successful download")
	cmd.Flags().StringVar(&o.hooksDir, "hooks-dir", "", "Directory containing post-download.tengo and download-failed.tengo")

	_ = cmd.MarkFlagDirname("dest")
	_ = cmd.MarkFlagFilename("hook", "tengo")
}

// applyFetchFlags copies explicitly set flags over the configuration.
func applyFetchFlags(cmd *cobra.Command, o *fetchOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dest") {
		cfg.Settings.DestDir = o.destDir
	}
	if flags.Changed("retries") {
		cfg.Settings.Retries = o.retries
	}
	if flags.Changed("workers") {
		cfg.Settings.MaxWorkers = o.workers
	}
	if flags.Changed("ledger") {
		cfg.Settings.LedgerPath = o.ledgerPath
	}
	if flags.Changed("log-file") {
		cfg.Settings.LogFile = o.logFile
	}
	if flags.Changed("fail-on-error") {
		cfg.Settings.FailOnError = o.failOnError
	}
	if flags.Changed("metrics-file") {
		cfg.Settings.MetricsFile = o.metricsFile
	}
	if flags.Changed("extract") {
		cfg.Settings.Extract = o.extract
	}
	if flags.Changed("hook") {
		cfg.Settings.HookScript = o.hookScript
	}
	if flags.Changed("hooks-dir") {
		cfg.Settings.HooksDir = o.hooksDir
	}
}

func runFetch(cmd *cobra.Command, o *fetchOptions, uris []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFetchFlags(cmd, o, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	closer, err := initLogging(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	logger.SetDefaultFields(logger.Fields{"run_id": uuid.NewString()})
	defer logger.SetDefaultFields(nil)

	outcomes, err := fetch(cmd.Context(), cfg, uris)
	if err != nil {
		return err
	}

	summary := model.Summarize(outcomes)
	if summary.Failed > 0 && cfg.Settings.FailOnError {
		return fmt.Errorf("%w: %d of %d downloads failed", errors.ErrDownloadFailed, summary.Failed, len(uris))
	}
	return nil
}

// fetch wires the download pipeline from cfg and runs it over uris.
func fetch(ctx context.Context, cfg *config.Config, uris []string) ([]model.Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := ledger.Open(cfg.Settings.LedgerPath)
	if err != nil {
		return nil, err
	}

	collector := metrics.New()
	options := []orchestrator.Option{
		orchestrator.WithMaxWorkers(cfg.Settings.MaxWorkers),
		orchestrator.WithObservers(collector),
		orchestrator.WithHooks(orchestrator.Hooks{OnEvent: logEvent}),
	}

	if cfg.Settings.Extract {
		options = append(options, orchestrator.WithPostActions(archive.NewManager()))
	}

	hookManager, err := loadHooks(cfg.Settings)
	if err != nil {
		return nil, err
	}
	if hookManager != nil {
		options = append(options,
			orchestrator.WithPostActions(hookManager),
			orchestrator.WithObservers(hookManager),
		)
	}

	orch := orchestrator.New(newRegistry(cfg), download.NewController(store), options...)

	logger.Info("Starting run", logger.Fields{
		"uris":    len(uris),
		"dest":    cfg.Settings.DestDir,
		"retries": cfg.Settings.Retries,
		"workers": cfg.Settings.MaxWorkers,
	})

	requests := model.NewRequests(uris, cfg.Settings.DestDir, cfg.Settings.Retries)
	outcomes := orch.Run(ctx, requests)

	if orch.Stopped() {
		outcomes = append(outcomes, drain(orch, drainTimeout(cfg))...)
	}

	summary := model.Summarize(outcomes)
	if orch.Stopped() {
		logger.Warn("Run interrupted", logger.Fields{"unfinished": len(requests) - summary.Total()})
	}
	logger.Info(fmt.Sprintf("Run finished: succeeded=%d failed=%d skipped=%d",
		summary.Succeeded, summary.Failed, summary.Skipped))

	if cfg.Settings.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.Settings.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics file", logger.Fields{"path": cfg.Settings.MetricsFile, "error": err})
		}
	}

	return outcomes, nil
}

// drain waits for the downloads still running after an interrupt so they can
// remove their partial files before the process exits.
func drain(orch *orchestrator.Orchestrator, timeout time.Duration) []model.Outcome {
	logger.Warn("Run interrupted, waiting for running downloads to clean up")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	late, err := orch.Wait(ctx)
	if err != nil {
		logger.Warn("Gave up waiting for running downloads", logger.Fields{"error": err, "timeout": timeout})
	}
	return late
}

// drainTimeout bounds how long an interrupted run waits for its workers. Each
// worker blocks at most one protocol timeout per read before it sees the stop flag.
func drainTimeout(cfg *config.Config) time.Duration {
	longest := max(cfg.HTTP.Timeout, cfg.FTP.Timeout, cfg.SFTP.Timeout)
	return DrainTimeoutFactor * longest
}

func newRegistry(cfg *config.Config) *protocol.Registry {
	userAgent := cfg.HTTP.UserAgent
	if userAgent == "" {
		userAgent = UserAgent()
	}

	return protocol.NewDefaultRegistry(
		protocol.HTTPOptions{
			Timeout:   cfg.HTTP.Timeout,
			ChunkSize: cfg.HTTP.ChunkSize,
			UserAgent: userAgent,
		},
		protocol.FTPOptions{
			Timeout:   cfg.FTP.Timeout,
			ChunkSize: cfg.FTP.ChunkSize,
		},
		protocol.SFTPOptions{
			Timeout:        cfg.SFTP.Timeout,
			ChunkSize:      cfg.SFTP.ChunkSize,
			UseKey:         cfg.SFTP.UseKey,
			KeyPath:        cfg.SFTP.KeyPath,
			Password:       cfg.SFTP.Password,
			KnownHostsPath: cfg.SFTP.KnownHosts,
		},
	)
}

// loadHooks returns nil when no hook script or hooks directory is configured.
func loadHooks(s config.Settings) (*hooks.DefaultHookManager, error) {
	if s.HookScript == "" && s.HooksDir == "" {
		return nil, nil
	}

	manager := hooks.NewHookManager()
	if s.HooksDir != "" {
		if err := hooks.LoadHooksFromDir(manager, s.HooksDir); err != nil {
			return nil, err
		}
	}
	if s.HookScript != "" {
		if err := hooks.LoadHookFile(manager, hooks.PostDownload, s.HookScript); err != nil {
			return nil, err
		}
	}
	return manager, nil
}

func logEvent(e orchestrator.Event) {
	logger.Debug("Download event", logger.Fields{"phase": e.Phase, "uri": e.URI, "detail": e.Msg})
}

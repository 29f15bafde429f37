package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/crcsum/internal/config"
	"github.com/bamsammich/crcsum/internal/diff"
	"github.com/bamsammich/crcsum/internal/engine"
	"github.com/bamsammich/crcsum/internal/filter"
	"github.com/bamsammich/crcsum/internal/manifest"
	"github.com/bamsammich/crcsum/internal/metrics"
	"github.com/bamsammich/crcsum/internal/stats"
	"github.com/bamsammich/crcsum/internal/transport"
	"github.com/bamsammich/crcsum/internal/ui"
)

var version = "dev"

// maxTimeoutMS is the largest --timeout that fits in a time.Duration.
const maxTimeoutMS = math.MaxInt64 / int64(time.Millisecond)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// options holds every value the root command reads from flags.
type options struct {
	output      string
	checks      string
	verbose     bool
	noProgress  bool
	timeoutMS   int64
	workers     int
	filterFile  string
	minSizeStr  string
	maxSizeStr  string
	bwLimitStr  string
	logFile     string
	sshKeyFile  string
	sshPort     int
	s3Region    string
	s3Endpoint  string
	metricsFile string
	showVersion bool
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: main CLI entry point orchestrates flag parsing and mode selection
func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	chain := filter.NewChain()

	rootCmd := &cobra.Command{
		Use:   "crcsum [directory] [flags]",
		Short: "Parallel CRC-32 checksums of a directory tree, with manifest write and compare",
		Long: `crcsum walks a directory tree (default /) and computes a CRC-32 checksum
of every regular file using a pool of workers.

Without -o or -c it prints one "checksum  path" line per file. With -o it
writes a binary manifest (zstd-compressed when the name ends in .zst). With -c
it compares the tree against a manifest read from a local file, an http(s)
URL, an SFTP location or an s3:// object and reports changed files.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				return nil
			}
			return cobra.MaximumNArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(stdout, "crcsum %s\n", version)
				return nil
			}

			root := "/"
			if len(args) > 0 {
				root = args[0]
			}

			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(stderr, "warning: failed to load config: %v\n", err)
			}
			applyConfigDefaults(cmd, cfg, &opts)
			for _, pattern := range cfg.Defaults.Exclude {
				if err := chain.AddExclude(pattern); err != nil {
					return fmt.Errorf("config exclude %q: %w", pattern, err)
				}
			}
			ui.ApplyTheme(cfg.Theme)

			if opts.timeoutMS < 0 || opts.timeoutMS > maxTimeoutMS {
				return fmt.Errorf("invalid timeout value: %d", opts.timeoutMS)
			}

			// Configure logging.
			logLevel := slog.LevelWarn
			if opts.verbose {
				logLevel = slog.LevelInfo
			}
			textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var logHandler slog.Handler = textHandler
			if opts.logFile != "" {
				lf, lfErr := os.Create(opts.logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			slog.SetDefault(slog.New(logHandler))

			// Parse bandwidth limit.
			var bwLimit int64
			if opts.bwLimitStr != "" {
				bwLimit, err = filter.ParseSize(opts.bwLimitStr)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
			}

			// Load filter file if specified.
			if opts.filterFile != "" {
				if err := chain.LoadFile(opts.filterFile); err != nil {
					return fmt.Errorf("load filter file: %w", err)
				}
			}

			// Parse size filters.
			if opts.minSizeStr != "" {
				n, err := filter.ParseSize(opts.minSizeStr)
				if err != nil {
					return fmt.Errorf("invalid --min-size: %w", err)
				}
				chain.SetMinSize(n)
			}
			if opts.maxSizeStr != "" {
				n, err := filter.ParseSize(opts.maxSizeStr)
				if err != nil {
					return fmt.Errorf("invalid --max-size: %w", err)
				}
				chain.SetMaxSize(n)
			}

			mode := engine.ModePrint
			switch {
			case opts.output != "":
				mode = engine.ModeOutput
			case opts.checks != "":
				mode = engine.ModeCheck
			}

			// Set up context with signal handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// The baseline is fetched before scanning so a bad location fails fast.
			var baseline map[string]uint32
			if mode == engine.ModeCheck {
				baseline, err = loadBaseline(ctx, opts)
				if err != nil {
					return err
				}
			}

			collector := stats.NewCollector()
			engineCfg := engine.Config{
				Root:    root,
				Mode:    mode,
				Workers: opts.workers,
				Timeout: time.Duration(opts.timeoutMS) * time.Millisecond,
				BWLimit: bwLimit,
				Out:     stdout,
				Stats:   collector,
			}
			if !chain.Empty() {
				engineCfg.Filter = chain
			}
			if errFile, ok := stderr.(*os.File); ok && !opts.noProgress && ui.IsTTY(errFile) {
				engineCfg.Progress = ui.NewProgress(stderr, collector)
			}

			slog.Debug("starting scan",
				"root", root,
				"mode", mode,
				"workers", opts.workers,
				"timeout_ms", opts.timeoutMS,
			)

			result := engine.Run(ctx, engineCfg)
			if ctx.Err() != nil {
				slog.Warn("interrupted", "processed", result.Stats.FilesProcessed)
				return &exitError{code: 130}
			}
			if result.Err != nil {
				slog.Error("scan failed", "error", result.Err)
				return result.Err
			}

			summary := metrics.Run{
				Root:     root,
				Mode:     mode.String(),
				Stats:    result.Stats,
				Finished: time.Now(),
			}

			outFile, _ := stdout.(*os.File)
			reporter := ui.NewReporter(stdout, outFile != nil && ui.IsTTY(outFile))

			switch mode {
			case engine.ModeOutput:
				info, err := manifest.WriteFile(opts.output, result.Records)
				if err != nil {
					return fmt.Errorf("write checksums: %w", err)
				}
				slog.Info("manifest written",
					"path", opts.output,
					"records", info.Records,
					"bytes", info.RawBytes,
					"compressed", info.Compressed,
					"fingerprint", info.Fingerprint,
				)
				reporter.Written(opts.output, info.Records)
			case engine.ModeCheck:
				rep := diff.Compare(result.Records, baseline, opts.verbose)
				slog.Info("comparison complete",
					"changed", rep.Changed,
					"unchanged", rep.Unchanged,
					"not_in_baseline", rep.NotInBaseline,
				)
				reporter.Diff(rep)
				summary.Compared = true
				summary.Changed = rep.Changed
				summary.Unchanged = rep.Unchanged
			}

			if opts.metricsFile != "" {
				if err := metrics.WriteTextfile(opts.metricsFile, summary); err != nil {
					return err
				}
			}

			reporter.Skipped(result.Skipped, opts.verbose)

			if opts.verbose {
				fmt.Fprintln(stderr, ui.CompletionSummary(result.Stats))
			}
			return nil
		},
	}

	rootCmd.SetArgs(normalizeArgs(args))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	// Version flag handled in RunE, but also register the flag.
	rootCmd.Flags().BoolVar(&opts.showVersion, "version", false, "print version and exit")

	rootCmd.Flags().
		StringVarP(&opts.output, "output", "o", "", "write checksums to FILE (zstd-compressed if FILE ends in .zst)")
	rootCmd.Flags().
		StringVarP(&opts.checks, "checks", "c", "", "compare against checksums from FILE or URL")
	rootCmd.Flags().
		BoolVarP(&opts.verbose, "verbose", "v", false, "report unchanged files and list skipped files")
	rootCmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable progress display")
	rootCmd.Flags().
		Int64VarP(&opts.timeoutMS, "timeout", "t", 0, "per-file timeout in milliseconds (0 = none)")
	rootCmd.Flags().
		IntVarP(&opts.workers, "workers", "n", 0, "number of checksum workers (default: NumCPU)")

	// Filter flags use a custom pflag.Value to preserve CLI ordering.
	rootCmd.Flags().
		VarP(&filterFlag{chain: chain, include: false}, "exclude", "", "exclude files matching PATTERN (repeatable)")
	rootCmd.Flags().
		VarP(&filterFlag{chain: chain, include: true}, "include", "", "include files matching PATTERN (repeatable)")
	rootCmd.Flags().StringVar(&opts.filterFile, "filter", "", "read filter rules from FILE")
	rootCmd.Flags().
		StringVar(&opts.minSizeStr, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	rootCmd.Flags().
		StringVar(&opts.maxSizeStr, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")
	rootCmd.Flags().
		StringVar(&opts.bwLimitStr, "bwlimit", "", "read bandwidth limit (e.g. 100M, 1G)")
	rootCmd.Flags().StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().
		StringVar(&opts.sshKeyFile, "ssh-key", "", "SSH private key file for sftp checks (default: auto-detect)")
	rootCmd.Flags().IntVar(&opts.sshPort, "ssh-port", 22, "SSH port for sftp checks")
	rootCmd.Flags().
		StringVar(&opts.s3Region, "s3-region", "", "AWS region for s3:// checks (default: from AWS config)")
	rootCmd.Flags().
		StringVar(&opts.s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL for s3:// checks")
	rootCmd.Flags().
		StringVar(&opts.metricsFile, "metrics", "", "write Prometheus textfile metrics to FILE")

	rootCmd.MarkFlagsMutuallyExclusive("output", "checks")

	rootCmd.AddCommand(newDocsCmd())

	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "exclude" || f.Name == "include" {
			f.NoOptDefVal = ""
		}
	})

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

// loadBaseline fetches and decodes the manifest named by --checks.
func loadBaseline(ctx context.Context, opts options) (map[string]uint32, error) {
	loc := transport.ParseLocation(opts.checks)
	rc, err := transport.Open(ctx, loc, transport.Options{
		SSH: transport.SSHOpts{
			Port:    opts.sshPort,
			KeyFile: config.ExpandHome(opts.sshKeyFile),
		},
		S3: transport.S3Opts{
			Region:   opts.s3Region,
			Endpoint: opts.s3Endpoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("read checksums: %w", err)
	}
	defer rc.Close()

	baseline, info, err := manifest.Read(rc)
	if err != nil {
		return nil, fmt.Errorf("read checksums from %s: %w", loc, err)
	}
	slog.Info("baseline loaded",
		"location", loc.String(),
		"records", info.Records,
		"compressed", info.Compressed,
		"fingerprint", info.Fingerprint,
	)
	return baseline, nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, cfg config.Config, opts *options) {
	d := cfg.Defaults
	if !cmd.Flags().Changed("workers") && d.Workers != nil {
		opts.workers = *d.Workers
	}
	if !cmd.Flags().Changed("timeout") && d.Timeout != nil {
		opts.timeoutMS = *d.Timeout
	}
	if !cmd.Flags().Changed("no-progress") && d.NoProgress != nil {
		opts.noProgress = *d.NoProgress
	}
	if !cmd.Flags().Changed("verbose") && d.Verbose != nil {
		opts.verbose = *d.Verbose
	}
	if !cmd.Flags().Changed("bwlimit") && d.BWLimit != nil {
		opts.bwLimitStr = *d.BWLimit
	}
	if !cmd.Flags().Changed("ssh-port") && cfg.SSH.Port != nil {
		opts.sshPort = *cfg.SSH.Port
	}
	if !cmd.Flags().Changed("ssh-key") && cfg.SSH.KeyFile != nil {
		opts.sshKeyFile = *cfg.SSH.KeyFile
	}
	if !cmd.Flags().Changed("s3-region") && cfg.S3.Region != nil {
		opts.s3Region = *cfg.S3.Region
	}
	if !cmd.Flags().Changed("s3-endpoint") && cfg.S3.Endpoint != nil {
		opts.s3Endpoint = *cfg.S3.Endpoint
	}
	if !cmd.Flags().Changed("metrics") && d.Metrics != nil {
		opts.metricsFile = *d.Metrics
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/bardec/internal/config"
	"github.com/MeKo-Tech/bardec/internal/version"
)

// app holds the state shared by the root command and its subcommands for
// one execution.
type app struct {
	cfgFile string
	loader  *config.Loader
	cfg     *config.Config
	runID   string
}

// NewRootCommand builds the bardec command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "bardec [files | dirs | urls ...]",
		Short: "Batch barcode and 2D code decoder",
		Long: `bardec decodes barcodes and 2D codes (QR Code, Data Matrix, Aztec,
EAN/UPC, Code 128, Code 39, Code 93, ITF, Codabar, RSS-14) from images, PDF
files and URLs.

Inputs are processed by a fixed pool of workers. Every decoded code is
written to stdout as one JSON line:

  {"type":"QR_CODE","data":"...","orientation":null,"points":[{"x":1,"y":2}]}

Logs go to stderr.

Examples:
  bardec label.png
  bardec --threads=8 --recursive scans/
  bardec --crop=0,0,400,300 --formats=qr,datamatrix page.pdf
  bardec --dump-results https://example.com/code.png`,
		Version: version.String(),
		// Positional arguments are inputs, not subcommand names.
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runDecode(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/bardec, /etc/bardec)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	addDecodeFlags(rootCmd)

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns a fresh root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return NewRootCommand()
}

// initialize loads the configuration, applies global flag overrides and
// installs the structured logger on stderr.
func (a *app) initialize(cmd *cobra.Command) error {
	a.loader = config.NewLoader()

	cfg, err := a.loader.LoadWithFile(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	a.cfg = cfg

	var logLevel slog.Level
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			logLevel = slog.LevelDebug
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		default:
			logLevel = slog.LevelInfo
		}
	}

	// stdout carries the decode records
	a.runID = uuid.NewString()
	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})).With("run_id", a.runID)
	slog.SetDefault(logger)

	if used := a.loader.GetConfigFileUsed(); used != "" {
		logger.Debug("loaded configuration", "file", used)
	}
	return nil
}

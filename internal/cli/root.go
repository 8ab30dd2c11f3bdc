package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/foodsheet/internal/config"
	"github.com/roach88/foodsheet/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the foodsheet CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "foodsheet",
		Short: "foodsheet - food ordering over a shared record store",
		Long: `foodsheet runs a small food-ordering service: customers build carts and
submit orders, staff maintain the product catalog and move orders
through pending, completed and cancelled.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the SQLite database (overrides config)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewProductCommand(opts))
	cmd.AddCommand(NewOrderCommand(opts))
	cmd.AddCommand(NewMenuCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// loadConfig resolves the configuration: defaults, file, environment, flags.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, nil
}

// newLogger builds the text logger for cfg. cfg is already validated.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// adminEnv is the state shared by the catalog and order commands.
type adminEnv struct {
	cfg    config.Config
	store  *store.Store
	logger *slog.Logger
	out    *OutputFormatter
}

// openAdmin loads config and opens the store. Failures are rendered on the
// command's output.
func openAdmin(opts *RootOptions, cmd *cobra.Command) (*adminEnv, error) {
	out := newFormatter(opts, cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error(), nil)
		return nil, reported(err)
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	logger.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		_ = out.Error(ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
		return nil, &ExitError{Code: ExitCommandError, Message: "failed to open database", Err: err, Reported: true}
	}
	return &adminEnv{cfg: cfg, store: st, logger: logger, out: out}, nil
}

func (e *adminEnv) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing database", "error", err)
	}
}

func reported(err error) error {
	if ee, ok := err.(*ExitError); ok {
		ee.Reported = true
		return ee
	}
	return &ExitError{Code: ExitCommandError, Message: err.Error(), Reported: true}
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/raffle/internal/draw"
	"github.com/desertthunder/raffle/internal/formatter"
	"github.com/desertthunder/raffle/internal/raffle"
	"github.com/desertthunder/raffle/internal/shared"
	"github.com/desertthunder/raffle/internal/store"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	fixedConfig bool
	memory      bool
	store       store.Store
	logger      *log.Logger
	output      io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // When set, the --config flag is ignored unless given explicitly
	ConfigPath string
	Store      store.Store // When set, used instead of the configured database
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	fixed := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		fixedConfig: fixed,
		store:       opts.Store,
		logger:      opts.Logger,
		output:      opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, participantsCommand, winnersCommand, drawCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by the global flags and applies the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.memory = cmd.Bool("memory")

	if !r.fixedConfig || cmd.IsSet("config") {
		r.configPath = cmd.String("config")
		config, err := shared.LoadConfigOrDefault(r.configPath)
		if err != nil {
			return ctx, fmt.Errorf("failed to load config %s: %w", r.configPath, err)
		}
		r.config = config
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	ll, err := shared.ParseLogLevel(level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, ll)

	return ctx, nil
}

// SetLogger replaces the logger used by subsequent commands.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// drawOptions maps the [draw] config section onto engine options.
func (r *Runner) drawOptions() (draw.Policy, draw.Options, error) {
	policy, err := draw.ParsePolicy(r.config.Draw.Policy)
	if err != nil {
		return policy, draw.Options{}, err
	}
	return policy, draw.Options{
		TickInterval: r.config.Draw.TickInterval,
		Duration:     r.config.Draw.Duration,
		SettleDelay:  r.config.Draw.SettleDelay,
		Logger:       r.logger,
	}, nil
}

// openStore returns the store for this invocation and a cleanup func for it.
func (r *Runner) openStore(ctx context.Context) (store.Store, func(), error) {
	switch {
	case r.store != nil:
		return r.store, func() {}, nil
	case r.memory:
		r.logger.Debug("using in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}

	db, err := r.openDatabase(ctx)
	if err != nil {
		return nil, nil, err
	}
	return store.NewSQLiteStore(db), func() { db.Close() }, nil
}

// openDatabase opens the configured database and brings its schema up to date.
func (r *Runner) openDatabase(ctx context.Context) (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrationsContext(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// openSession opens a raffle session over the configured store. Call the returned func when done.
func (r *Runner) openSession(ctx context.Context) (*raffle.Session, func(), error) {
	policy, opts, err := r.drawOptions()
	if err != nil {
		return nil, nil, err
	}

	st, closeStore, err := r.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	session, err := raffle.Open(ctx, raffle.Options{
		Store:  st,
		Policy: policy,
		Draw:   opts,
		Seed:   r.config.Roster.Seed,
		Logger: r.logger,
	})
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to open raffle: %w", err)
	}

	return session, func() {
		if err := session.Close(); err != nil {
			r.logger.Warn("failed to close session", "error", err)
		}
		closeStore()
	}, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

func joinFormats() string {
	return strings.Join(formatter.Formats, ", ")
}

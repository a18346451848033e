package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/brygga/kortlek/internal/adapters/storage/sqlite"
	"github.com/brygga/kortlek/internal/app"
	"github.com/brygga/kortlek/internal/config"
	"github.com/brygga/kortlek/internal/platform"
	"github.com/brygga/kortlek/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd(os.Stdout, os.Stderr)
	if err := fang.Execute(ctx, root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// cliOptions holds the persistent flag values shared by every subcommand.
type cliOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// newRootCmd builds the command tree; running the root with no subcommand
// launches the widget.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &cliOptions{appName: "kortlek", devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("KORTLEK_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("KORTLEK_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:          "kortlek",
		Short:        "An animated card stack for the terminal",
		Long:         "kortlek shows a deck of cards you can shuffle by dragging, fan out into a sliding grid, and open full screen.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWidget(cmd.Context(), *opts, stdout, stderr)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to sqlite database (':memory:' for ephemeral)")
	root.PersistentFlags().StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(newPathsCmd(opts, stdout))
	root.AddCommand(newDeckCmd(opts, stdout))
	return root
}

// newPathsCmd prints the resolved config/data locations.
func newPathsCmd(opts *cliOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := resolvePaths(*opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(stdout, "logs: %s\n", paths.LogDir)
			return nil
		},
	}
}

// newDeckCmd validates and lists the configured deck without starting the UI.
func newDeckCmd(opts *cliOptions, stdout io.Writer) *cobra.Command {
	deck := &cobra.Command{
		Use:   "deck",
		Short: "Inspect the configured deck",
	}
	deck.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the configured deck and list its cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := resolveConfig(*opts)
			if err != nil {
				return err
			}
			cards, err := cfg.BuildDeck()
			if err != nil {
				return fmt.Errorf("build deck: %w", err)
			}
			for i, card := range cards {
				_, _ = fmt.Fprintf(stdout, "%d\t%s\t%s\n", i, card.Color, card.Title)
			}
			_, _ = fmt.Fprintf(stdout, "%d cards ok\n", len(cards))
			return nil
		},
	})
	return deck
}

// resolvePaths resolves platform paths from the CLI options.
func resolvePaths(opts cliOptions) (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
}

// resolveConfig applies path, environment and flag precedence and loads the
// config file. It returns the loaded config and the config path used.
func resolveConfig(opts cliOptions) (config.Config, string, error) {
	paths, err := resolvePaths(opts)
	if err != nil {
		return config.Config{}, "", err
	}

	configPath := opts.configPath
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("KORTLEK_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("KORTLEK_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	return cfg, configPath, nil
}

// runWidget runs the requested command flow.
func runWidget(ctx context.Context, opts cliOptions, stdout, stderr io.Writer) error {
	paths, err := resolvePaths(opts)
	if err != nil {
		return err
	}
	cfg, configPath, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, paths.LogDir, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while
	// the widget is on screen.
	logger.SetConsoleEnabled(false)
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode)
	logger.Info("configuration loaded", "config_path", configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	repo, err := openRepository(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return fmt.Errorf("open sqlite repository: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
		}
	}()
	logger.Info("sqlite repository ready", "db_path", cfg.Database.Path)

	svc := app.NewService(repo, uuid.NewString, nil)
	deck, err := cfg.BuildDeck()
	if err != nil {
		return fmt.Errorf("build deck: %w", err)
	}
	logger.Debug("deck built", "cards", len(deck))

	m, err := tui.NewModel(cfg.StackConfig(), deck, svc,
		tui.WithKeyBindings(tui.KeyBindings{
			ToggleView: cfg.Keys.ToggleView,
			Back:       cfg.Keys.Back,
			Copy:       cfg.Keys.Copy,
			Quit:       cfg.Keys.Quit,
		}),
		tui.WithFrameRate(cfg.Animation.FrameRate),
		tui.WithTipTimeout(time.Duration(cfg.Animation.TipTimeoutSeconds)*time.Second),
		tui.WithRecorder(&interactionRecorder{svc: svc, logger: logger}),
	)
	if err != nil {
		return fmt.Errorf("build widget model: %w", err)
	}

	logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// openRepository opens the sqlite store; ':memory:' selects the ephemeral
// shared in-memory database.
func openRepository(path string) (*sqlite.Repository, error) {
	if strings.TrimSpace(path) == ":memory:" {
		return sqlite.OpenInMemory()
	}
	return sqlite.Open(path)
}

// interactionRecorder persists widget interaction events through the
// application service.
type interactionRecorder struct {
	svc    *app.Service
	logger *runtimeLogger
}

// Record handles record.
func (r *interactionRecorder) Record(kind string, cardIndex int) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := r.svc.RecordInteraction(ctx, kind, cardIndex); err != nil {
		r.logger.Warn("record interaction failed", "kind", kind, "card", cardIndex, "err", err)
	}
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

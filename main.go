package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/lhjing/workdash/internal/aggregator"
	"github.com/lhjing/workdash/internal/commands"
	"github.com/lhjing/workdash/internal/core/config"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/data/db"
	"github.com/lhjing/workdash/internal/data/stores"
	"github.com/lhjing/workdash/internal/source"
	"github.com/lhjing/workdash/internal/source/gitlab"
	"github.com/lhjing/workdash/internal/source/oa"
	"github.com/lhjing/workdash/internal/source/zentao"
	"github.com/lhjing/workdash/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		database  *db.DB
	)

	flags := &commands.Flags{}
	dashApp := &commands.App{}

	app := &cli.Command{
		Name:      "workdash",
		Usage:     "Aggregate your work signals from ZenTao, GitLab, and OA",
		UsageText: "workdash [global options] command [command options]",
		Description: `Workdash scrapes the internal systems you already have sessions
with (task tracker, GitLab activity, office work-log/canteen) and merges
them into one snapshot: open tasks and bugs, today's commits, whether the
work log is filled, and this week's canteen menu.

Run 'workdash refresh' to fetch everything, 'workdash show' to re-print
the last snapshot, and 'workdash summary' for an AI work summary.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("WORKDASH_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/workdash.log)",
				Sources:     cli.EnvVars("WORKDASH_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("WORKDASH_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("WORKDASH_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/workdash.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "workdash.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			database, err = db.Open(cfg.DataDir, db.DefaultOpenOptions())
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			kvStore := stores.NewKVStore(database)

			// One shared cookie-jar client; all sources ride the same
			// ambient session store.
			httpClient, err := source.NewClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)
			if err != nil {
				return ctx, fmt.Errorf("create http client: %w", err)
			}

			sources := []source.Source{
				zentao.New(httpClient, cfg.Sources[model.SourceZentao]),
				gitlab.New(httpClient, cfg.Sources[model.SourceGitLab], nil),
				oa.New(httpClient, cfg.Sources[model.SourceOA], nil),
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*dashApp = commands.App{
				Config:       cfg,
				Store:        kvStore,
				Orchestrator: aggregator.New(kvStore, cfg, sources, nil),
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	showCmd := commands.NewShowCmd(flags, dashApp)

	app = commands.NewRefreshCmd(flags, dashApp).Register(app)
	app = showCmd.Register(app)
	app = commands.NewSummaryCmd(flags, dashApp).Register(app)
	app = commands.NewDishCmd(flags, dashApp).Register(app)
	app = commands.NewConfigCmd(flags, dashApp).Register(app)

	// Default to showing the last snapshot when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'workdash --help' for usage", c.Args().First())
		}
		return showCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}

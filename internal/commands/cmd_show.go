package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lhjing/workdash/internal/data/stores"
	"github.com/lhjing/workdash/pkg/iojson"
)

type ShowCmd struct {
	flags *Flags
	app   *App

	// flags
	jsonOutput bool
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags, app *App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Print the last persisted snapshot without fetching",
		UsageText: "workdash show [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the snapshot as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// Run executes the show action directly. The root command uses this as
// its default action when no subcommand is given.
func (cmd *ShowCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	snap, err := cmd.app.Orchestrator.Load(ctx)
	if err != nil {
		if stores.IsNotFoundError(err) {
			return fmt.Errorf("no snapshot yet; run 'workdash refresh' first")
		}
		return fmt.Errorf("load snapshot: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.Write(snap)
	}

	renderSnapshot(os.Stdout, snap)
	return nil
}

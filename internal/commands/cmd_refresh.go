package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lhjing/workdash/internal/core/styles"
	"github.com/lhjing/workdash/pkg/iojson"
)

type RefreshCmd struct {
	flags *Flags
	app   *App

	// flags
	jsonOutput bool
}

// NewRefreshCmd creates a new refresh command
func NewRefreshCmd(flags *Flags, app *App) *RefreshCmd {
	return &RefreshCmd{flags: flags, app: app}
}

// Register adds the refresh command to the application
func (cmd *RefreshCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "refresh",
		Usage:     "Fetch all enabled sources and print the new snapshot",
		UsageText: "workdash refresh [--json]",
		Description: `Runs one full refresh cycle: every enabled source is fetched in
parallel, results are merged into a snapshot, and the snapshot replaces the
previously persisted one. Sources whose session has expired are reported
with their login URL instead of failing the refresh.`,
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

func (cmd *RefreshCmd) run(ctx context.Context, c *cli.Command) error {
	snap, err := cmd.app.Orchestrator.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.Write(snap)
	}

	renderSnapshot(os.Stdout, snap)

	remind, err := cmd.app.Orchestrator.CheckReminder(ctx)
	if err != nil {
		return fmt.Errorf("check reminder: %w", err)
	}
	if remind {
		fmt.Println(styles.Warning.Render("今日工作日志尚未填写，请及时完成填写！"))
	}

	return nil
}

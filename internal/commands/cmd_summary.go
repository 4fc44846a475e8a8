package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/lhjing/workdash/internal/ai"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/data/stores"
	"github.com/lhjing/workdash/pkg/iojson"
)

type SummaryCmd struct {
	flags *Flags
	app   *App

	// flags
	bugs       bool
	fileReader iojson.FileReader[*model.Snapshot]
}

// NewSummaryCmd creates a new summary command
func NewSummaryCmd(flags *Flags, app *App) *SummaryCmd {
	return &SummaryCmd{flags: flags, app: app}
}

// Register adds the summary command to the application
func (cmd *SummaryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "summary",
		Usage:     "Generate an AI summary from the last snapshot",
		UsageText: "workdash summary [--bugs] [-f snapshot.json]",
		Description: `Summarizes the commit messages of the last snapshot via the
configured AI provider. With --bugs, analyzes the defect list instead.

By default the snapshot comes from the local store; pass -f to
summarize a 'workdash show --json' dump instead.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "bugs",
				Usage:       "analyze the defect list instead of commits",
				Destination: &cmd.bugs,
			},
			cmd.fileReader.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SummaryCmd) run(ctx context.Context, c *cli.Command) error {
	client, err := ai.NewClient(cmd.app.Config.AI)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return fmt.Errorf("no AI API key configured; set ai.api_key in %s", cmd.flags.ConfigPath)
		}
		return err
	}

	var snap *model.Snapshot
	if c.IsSet("file") {
		snap, err = cmd.fileReader.Read()
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
	} else {
		snap, err = cmd.app.Orchestrator.Load(ctx)
		if err != nil {
			if stores.IsNotFoundError(err) {
				return fmt.Errorf("no snapshot yet; run 'workdash refresh' first")
			}
			return fmt.Errorf("load snapshot: %w", err)
		}
	}

	summarizer := ai.NewSummarizer(client)

	var text string
	if cmd.bugs {
		text, err = summarizer.BugSummary(ctx, snap)
	} else {
		text, err = summarizer.WorkSummary(ctx, snap)
	}
	if err != nil {
		if errors.Is(err, ai.ErrNoActivity) {
			fmt.Println("暂无可总结的数据，请先刷新。")
			return nil
		}
		return fmt.Errorf("generate summary: %w", err)
	}

	fmt.Println(text)
	return nil
}

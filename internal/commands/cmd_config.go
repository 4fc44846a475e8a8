package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/lhjing/workdash/pkg/iojson"
)

type ConfigCmd struct {
	flags *Flags
	app   *App

	// flags
	jsonOutput bool
}

// NewConfigCmd creates a new config command
func NewConfigCmd(flags *Flags, app *App) *ConfigCmd {
	return &ConfigCmd{flags: flags, app: app}
}

// Register adds the config command to the application
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "config",
		Usage:     "Print the effective merged configuration",
		UsageText: "workdash config [--json]",
		Description: `Prints the configuration after defaults and the user file are
merged, which is what every other command actually runs with.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ConfigCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.jsonOutput {
		return iojson.Write(cmd.app.Config)
	}

	out, err := yaml.Marshal(cmd.app.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, _ = os.Stdout.Write(out)
	return nil
}

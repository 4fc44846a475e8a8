package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/lhjing/workdash/internal/ai"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/core/styles"
)

type DishCmd struct {
	flags *Flags
	app   *App

	// flags
	meal string
}

// NewDishCmd creates a new dish command
func NewDishCmd(flags *Flags, app *App) *DishCmd {
	return &DishCmd{flags: flags, app: app}
}

// Register adds the dish command to the application
func (cmd *DishCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "dish",
		Usage:     "Look up or generate the detail card for a canteen dish",
		UsageText: "workdash dish [--meal breakfast|lunch|dinner] <name>",
		Description: `Generates an AI description of a canteen dish (intro, ingredients,
cooking method) plus up to three reference photos. Results are cached per
ISO week, matching the lifetime of the menu they belong to.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "meal",
				Usage:       "meal period context (breakfast, lunch, dinner)",
				Value:       "lunch",
				Destination: &cmd.meal,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DishCmd) run(ctx context.Context, c *cli.Command) error {
	dishName := strings.TrimSpace(c.Args().First())
	if dishName == "" {
		return fmt.Errorf("usage: workdash dish [--meal lunch] <name>")
	}

	meal := model.MealPeriod(cmd.meal)
	switch meal {
	case model.Breakfast, model.Lunch, model.Dinner:
	default:
		return fmt.Errorf("unknown meal %q (want breakfast, lunch, or dinner)", cmd.meal)
	}

	client, err := ai.NewClient(cmd.app.Config.AI)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return fmt.Errorf("no AI API key configured; set ai.api_key in %s", cmd.flags.ConfigPath)
		}
		return err
	}

	svc := ai.NewDishService(client, ai.NewImageSearcher(cmd.app.Config.ImageSearch), cmd.app.Store, nil)

	detail, err := svc.Detail(ctx, dishName, meal)
	if err != nil {
		return fmt.Errorf("dish detail: %w", err)
	}

	fmt.Println(styles.Header.Render(detail.DishName))
	fmt.Println(detail.Intro)
	if detail.Degraded {
		fmt.Println(styles.Warning.Render("生成失败，稍后可重试：" + detail.Error))
		return nil
	}

	fmt.Println(styles.Muted.Render("食材：" + strings.Join(detail.Ingredients, "、")))
	fmt.Println(styles.Muted.Render("做法：" + strings.Join(detail.CookingMethods, "、")))
	for i, step := range detail.CookingSteps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
	for _, u := range detail.ImageURLs {
		fmt.Println(styles.Muted.Render(u))
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/deckwright/internal"
	"github.com/starford/deckwright/internal/models"
	pkgconfig "github.com/starford/deckwright/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	req := models.DeckBuildRequest{
		CommanderName: cmd.String("commander"),
		RCMode:        cmd.String("rc-mode"),
		Language:      cmd.String("language"),
		AllowLoops:    cmd.Bool("allow-loops"),
		Colors:        cmd.StringSlice("color"),
	}
	if cmd.IsSet("seed") {
		seed := cmd.Uint("seed")
		req.Seed = &seed
	}

	if err := internal.BuildOnce(ctx, req, internal.WithConfig(cfg), internal.WithOutput(os.Stdout)); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "deckwright",
		Usage:  "Commander deck construction engine with snapshot-based bans, aliases and color identity",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (.yaml or .toml)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Build one deck, store it and print it as JSON",
				ArgsUsage: " ",
				Action:    runBuild,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "commander", Aliases: []string{"n"}, Usage: "Commander name or alias", Required: true},
					&cli.StringFlag{Name: "rc-mode", Usage: "Reconciliation mode: strict, hybrid or offline"},
					&cli.StringFlag{Name: "language", Usage: "Output language tag"},
					&cli.BoolFlag{Name: "allow-loops", Usage: "Allow infinite-combo pieces"},
					&cli.StringSliceFlag{Name: "color", Usage: "Color identity for commanders missing from the catalog (repeatable)"},
					&cli.UintFlag{Name: "seed", Usage: "Shuffle seed for a reproducible deck"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

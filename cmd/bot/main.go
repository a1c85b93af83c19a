package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/clanhall/gatekeeper/internal/bot"
	"github.com/clanhall/gatekeeper/internal/setup"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// BotLogDir specifies where bot log files are stored.
const BotLogDir = "logs/bot_logs"

func main() {
	app := &cli.Command{
		Name:  "gatekeeper",
		Usage: "Start the membership verification bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Directory containing bot.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return run(ctx, c.String("config"), c.String("log-level"))
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
}

func run(ctx context.Context, configPath, logLevel string) error {
	app, err := setup.InitializeApp(BotLogDir, logLevel, configPath)
	if err != nil {
		return err
	}
	defer app.Cleanup()

	discordBot, err := bot.New(app.Config, app.Logger)
	if err != nil {
		return err
	}

	if err := discordBot.Start(ctx); err != nil {
		return err
	}

	app.Logger.Info("Bot is running. Waiting for interrupt signal to shut down.")

	// Wait for interrupt signal to gracefully shutdown the bot
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	select {
	case <-sc:
	case <-ctx.Done():
	}

	discordBot.Close(context.Background())
	app.Logger.Info("Shutdown complete", zap.String("reason", "signal"))

	return nil
}

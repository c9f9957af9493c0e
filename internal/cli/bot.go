package cli

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"gift-experience-service/internal/config"
	"gift-experience-service/internal/transport/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

// NewBotCmd runs only the Telegram front end.
func NewBotCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), *configPath)
		},
	}
}

func runBot(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token not configured (telegram.token or TELEGRAM_BOT_TOKEN)")
	}
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	logBackends(cfg)

	bot, err := newTelegramBot(cfg, rt)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return bot.Run(ctx)
}

func newTelegramBot(cfg config.Config, rt *runtime) (*telegram.Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	log.Printf("authorised on telegram account %s", api.Self.UserName)
	return telegram.NewBot(api, rt.service, rt.scriptID, telegram.WithImageBaseURL(cfg.Telegram.ImageBaseURL)), nil
}

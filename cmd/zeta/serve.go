package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pantheonlabs/zeta/internal/autonomy"
	"github.com/pantheonlabs/zeta/internal/blob"
	"github.com/pantheonlabs/zeta/internal/chat"
	"github.com/pantheonlabs/zeta/internal/config"
	"github.com/pantheonlabs/zeta/internal/db"
	"github.com/pantheonlabs/zeta/internal/llm"
	"github.com/pantheonlabs/zeta/internal/notify"
	"github.com/pantheonlabs/zeta/internal/reminders"
	"github.com/pantheonlabs/zeta/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Zeta API server and reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "zeta.yaml", "path to Zeta config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dc := cfg.Database
	gormDB, err := db.Connect(dc.Host, dc.Port, dc.User, dc.Password, dc.Name)
	if err != nil {
		return err
	}

	completer, err := llm.NewClient(llm.ClientOpts{
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
		DefaultModel: cfg.OpenAI.Model,
	})
	if err != nil {
		return err
	}

	blobs, err := blob.NewLocalStore(cfg.Storage.Dir, cfg.Storage.BaseURL)
	if err != nil {
		return err
	}

	pipeline, err := chat.NewPipeline(chat.PipelineOpts{
		DB:        gormDB,
		Completer: completer,
		Model:     cfg.OpenAI.Model,
	})
	if err != nil {
		return err
	}

	applier, err := autonomy.NewApplier(autonomy.ApplierOpts{DB: gormDB, Blobs: blobs})
	if err != nil {
		return err
	}

	policy, err := autonomy.ParsePolicy(cfg.Autonomy.Policy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Reminders.Enabled {
		notifiers, err := buildNotifiers(cfg)
		if err != nil {
			return err
		}
		scheduler, err := reminders.NewScheduler(reminders.SchedulerOpts{
			DB:        gormDB,
			Notifiers: notifiers,
			Schedule:  cfg.Reminders.Schedule,
		})
		if err != nil {
			return err
		}
		if err := scheduler.Start(); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	return server.Start(ctx, server.StartOpts{
		DB:            gormDB,
		Pipeline:      pipeline,
		Applier:       applier,
		DefaultPolicy: policy,
		Blobs:         blobs,
		Port:          cfg.Server.Port,
		Out:           cmd.OutOrStdout(),
	})
}

// buildNotifiers creates a notifier for each platform with credentials
// configured. Config validation guarantees each configured platform has a
// complete credential set.
func buildNotifiers(cfg *config.Config) ([]notify.Notifier, error) {
	var out []notify.Notifier
	if tc := cfg.Notifiers.Telegram; tc.BotToken != "" {
		n, err := notify.NewTelegram(notify.TelegramOpts{BotToken: tc.BotToken, ChatID: tc.ChatID})
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if sc := cfg.Notifiers.Slack; sc.BotToken != "" {
		n, err := notify.NewSlack(notify.SlackOpts{BotToken: sc.BotToken, ChannelID: sc.ChannelID})
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if dc := cfg.Notifiers.Discord; dc.BotToken != "" {
		n, err := notify.NewDiscord(notify.DiscordOpts{BotToken: dc.BotToken, ChannelID: dc.ChannelID})
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

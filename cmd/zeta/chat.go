package main

import (
	"fmt"
	"strconv"

	"github.com/pantheonlabs/zeta/internal/chat"
	"github.com/pantheonlabs/zeta/internal/config"
	"github.com/pantheonlabs/zeta/internal/db"
	"github.com/pantheonlabs/zeta/internal/llm"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "chat <project-id> <message>",
		Short: "Send one chat message to a project and print the reply",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}

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
			pipeline, err := chat.NewPipeline(chat.PipelineOpts{
				DB:        gormDB,
				Completer: completer,
				Model:     cfg.OpenAI.Model,
			})
			if err != nil {
				return err
			}

			reply, err := pipeline.Handle(cmd.Context(), uint(id), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "zeta.yaml", "path to Zeta config file")
	return cmd
}

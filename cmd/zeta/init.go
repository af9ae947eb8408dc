package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const configTemplate = `database:
  host: 127.0.0.1
  port: 3306
  user: root
  name: zeta

openai:
  api_key: %q
  model: gpt-4o-mini

storage:
  dir: data/files

autonomy:
  policy: shadow

server:
  port: 8080

reminders:
  enabled: true
  schedule: "* * * * *"

notifiers:
  telegram:
    bot_token: ""
    chat_id: ""
  slack:
    bot_token: ""
    channel_id: ""
  discord:
    bot_token: ""
    channel_id: ""
`

func newInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter zeta.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists", configPath)
			}

			apiKey, err := promptAPIKey(cmd)
			if err != nil {
				return err
			}

			content := fmt.Sprintf(configTemplate, apiKey)
			if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
				return fmt.Errorf("write %s: %w", configPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "zeta.yaml", "path to write the config file")
	return cmd
}

// promptAPIKey reads the OpenAI key without echoing it. Falls back to an
// empty value (resolved from OPENAI_API_KEY at load time) when stdin is
// not a terminal.
func promptAPIKey(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprint(cmd.OutOrStdout(), "OpenAI API key (leave empty to use OPENAI_API_KEY): ")
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	return string(key), nil
}

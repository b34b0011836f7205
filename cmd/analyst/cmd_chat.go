package main

import (
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat in the terminal",
	Long: `Starts an interactive session on stdin/stdout.

Commands:
  /upload <path>     attach a file to the next message
  /reset             clear the conversation and the pending file
  /persona <name>    switch persona (starts a new conversation)
  /personas          list personas
  /history           print the transcript
  /quit              leave

Anything else is sent to the model.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := bootstrap(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	return newREPL(c.session, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
}

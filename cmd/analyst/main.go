package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	provider string
	model    string
	persona  string
}

var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Chat with an LLM about the data files you upload",
	Long: "analyst keeps one conversation with a hosted model. Upload a file and it is\n" +
		"normalized (spreadsheets become CSV), stored with the provider and attached\n" +
		"to your next message only.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.provider, "provider", "", "Model provider: gemini, openai, anthropic, ollama, dummy (overrides LLM_PROVIDER)")
	f.StringVar(&rootFlags.model, "model", "", "Model name (overrides LLM_MODEL)")
	f.StringVar(&rootFlags.persona, "persona", "", "Initial persona (overrides DEFAULT_PERSONA)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the schedai application
var rootCmd = &cobra.Command{
	Use:   "schedai",
	Short: "Conversational assistant for Google Calendar",
	Long: `schedai turns natural-language requests such as "lunch with Sam tomorrow
at noon" into Google Calendar operations. It checks new events for conflicts
and refuses to book in the past.

It can run as:
  - An HTTP service with a Google login flow (serve)
  - An MCP (Model Context Protocol) server for AI assistants (mcp)
  - A one-shot command line query (query)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// Global flags shared by every subcommand.
var (
	configFile string
	envFile    string
	debugMode  bool
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "schedai version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file. Can also use SCHEDAI_CONFIG env var.")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file loaded before the environment (ignored when missing)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

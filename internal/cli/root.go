package cli

import (
	"fmt"
	"os"

	"github.com/NeuralTrust/XSSGuard/pkg/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configDirFlag string

// appConfig holds the loaded configuration, available after PersistentPreRunE.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "xssguard",
	Short: "XSSGuard, an XSS filtering gateway",
	Long: `XSSGuard inspects the URL of every request for common cross-site scripting
signatures and either strips them or rejects the request before it reaches
the upstream service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile := os.Getenv("ENV_FILE")
		if envFile == "" {
			envFile = ".env"
		}
		// A missing .env file is normal outside of local development.
		_ = godotenv.Load(envFile)

		if err := config.Load(configDirFlag); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = config.GetConfig()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config", "./config", "directory holding config.yaml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(versionCmd)
}

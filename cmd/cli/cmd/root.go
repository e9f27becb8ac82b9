package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "clipctl",
	Short: "Clipctl is a command line tool for interacting with the clipforge platform",
	Long: `clipctl is the command-line interface for the ClipForge clip generation platform.

ClipForge turns long-form videos into short captioned vertical clips. Jobs are
submitted through a multi-tenant HTTP API and processed asynchronously by a
pool of workers:

  - Controller: Stateless HTTP API for tenants and clip jobs
  - Workers: Claim queued jobs, download sources and run the clip pipeline

Common workflows:

  Register a tenant (prints the API key once):
    clipctl tenant create --name "Acme Corp"

  Submit a video for clipping:
    clipctl submit --source "https://example.com/talk.mp4" --watermark "@acme" --variants 3

  Check job status:
    clipctl status <job-id>

  List recent jobs:
    clipctl list --limit 20

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    CLIPFORGE_API_URL    API endpoint (default: http://localhost:6161)
    CLIPFORGE_TOKEN      Tenant API Token for authentication`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".clipctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".clipctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "CLIPFORGE_VARNAME"
	viper.SetEnvPrefix("CLIPFORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.clipctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:6161", "ClipForge Controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "API Token for authentication")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}

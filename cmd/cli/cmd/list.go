package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent clip jobs",
	Long: `List the tenant's most recent clip jobs, newest first.

Example:
  clipctl list
  clipctl list --limit 50`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the CLIPFORGE_TOKEN environment variable")
			return
		}

		client := NewJobClient(url, token)
		jobs, err := client.ListJobs(limit)
		if err != nil {
			if apiErr, ok := err.(*APIError); ok {
				cmd.Printf("Request failed (%d): %s\n", apiErr.StatusCode, apiErr.Message)
			} else {
				cmd.Printf("Request failed: %v\n", err)
			}
			return
		}

		if len(jobs) == 0 {
			cmd.Println("No jobs found.")
			return
		}

		cmd.Printf("%-36s  %-12s  %-8s  %s\n", "ID", "STATUS", "ATTEMPTS", "SOURCE")
		for _, job := range jobs {
			cmd.Printf("%-36s  %-12s  %-8d  %s\n", job.ID, job.Status, job.Attempts, job.SourceURI)
		}
	},
}

func init() {
	listCmd.Flags().Int("limit", 0, "Maximum number of jobs to return (default: server-side limit)")

	rootCmd.AddCommand(listCmd)
}

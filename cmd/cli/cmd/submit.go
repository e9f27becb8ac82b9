package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clipforge/pkg/api"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a video for clipping",
	Long: `Submit a source video for asynchronous clip generation.

The source may be an http(s) URL or a path readable by the workers. The job
is queued immediately and processed by the next available worker.

Example:
  clipctl submit --source "https://example.com/talk.mp4" --watermark "@acme"
  clipctl submit --source "/mnt/media/keynote.mp4" --max-duration 45 --variants 3`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		source, _ := flags.GetString("source")
		watermark, _ := flags.GetString("watermark")
		maxDuration, _ := flags.GetInt("max-duration")
		variants, _ := flags.GetInt("variants")

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the CLIPFORGE_TOKEN environment variable")
			return
		}

		if source == "" {
			cmd.Println("Error: --source is required")
			return
		}

		client := NewJobClient(url, token)

		job, err := client.CreateJob(api.CreateJobRequest{
			SourceURI:          source,
			WatermarkText:      watermark,
			MaxDurationSeconds: maxDuration,
			VariantCount:       variants,
		})
		if err != nil {
			if apiErr, ok := err.(*APIError); ok {
				cmd.Printf("Submit failed (%d): %s\n", apiErr.StatusCode, apiErr.Message)
			} else {
				cmd.Printf("Submit failed: %v\n", err)
			}
			return
		}

		cmd.Printf("✓ Job submitted!\nJob ID: %s\nStatus: %s\n", job.ID, job.Status)
	},
}

func init() {
	flags := submitCmd.Flags()
	flags.StringP("source", "s", "", "Source video URL or path (required)")
	flags.StringP("watermark", "w", "", "Watermark text burned into the clips (optional)")
	flags.Int("max-duration", 0, "Maximum clip duration in seconds (optional)")
	flags.Int("variants", 1, "Number of clip variants to generate (1-5)")

	rootCmd.AddCommand(submitCmd)
}

package cmd

import (
	"time"

	"transcodeplane/pkg/api"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a video for transcoding",
	Long: `Submit a source video and the tiers to produce from it.

The job id defaults to a new UUID. Submitting an id that already exists
replaces that job's record. With --wait, tctl polls the job until it
completes or fails and prints the final status.

Example:
  tctl submit --input /videos/source.mp4 --resolutions 1080p,720p,480p
  tctl submit --input https://cdn.example.com/in.mov --resolutions 4K --job-id launch-trailer --wait`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		input, _ := flags.GetString("input")
		resolutions, _ := flags.GetStringSlice("resolutions")
		jobID, _ := flags.GetString("job-id")
		wait, _ := flags.GetBool("wait")
		interval, _ := flags.GetDuration("poll-interval")

		if input == "" {
			cmd.Println("Error: --input is required")
			return
		}
		if jobID == "" {
			jobID = uuid.New().String()
		}
		if resolutions == nil {
			resolutions = []string{}
		}

		client := NewJobClient(viper.GetString("url"))

		result, err := client.Submit(api.SubmitJobRequest{
			JobID:       jobID,
			InputURL:    input,
			Resolutions: resolutions,
		})
		if err != nil {
			printAPIError(cmd, "Submit failed", err)
			return
		}

		cmd.Printf("%s✓%s %s\n", colorGreen, colorReset, result.Message)
		cmd.Printf("%sJob ID:%s %s\n", colorDim, colorReset, result.JobID)

		if !wait {
			return
		}

		job, err := waitForJob(client, result.JobID, interval)
		if err != nil {
			printAPIError(cmd, "Polling failed", err)
			return
		}
		cmd.Println()
		printStatus(cmd, *job)
	},
}

// waitForJob polls until the job leaves the processing state.
func waitForJob(client *JobClient, jobID string, interval time.Duration) (*api.JobResponse, error) {
	if interval <= 0 {
		interval = time.Second
	}
	for {
		job, err := client.GetJob(jobID)
		if err != nil {
			return nil, err
		}
		if job.Status != "processing" {
			return job, nil
		}
		time.Sleep(interval)
	}
}

func printAPIError(cmd *cobra.Command, prefix string, err error) {
	if apiErr, ok := err.(*APIError); ok {
		cmd.Printf("%s (%d): %s\n", prefix, apiErr.StatusCode, apiErr.Message)
		return
	}
	cmd.Printf("%s: %v\n", prefix, err)
}

func init() {
	submitCmd.Flags().StringP("input", "i", "", "Source video path or URL (required)")
	submitCmd.Flags().StringSliceP("resolutions", "r", []string{"1080p", "720p", "480p"}, "Comma-separated tiers (4K, 1080p, 720p, 480p)")
	submitCmd.Flags().String("job-id", "", "Job id (default: new UUID)")
	submitCmd.Flags().BoolP("wait", "w", false, "Wait for the job to finish")
	submitCmd.Flags().Duration("poll-interval", time.Second, "Polling interval used with --wait")
	rootCmd.AddCommand(submitCmd)
}

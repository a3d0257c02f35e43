package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [job_id] [resolution]",
	Short: "Download a produced rendition",
	Long: `Download the rendition of a completed job at the given resolution.

Example:
  tctl fetch launch-trailer 720p
  tctl fetch launch-trailer 4K -o trailer-4k.mp4`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		jobID, resolution := args[0], args[1]
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = fmt.Sprintf("%s_%s.mp4", jobID, resolution)
		}

		client := NewJobClient(viper.GetString("url"))

		job, err := client.GetJob(jobID)
		if err != nil {
			printAPIError(cmd, "Request failed", err)
			return
		}

		locator := ""
		for _, r := range job.Results {
			if r.Resolution == resolution {
				locator = r.DownloadURL
			}
		}
		if locator == "" {
			cmd.Printf("No %s rendition for job %s (status: %s)\n", resolution, jobID, job.Status)
			return
		}

		f, err := os.Create(output)
		if err != nil {
			cmd.Printf("Failed to create %s: %v\n", output, err)
			return
		}

		n, err := client.Download(locator, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(output)
			printAPIError(cmd, "Download failed", err)
			return
		}

		cmd.Printf("%s✓%s Saved %s (%s)\n", colorGreen, colorReset, output, formatBytes(n))
	},
}

func init() {
	fetchCmd.Flags().StringP("output", "o", "", "Output file (default: <job_id>_<resolution>.mp4)")
	rootCmd.AddCommand(fetchCmd)
}

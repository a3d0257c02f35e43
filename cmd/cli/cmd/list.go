package cmd

import (
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all jobs",
	Long:  `List every job the service knows about, newest first, with its status and number of produced renditions.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewJobClient(viper.GetString("url"))

		jobs, err := client.ListJobs()
		if err != nil {
			printAPIError(cmd, "Request failed", err)
			return
		}

		if len(jobs) == 0 {
			cmd.Println("No jobs found")
			return
		}

		ids := make([]string, 0, len(jobs))
		for id := range jobs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			a, b := jobs[ids[i]], jobs[ids[j]]
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return ids[i] < ids[j]
		})

		cmd.Printf("%s%-36s  %-12s  %-9s  %s%s\n", colorBold, "JOB ID", "STATUS", "OUTPUTS", "SUBMITTED", colorReset)
		for _, id := range ids {
			job := jobs[id]
			submitted := "-"
			if !job.CreatedAt.IsZero() {
				submitted = relativeTime(job.CreatedAt) + " ago"
			}
			cmd.Printf("%-36s  %-12s  %-9d  %s\n", id, job.Status, len(job.Results), submitted)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

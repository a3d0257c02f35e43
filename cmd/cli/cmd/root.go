package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tctl",
	Short: "tctl is a command line tool for the transcodeplane video service",
	Long: `tctl is the command-line interface for the transcodeplane transcode service.

transcodeplane takes a source video and a list of quality tiers (4K, 1080p,
720p, 480p) and produces one H.264/MP4 rendition per tier. Tiers larger than
the source are skipped; a failure in any tier fails the whole job.

Common workflows:

  Submit a job and wait for it:
    tctl submit --input /videos/source.mp4 --resolutions 1080p,720p --wait

  Check a job:
    tctl status <job-id>

  List every job:
    tctl list

  Download a rendition:
    tctl fetch <job-id> 720p -o out.mp4

Configuration:
  Set the API endpoint via flag, environment variable or config file:
    TRANSCODE_URL    API endpoint (default: http://localhost:8080)`,
	SilenceUsage: true,
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

		// Search config in home directory with name ".tctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".tctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "TRANSCODE_VARNAME"
	viper.SetEnvPrefix("TRANSCODE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "transcodeplane API URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
}

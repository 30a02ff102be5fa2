package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "confsched",
	Short: "Schedule recording configs by date window",
	Long: `confsched keeps a schedule of date windows for recording-tool configs and
moves each YAML file between the enabled and disabled directories.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			os.Setenv("CONFSCHED_CONFIG_PATH", configPath)
		}
		if logLevel != "" {
			os.Setenv("CONFSCHED_LOG_LEVEL", logLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(templateCmd)
}

// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// configPath 配置文件所在目录或文件路径.
	configPath string
	// debug 打印更多诊断信息.
	debug bool

	rootCmd = &cobra.Command{
		Use:           "filevault",
		Short:         "A file storage service with image thumbnails",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print verbose diagnostics")

	registerServeCommands()
	registerConfigsCommands()
	registerBackendCommands()
	registerSessionCommands()
	registerVersionCommand()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

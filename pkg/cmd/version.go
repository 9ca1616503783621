package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/configs"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "filevault %s %s/%s %s\n",
			configs.AppVersion, runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}

func registerVersionCommand() {
	rootCmd.AddCommand(versionCmd)
}

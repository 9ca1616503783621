package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/app"
)

var (
	withWorker bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), app.Options{Serve: true, Worker: withWorker})
		},
	}

	workerCmd = &cobra.Command{
		Use:   "worker",
		Short: "start the thumbnail worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), app.Options{Worker: true})
		},
	}
)

// run 启动应用并在收到 SIGINT/SIGTERM 时退出.
func run(parent context.Context, opts app.Options) error {
	if parent == nil {
		parent = context.Background()
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, configPath, opts)
	if err != nil {
		return err
	}

	return a.Run(ctx)
}

// registerServeCommands 注册服务与 worker 命令.
func registerServeCommands() {
	serveCmd.Flags().BoolVar(&withWorker, "with-worker", false, "run the thumbnail worker in the same process")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
}

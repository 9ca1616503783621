package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/storage/db"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
	"github.com/yeisme/filevault/pkg/internal/storage/mq"
)

// backendLister 为 db/kv/mq 生成 "<name> ls" 子命令，列出编译进二进制的后端类型.
func backendLister[T ~string](name, short string, aliases []string, registered func() []T) *cobra.Command {
	group := &cobra.Command{
		Use:     name,
		Short:   short,
		Aliases: aliases,
	}

	group.AddCommand(&cobra.Command{
		Use:     "list",
		Short:   fmt.Sprintf("list all registered %s types", name),
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s types:\n", name)

			for _, t := range registered() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	})

	return group
}

// registerBackendCommands 注册 db、kv、mq 命令.
func registerBackendCommands() {
	rootCmd.AddCommand(
		backendLister("db", "Metadata database related commands", nil, func() []configs.DBType {
			// mongodb 由 docdb 包直接处理，不经过 gorm 注册表
			return append(db.GetRegisteredDBTypes(), configs.MongoDB)
		}),
		backendLister("kv", "Key-Value store related commands", []string{"keyvalue"}, kv.GetRegisteredKVTypes),
		backendLister("mq", "Message queue related commands", []string{"messagequeue"}, mq.GetRegisteredTypes),
		backendLister("blob", "Blob store related commands", nil, func() []configs.BlobType {
			return []configs.BlobType{configs.BlobTypeLocal, configs.BlobTypeS3}
		}),
	)
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/session"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
)

var (
	sessionUser string
	sessionTTL  time.Duration

	sessionCmd = &cobra.Command{
		Use:   "session",
		Short: "Manage session tokens stored in the kv store",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configs.InitConfig(configPath)
		},
	}

	sessionIssueCmd = &cobra.Command{
		Use:   "issue",
		Short: "issue a token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVerifier(cmd.Context(), func(ctx context.Context, v *session.Verifier) error {
				token, err := v.Issue(ctx, sessionUser, sessionTTL)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), token)

				return nil
			})
		},
	}

	sessionRevokeCmd = &cobra.Command{
		Use:   "revoke <token>",
		Short: "revoke a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVerifier(cmd.Context(), func(ctx context.Context, v *session.Verifier) error {
				return v.Revoke(ctx, args[0])
			})
		},
	}
)

func withVerifier(ctx context.Context, fn func(ctx context.Context, v *session.Verifier) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := configs.GetConfig()
	if cfg.KV.Type == configs.KVTypeMemory {
		return fmt.Errorf("kv type %q is process local, tokens would not reach the server", cfg.KV.Type)
	}

	store, err := kv.New(ctx, &cfg.KV)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(ctx, session.NewVerifier(store))
}

// registerSessionCommands 注册会话令牌命令.
func registerSessionCommands() {
	sessionIssueCmd.Flags().StringVarP(&sessionUser, "user", "u", "", "user id the token resolves to")
	sessionIssueCmd.Flags().DurationVar(&sessionTTL, "ttl", 24*time.Hour, "token lifetime, 0 means no expiry")
	_ = sessionIssueCmd.MarkFlagRequired("user")

	sessionCmd.AddCommand(sessionIssueCmd, sessionRevokeCmd)
	rootCmd.AddCommand(sessionCmd)
}

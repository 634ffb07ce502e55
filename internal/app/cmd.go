package app

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/hitoshi/ems/internal/config"
)

// NewRootCommand はemsコマンドのルートを返す。
// サブコマンドを省略した場合はserveとして起動する。
func NewRootCommand(w io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "ems",
		Short:         "Employee management system API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConfig(w, "serve", func(cfg *config.Config) error {
				return runServe(cmd.Context(), cfg)
			})
		},
	}

	root.AddCommand(
		newServeCmd(w),
		newMigrateCmd(w),
		newSeedCmd(w),
		newHealthcheckCmd(),
	)
	return root
}

func newServeCmd(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConfig(w, "serve", func(cfg *config.Config) error {
				return runServe(cmd.Context(), cfg)
			})
		},
	}
}

func newMigrateCmd(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withConfig(w, "migrate", runMigrate)
		},
	}
}

func newSeedCmd(w io.Writer) *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed [--reset] [--demo]",
		Short: "Insert sample users and employee records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConfig(w, "seed", func(cfg *config.Config) error {
				return runSeed(cmd.Context(), cfg, opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "delete all employees and users before seeding")
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "also insert demo employees with hire dates")
	return cmd
}

// newHealthcheckCmd はdistroless環境でのDockerヘルスチェック用サブコマンドを返す。
// 軽量に動かすため設定の読み込みとログ初期化は行わない。
func newHealthcheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe the local /health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHealthcheck(cmd.Context(), healthcheckPort())
		},
	}
}

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/xiebiao/library-catalog/internal/domain/identity"
	"github.com/xiebiao/library-catalog/internal/infrastructure/config"
	"github.com/xiebiao/library-catalog/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library-catalog/pkg/logger"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "馆藏目录运维工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "配置文件路径(默认按CATALOG_ENV查找config/config.yaml)")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newGrantCmd(opts),
		newRevokeCmd(opts),
		newCapabilitiesCmd(opts),
		newEventsCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFile(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	// 命令行输出到stderr，避免干扰标准输出
	if _, err := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openDB 连接数据库，不做自动迁移
func (o *rootOptions) openDB() (*gorm.DB, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return mysql.Open(cfg.Database.Driver, cfg.Database.DSN(), false)
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建或更新表结构",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			if err := mysql.Migrate(db); err != nil {
				return fmt.Errorf("数据库迁移失败: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ 迁移完成")
			return nil
		},
	}
}

func newGrantCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "grant USER_ID [CAPABILITY...]",
		Short: "为用户授予能力",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, caps, err := parseGrantArgs(args, all)
			if err != nil {
				return err
			}
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			if err := grant(cmd.Context(), mysql.NewUserRepository(db), mysql.NewCapabilityStore(db), userID, caps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ 用户%d已授予%d项能力\n", userID, len(caps))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "授予全部能力")
	return cmd
}

func newRevokeCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "revoke USER_ID [CAPABILITY...]",
		Short: "撤销用户的能力",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, caps, err := parseGrantArgs(args, all)
			if err != nil {
				return err
			}
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			n, err := mysql.NewCapabilityStore(db).Revoke(cmd.Context(), userID, caps...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ 用户%d撤销%d项能力\n", userID, n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "撤销全部能力")
	return cmd
}

func newCapabilitiesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities USER_ID",
		Short: "列出用户拥有的能力",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			caps, err := mysql.NewCapabilityStore(db).List(cmd.Context(), userID)
			if err != nil {
				return err
			}
			for _, c := range caps {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

// capabilityStore grant命令需要的存储能力
type capabilityStore interface {
	Grant(ctx context.Context, userID uint, caps ...identity.Capability) error
}

// grant 授权前确认用户存在
func grant(ctx context.Context, users identity.Directory, store capabilityStore, userID uint, caps []identity.Capability) error {
	exists, err := users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("用户不存在: %d", userID)
	}
	return store.Grant(ctx, userID, caps...)
}

func parseUserID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("无效的用户ID: %q", s)
	}
	return uint(id), nil
}

// parseGrantArgs USER_ID后跟能力名，all=true时不能再指定能力
func parseGrantArgs(args []string, all bool) (uint, []identity.Capability, error) {
	userID, err := parseUserID(args[0])
	if err != nil {
		return 0, nil, err
	}

	names := args[1:]
	switch {
	case all && len(names) > 0:
		return 0, nil, fmt.Errorf("--all与能力名不能同时使用")
	case all:
		return userID, identity.AllCapabilities(), nil
	case len(names) == 0:
		return 0, nil, fmt.Errorf("至少指定一项能力，可用能力: %s", capabilityNames())
	}

	caps := make([]identity.Capability, 0, len(names))
	for _, n := range names {
		c := identity.Capability(strings.TrimSpace(n))
		if !c.Valid() {
			return 0, nil, fmt.Errorf("未知能力: %q，可用能力: %s", n, capabilityNames())
		}
		caps = append(caps, c)
	}
	return userID, caps, nil
}

func capabilityNames() string {
	all := identity.AllCapabilities()
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

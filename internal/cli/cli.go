// Package cli 提供运维命令行 attendctl：数据库迁移、创建账号与批量导入。
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"staff-attendance/config"
	"staff-attendance/internal/repository"
	"staff-attendance/internal/service"
	"staff-attendance/pkg/database"
	applogger "staff-attendance/pkg/logger"
)

// 退出码
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// CLI 命令行状态
type CLI struct {
	rootCmd *cobra.Command

	configPath string

	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB

	// 测试注入；为 nil 时按配置连接数据库构造
	userSvc service.UserService
}

// New 创建 CLI
func New() *CLI {
	c := &CLI{}
	c.rootCmd = c.newRootCmd()
	return c
}

// Execute 运行命令并返回退出码
func (c *CLI) Execute() int {
	defer c.close()
	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintln(c.rootCmd.ErrOrStderr(), "错误:", err)
		return ExitFailure
	}
	return ExitSuccess
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "attendctl",
		Short:         "教职工考勤系统运维工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "配置文件路径（默认 config/config.yaml）")

	cmd.AddCommand(c.newMigrateCmd())
	cmd.AddCommand(c.newCreateUserCmd())
	cmd.AddCommand(c.newImportUsersCmd())
	return cmd
}

// connect 按需加载配置、日志并连接数据库
func (c *CLI) connect() error {
	if c.db != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return err
	}
	c.cfg, c.logger, c.db = cfg, logger, db
	return nil
}

func (c *CLI) users() (service.UserService, error) {
	if c.userSvc != nil {
		return c.userSvc, nil
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	c.userSvc = service.NewUserService(repository.NewRepository(c.db), c.logger)
	return c.userSvc, nil
}

func (c *CLI) close() {
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func (c *CLI) out() io.Writer {
	return c.rootCmd.OutOrStdout()
}

// openFile 打开导入文件
var openFile = func(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

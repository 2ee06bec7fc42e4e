package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"staff-attendance/pkg/database"
)

func (c *CLI) newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "数据库迁移",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "应用全部未执行的迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.connect(); err != nil {
				return err
			}
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			if err := database.RunMigrations(sqlDB, c.logger); err != nil {
				return err
			}
			fmt.Fprintln(c.out(), "迁移完成")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "回滚迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.connect(); err != nil {
				return err
			}
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			if err := database.RollbackMigrations(sqlDB, steps, c.logger); err != nil {
				return err
			}
			fmt.Fprintf(c.out(), "已回滚 %d 步\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "回滚步数")
	cmd.AddCommand(down)

	return cmd
}

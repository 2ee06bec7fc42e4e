package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"staff-attendance/internal/dto"
)

func (c *CLI) newCreateUserCmd() *cobra.Command {
	var req dto.CreateUserRequest
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "创建账号（用于初始化管理员）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Name == "" || req.UniqueID == "" || req.Email == "" || req.Password == "" {
				return fmt.Errorf("--name、--unique-id、--email、--password 均为必填")
			}
			if len(req.Password) < 8 {
				return fmt.Errorf("密码长度不能少于 8 位")
			}
			svc, err := c.users()
			if err != nil {
				return err
			}
			user, err := svc.Create(cmdContext(cmd), &req, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out(), "已创建用户 %s（%s, %s）\n", user.ID, user.UniqueID, user.Role)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "姓名")
	f.StringVar(&req.UniqueID, "unique-id", "", "工号")
	f.StringVar(&req.Email, "email", "", "邮箱")
	f.StringVar(&req.Password, "password", "", "初始密码")
	f.StringVar(&req.Role, "role", "admin", "角色")
	f.StringVar(&req.Department, "department", "", "部门")
	return cmd
}

func (c *CLI) newImportUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-users <file.xlsx>",
		Short: "从 Excel 批量导入账号，初始密码为工号",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.users()
			if err != nil {
				return err
			}
			f, err := openFile(args[0])
			if err != nil {
				return fmt.Errorf("打开文件失败: %w", err)
			}
			defer f.Close()

			rows, err := svc.ParseImportFile(f)
			if err != nil {
				return err
			}
			result, err := svc.ImportUsers(cmdContext(cmd), rows, "")
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out(), "共 %d 行，成功 %d，失败 %d\n", result.Total, result.Success, result.Failed)
			for _, e := range result.Errors {
				fmt.Fprintf(c.out(), "  第 %d 行: %s\n", e.Row, e.Reason)
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d 行导入失败", result.Failed)
			}
			return nil
		},
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

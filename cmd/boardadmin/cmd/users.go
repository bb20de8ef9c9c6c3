package cmd

import (
	"fmt"

	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/spf13/cobra"
)

func UsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	usersCmd.AddCommand(usersRoleCmd("promote", "Grant the ADMIN role", model.RoleAdmin))
	usersCmd.AddCommand(usersRoleCmd("demote", "Revert to the USER role", model.RoleUser))
	return usersCmd
}

func usersRoleCmd(use, short, role string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <login-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			user, err := a.UserService.ByLoginID(args[0])
			if err != nil {
				return fmt.Errorf("user %s: %w", args[0], err)
			}

			err = a.UserService.AssignRole(user, role)
			if err != nil {
				return err
			}

			err = a.UserService.Save(user)
			if err != nil {
				return err
			}

			fmt.Printf("%s is now %s\n", user.LoginID, user.Role)
			return nil
		},
	}
}

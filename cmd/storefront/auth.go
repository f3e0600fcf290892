package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/novathreads/storefront-backend/internal/auth"
	"github.com/novathreads/storefront-backend/internal/users"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, register and inspect the current account",
	}
	cmd.AddCommand(
		newAuthRegisterCmd(a),
		newAuthLoginCmd(a),
		newAuthLogoutCmd(a),
		newAuthProfileCmd(a),
	)
	return cmd
}

// readPassword takes the password from the flag, or from the first line of
// stdin so it stays out of shell history.
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printUser(cmd *cobra.Command, prefix string, u *users.UserDTO) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s <%s> (%s)\n", prefix, u.FirstName, u.LastName, u.Email, u.Role)
}

func newAuthRegisterCmd(a *app) *cobra.Command {
	var req auth.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, req.Password)
			if err != nil {
				return err
			}
			req.Password = pw
			u, err := a.session.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			printUser(cmd, "Welcome,", u)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Email, "email", "", "email address")
	f.StringVar(&req.Password, "password", "", "password (prompted when omitted)")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newAuthLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			u, err := a.session.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			printUser(cmd, "Signed in as", u)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newAuthLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newAuthProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Refresh and show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.session.RefreshProfile(cmd.Context())
			if err != nil {
				return err
			}
			printUser(cmd, "Signed in as", u)
			return nil
		},
	}
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"library-circulation/pkg/client"
)

// readPassword takes --password, then CIRCULATION_PASSWORD, then one line
// of stdin.
func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("CIRCULATION_PASSWORD"); env != "" {
		return env, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}

func (c *cli) registerCmd() *cobra.Command {
	var in client.RegisterRequest
	var password string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a patron account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			in.Username, in.Password, in.ConfirmPassword = args[0], pw, pw
			u, err := c.api.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(u)
			}
			fmt.Fprintf(c.out, "registered %s (%s) as %s\n", u.Username, u.UserID, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (env CIRCULATION_PASSWORD, else stdin)")
	cmd.Flags().StringVar(&in.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&in.Role, "role", "", "student, faculty or other")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			s, err := c.api.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			if err := saveSession(c.sessionPath, s); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "logged in as %s (%s) until %s\n", s.Username, s.Role, s.ExpiresAt.Format("2006-01-02 15:04 MST"))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (env CIRCULATION_PASSWORD, else stdin)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget it",
		Args:  cobra.NoArgs,
		RunE: c.authed(func(cmd *cobra.Command, _ []string) error {
			if err := c.api.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := removeSession(c.sessionPath); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "logged out")
			return nil
		}),
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: c.authed(func(cmd *cobra.Command, _ []string) error {
			u, err := c.api.Me(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(u)
			}
			fmt.Fprintf(c.out, "%s (%s) %s\n", u.Username, u.UserID, u.Role)
			return nil
		}),
	}
}

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage accounts (admin)"}

	var in client.RegisterRequest
	var password string
	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account with any role",
		Args:  cobra.ExactArgs(1),
		RunE: c.authed(func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			in.Username, in.Password, in.ConfirmPassword = args[0], pw, pw
			u, err := c.api.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(u)
			}
			fmt.Fprintf(c.out, "created %s (%s) as %s\n", u.Username, u.UserID, u.Role)
			return nil
		}),
	}
	create.Flags().StringVar(&password, "password", "", "password (env CIRCULATION_PASSWORD, else stdin)")
	create.Flags().StringVar(&in.FullName, "name", "", "full name")
	create.Flags().StringVar(&in.Role, "role", "student", "student, faculty, other, librarian or admin")
	cmd.AddCommand(create)
	return cmd
}

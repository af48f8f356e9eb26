package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newstech/newstech/internal/client/api"
	"github.com/newstech/newstech/internal/client/session"
)

func registerCmd(opts *options) *cobra.Command {
	var in api.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := bufio.NewReader(cmd.InOrStdin())
			w := cmd.OutOrStdout()

			var err error
			if in.FullName, err = valueOrPrompt(r, w, in.FullName, "Full name"); err != nil {
				return err
			}
			if in.Email, err = valueOrPrompt(r, w, in.Email, "Email"); err != nil {
				return err
			}
			if in.Username, err = valueOrPrompt(r, w, in.Username, "Username"); err != nil {
				return err
			}
			if in.Password, err = promptPassword(r, w); err != nil {
				return err
			}

			c, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			out, err := c.api.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			err = c.sessions.Login(cmd.Context(), &out.User, out.Token)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "Welcome, %s!\n", out.User.FullName)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Username, "username", "", "username")
	return cmd
}

func loginCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username-or-email]",
		Short: "Sign in with a username or email",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := bufio.NewReader(cmd.InOrStdin())
			w := cmd.OutOrStdout()

			identifier := ""
			if len(args) == 1 {
				identifier = args[0]
			}
			identifier, err := valueOrPrompt(r, w, identifier, "Username or email")
			if err != nil {
				return err
			}
			password, err := promptPassword(r, w)
			if err != nil {
				return err
			}

			c, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			out, err := c.api.Login(cmd.Context(), identifier, password)
			if err != nil {
				return err
			}
			err = c.sessions.Login(cmd.Context(), &out.User, out.Token)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "Signed in as %s\n", out.User.Username)
			return nil
		},
	}
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			err = c.sessions.Logout(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func whoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Restore the saved session and print the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			state, err := c.sessions.Restore(cmd.Context())
			if err != nil {
				return err
			}
			if state != session.StateAuthenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			return printUser(cmd.OutOrStdout(), c.sessions.Current().User)
		},
	}
}

package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/newstech/newstech/internal/client/api"
)

func updateCmd(opts *options) *cobra.Command {
	var fullName, email, username string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your name, email or username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in api.ProfileUpdate
			if cmd.Flags().Changed("name") {
				in.FullName = &fullName
			}
			if cmd.Flags().Changed("email") {
				in.Email = &email
			}
			if cmd.Flags().Changed("username") {
				in.Username = &username
			}
			if in.FullName == nil && in.Email == nil && in.Username == nil {
				return errors.New("nothing to update: pass --name, --email or --username")
			}

			c, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			_, err = c.sessions.Restore(cmd.Context())
			if err != nil {
				return err
			}
			token, userID, err := c.sessions.Token(cmd.Context())
			if err != nil {
				return err
			}

			user, err := c.api.UpdateUser(cmd.Context(), token, userID, in)
			if err != nil {
				return err
			}
			err = c.sessions.UpdateUser(cmd.Context(), user)
			if err != nil {
				return err
			}
			return printUser(cmd.OutOrStdout(), c.sessions.Current().User)
		},
	}

	cmd.Flags().StringVar(&fullName, "name", "", "new full name")
	cmd.Flags().StringVar(&email, "email", "", "new email address")
	cmd.Flags().StringVar(&username, "username", "", "new username")
	return cmd
}

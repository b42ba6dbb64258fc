package user

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qchem/gausscat/internal/app"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore/repository"
)

// passwordEnv lets scripts pass the password without exposing it in the
// process list.
const passwordEnv = "GAUSSCAT_USER_PASSWORD"

// Command groups the user management subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(createCommand(settings))
	return cmd
}

func createCommand(settings *conf.Settings) *cobra.Command {
	var (
		email    string
		password string
		admin    bool
	)

	cmd := &cobra.Command{
		Use:   "create [username]",
		Short: "Create a user account",
		Long:  "Creates a user. With --admin the user is added to the administrator role.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				return fmt.Errorf("a password is required: use --password or %s", passwordEnv)
			}

			ctx := cmd.Context()
			store, err := app.OpenStore(ctx, settings)
			if err != nil {
				return err
			}
			defer store.Close()

			idsvc := app.NewIdentity(settings, repository.New(store.DB(), repository.Options{}))
			u, err := idsvc.CreateUser(ctx, args[0], email, password)
			if err != nil {
				return err
			}

			if admin {
				role := settings.Security.AdministratorRole
				if _, err := idsvc.EnsureRole(ctx, role); err != nil {
					return err
				}
				if err := idsvc.AddToRole(ctx, u.ID, role); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", u.UserName, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password, or set "+passwordEnv)
	cmd.Flags().BoolVar(&admin, "admin", false, "Add the user to the administrator role")

	return cmd
}

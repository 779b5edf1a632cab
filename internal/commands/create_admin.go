package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/rental-engine/internal/auth"
	"github.com/beesaferoot/rental-engine/internal/repository"
)

func CreateAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			firstname, _ := cmd.Flags().GetString("firstname")
			lastname, _ := cmd.Flags().GetString("lastname")

			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			authn, err := e.authenticator(repository.NewStore(e.db))
			if err != nil {
				return err
			}
			user, err := authn.CreateAdmin(contextOf(cmd), auth.RegisterRequest{
				Email:     email,
				Password:  password,
				Firstname: firstname,
				Lastname:  lastname,
			})
			if err != nil {
				return fmt.Errorf("failed to create administrator: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created administrator %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().String("email", "", "Administrator email")
	cmd.Flags().String("password", "", "Administrator password")
	cmd.Flags().String("firstname", "", "First name")
	cmd.Flags().String("lastname", "", "Last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

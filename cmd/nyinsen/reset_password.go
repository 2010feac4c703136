package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/nyinsen/internal/cli"
	"github.com/terraincognita07/nyinsen/internal/db"
	"github.com/terraincognita07/nyinsen/internal/services"
)

func newResetPasswordCommand(rt *runtime) *cobra.Command {
	var prompt bool

	command := &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Reset a user's password",
		Long: `Reset a user's password.

By default a temporary password is generated and printed; the user must
change it on the next sign in. With --prompt the new password is read from
the terminal without echo.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, closeDatabase, err := rt.openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase()

			authService := services.NewAuthService(db.NewRepositories(database).Users)
			return cli.RunResetPassword(authService, args[0], cli.ResetOptions{
				Prompt: prompt,
				Input:  os.Stdin,
				Output: cmd.OutOrStdout(),
			})
		},
	}
	command.Flags().BoolVar(&prompt, "prompt", false, "read the new password from the terminal instead of generating one")
	return command
}

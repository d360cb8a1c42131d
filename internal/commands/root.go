package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ayzanadeem/Budgey/pkg/budgey"
)

// rootFlags carries the connection settings shared by every subcommand
type rootFlags struct {
	baseURL string
	token   string
	userID  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "budgey",
		Short: "Personal expense tracking from the terminal",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env file is fine; flags and the environment still
			// apply
			_ = godotenv.Load()

			if flags.baseURL == "" {
				flags.baseURL = os.Getenv("BUDGEY_BASE_URL")
			}
			if flags.token == "" {
				flags.token = os.Getenv("BUDGEY_TOKEN")
			}
			if flags.userID == "" {
				flags.userID = os.Getenv("BUDGEY_USER")
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "backend base URL (default $BUDGEY_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flags.token, "token", "", "API token (default $BUDGEY_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&flags.userID, "user", "", "user id (default $BUDGEY_USER)")

	rootCmd.AddCommand(newBreakdownCommand(flags))
	rootCmd.AddCommand(newCategoriesCommand(flags))
	rootCmd.AddCommand(newAddCommand(flags))

	return rootCmd
}

// newClient builds a budgey client from the resolved root flags
func (f *rootFlags) newClient() (*budgey.Client, error) {
	opts := &budgey.ClientOptions{
		Token: f.token,
	}
	if f.baseURL != "" {
		opts.BaseURL = f.baseURL
	}
	if dsn := os.Getenv("BUDGEY_SENTRY_DSN"); dsn != "" {
		opts.SentryDSN = dsn
	}
	return budgey.NewClient(opts)
}

// requireUser returns the user id or an input error when it is unset
func (f *rootFlags) requireUser() (string, error) {
	if f.userID == "" {
		return "", budgey.NewError(budgey.KindInvalidInput, "user id required: pass --user or set BUDGEY_USER")
	}
	return f.userID, nil
}

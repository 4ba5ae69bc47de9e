package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/studiowebux/carcli/internal/cli"
	"github.com/studiowebux/carcli/internal/mock"
	"github.com/studiowebux/carcli/internal/tui"
	"github.com/studiowebux/carcli/internal/version"
)

var (
	appVersion = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// the message has already been shown
		if !errors.Is(err, cli.ErrInvalidCredentials) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "carcli",
	Short: "carcli - car inventory client",
	Long: `carcli browses and edits a remote car inventory.

Run without arguments to start the interactive TUI, or use one of the
subcommands for scripting.

Examples:
  carcli                                   # Start interactive TUI
  carcli login -u admin                    # Log in, prompting for the password
  carcli cars list --sort price --dir desc # One page, most expensive first
  carcli cars list --brand Toyota -o json  # Filter and print JSON
  carcli cars list -q 'content[].price'    # JMESPath over the JSON output
  carcli mock                              # Serve the demo API locally`,
	Version:       appVersion,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return outputOptions().Validate()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return tui.Run(app)
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			password := flagPassword
			if !cmd.Flags().Changed("password") {
				var err error
				if password, err = app.PromptPassword(); err != nil {
					return err
				}
			}
			return app.Login(cmd.Context(), flagUsername, password)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error { return app.Logout() })
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error { return app.WhoAmI() })
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the recorded API calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			if flagHistoryStats {
				return app.ShowStats(outputOptions())
			}
			return app.ShowHistory(flagHistoryLimit, flagHistoryClear, outputOptions())
		})
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run the demo car inventory API",
	Long: `Run an in-memory car inventory API seeded with demo data.

The server accepts admin/admin unless a config file says otherwise.
Point api.base_url at it to try the client without a real backend.
Every request is printed as it is served. Use --write-config to get an
editable copy of the demo data.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			if flagMockWriteConfig != "" {
				return app.WriteMockConfig(flagMockWriteConfig)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.RunMock(ctx, flagMockAddr, flagMockConfig)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, optionally checking for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "carcli %s\n", appVersion)
		if !flagVersionCheck {
			return nil
		}

		release, newer, err := version.NewChecker().Check(cmd.Context(), appVersion)
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}
		if newer {
			fmt.Fprintf(out, "A newer version is available: %s\n%s\n", release.Version(), release.HTMLURL)
		} else {
			fmt.Fprintln(out, "You are running the latest version")
		}
		return nil
	},
}

// Flags for login
var (
	flagUsername string
	flagPassword string
)

// Flags shared by every printing command
var (
	flagOutput string
	flagQuery  string
)

// Flags for history
var (
	flagHistoryLimit int
	flagHistoryClear bool
	flagHistoryStats bool
)

var flagVersionCheck bool

// Flags for mock
var (
	flagMockAddr        string
	flagMockConfig      string
	flagMockWriteConfig string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagQuery, "query", "q", "", "JMESPath expression applied to the JSON output")

	loginCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "Password (prompted when omitted)")
	_ = loginCmd.MarkFlagRequired("username")

	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 50, "Number of entries to show")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all recorded entries")
	historyCmd.Flags().BoolVar(&flagHistoryStats, "stats", false, "Show call counts and latencies per route")
	historyCmd.MarkFlagsMutuallyExclusive("clear", "stats")

	mockCmd.Flags().StringVar(&flagMockAddr, "addr", "", fmt.Sprintf("Listen address (default %s:%d or the config file value)", mock.DefaultHost, mock.DefaultPort))
	mockCmd.Flags().StringVarP(&flagMockConfig, "config", "c", "", "Mock server config file (yaml or json)")
	mockCmd.Flags().StringVar(&flagMockWriteConfig, "write-config", "", "Write the demo seed data to this file and exit")

	versionCmd.Flags().BoolVar(&flagVersionCheck, "check", false, "Ask the release feed for a newer version")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, carsCmd, brandsCmd, historyCmd, mockCmd, versionCmd)
}

func outputOptions() cli.OutputOptions {
	return cli.OutputOptions{Format: flagOutput, Query: flagQuery}
}

// withApp bootstraps the shared collaborators, runs fn and releases them
func withApp(fn func(app *cli.App) error) error {
	app, err := cli.Bootstrap()
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

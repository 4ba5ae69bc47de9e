package main

import (
	"github.com/spf13/cobra"
	"github.com/studiowebux/carcli/internal/cli"
)

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List and edit brands",
}

var brandsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every brand",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.ListBrands(cmd.Context(), outputOptions())
		})
	},
}

var brandsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.AddBrand(cmd.Context(), args[0], outputOptions())
		})
	},
}

var brandsUpdateCmd = &cobra.Command{
	Use:   "update <id> <name>",
	Short: "Rename a brand",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(app *cli.App) error {
			return app.RenameBrand(cmd.Context(), id, args[1], outputOptions())
		})
	},
}

var brandsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a brand that no car uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(app *cli.App) error {
			return app.DeleteBrand(cmd.Context(), id)
		})
	},
}

func init() {
	brandsCmd.AddCommand(brandsListCmd, brandsAddCmd, brandsUpdateCmd, brandsDeleteCmd)
}

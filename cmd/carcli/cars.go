package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/studiowebux/carcli/internal/cli"
	"github.com/studiowebux/carcli/internal/types"
)

var carsCmd = &cobra.Command{
	Use:   "cars",
	Short: "List and edit cars",
}

var carsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of cars",
	Long: `Print one page of cars from the server.

Filters are only sent when set; --new restricts the list to new cars.
Dates accept YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := pageQueryFromFlags(cmd)
		if err != nil {
			return err
		}
		return withApp(func(app *cli.App) error {
			return app.ListCars(cmd.Context(), q, outputOptions())
		})
	},
}

var carsAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Print every car, unpaginated",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.AllCars(cmd.Context(), outputOptions())
		})
	},
}

var carsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a car",
	Long: `Create a car. Without --brand-id an interactive brand picker is shown.

Example:
  carcli cars add --brand-id 3 --spec "GR86" --engine 2.4 --price 32000 --new --release 2024-03-01 --image ./gr86.jpg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := carInputFromFlags(cmd)
		return withApp(func(app *cli.App) error {
			return app.AddCar(cmd.Context(), in, outputOptions())
		})
	},
}

var carsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update the given fields of a car",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		in := carInputFromFlags(cmd)
		return withApp(func(app *cli.App) error {
			return app.UpdateCar(cmd.Context(), id, in, outputOptions())
		})
	},
}

var carsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a car",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(app *cli.App) error {
			return app.DeleteCar(cmd.Context(), id)
		})
	},
}

var carsBoundsCmd = &cobra.Command{
	Use:   "bounds",
	Short: "Show the price range and each car's gradient colour",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.Bounds(cmd.Context(), outputOptions())
		})
	},
}

// Flags for cars list
var (
	flagPage     int
	flagSize     int
	flagSort     string
	flagDir      string
	flagSearch   string
	flagBrand    string
	flagSpecName string
	flagEngine   float64
	flagNewOnly  bool
	flagMinPrice float64
	flagMaxPrice float64
	flagMinDate  string
	flagMaxDate  string
)

// Flags for cars add/update
var (
	flagCarBrandID int64
	flagCarSpec    string
	flagCarEngine  float64
	flagCarNew     bool
	flagCarPrice   float64
	flagCarRelease string
	flagCarImage   string
)

func init() {
	f := carsListCmd.Flags()
	f.IntVar(&flagPage, "page", 0, "Zero-based page number")
	f.IntVar(&flagSize, "size", 0, "Page size (default from config)")
	f.StringVar(&flagSort, "sort", "", "Sort key (id/brand/specification/engineLiter/isNew/price/releaseDateTime)")
	f.StringVar(&flagDir, "dir", "asc", "Sort direction (asc/desc)")
	f.StringVarP(&flagSearch, "search", "s", "", "Free-text search")
	f.StringVar(&flagBrand, "brand", "", "Brand name")
	f.StringVar(&flagSpecName, "spec", "", "Specification contains")
	f.Float64Var(&flagEngine, "engine", 0, "Engine size in liters")
	f.BoolVar(&flagNewOnly, "new", false, "Only new cars")
	f.Float64Var(&flagMinPrice, "min-price", 0, "Minimum price")
	f.Float64Var(&flagMaxPrice, "max-price", 0, "Maximum price")
	f.StringVar(&flagMinDate, "min-date", "", "Released on or after")
	f.StringVar(&flagMaxDate, "max-date", "", "Released on or before")

	for _, c := range []*cobra.Command{carsAddCmd, carsUpdateCmd} {
		c.Flags().Int64Var(&flagCarBrandID, "brand-id", 0, "Brand id")
		c.Flags().StringVar(&flagCarSpec, "spec", "", "Specification")
		c.Flags().Float64Var(&flagCarEngine, "engine", 0, "Engine size in liters")
		c.Flags().BoolVar(&flagCarNew, "new", false, "Car is new")
		c.Flags().Float64Var(&flagCarPrice, "price", 0, "Price")
		c.Flags().StringVar(&flagCarRelease, "release", "", "Release date (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)")
		c.Flags().StringVar(&flagCarImage, "image", "", "Image file to upload")
	}

	carsCmd.AddCommand(carsListCmd, carsAllCmd, carsAddCmd, carsUpdateCmd, carsDeleteCmd, carsBoundsCmd)
}

func pageQueryFromFlags(cmd *cobra.Command) (types.PageQuery, error) {
	key, ok := types.ParseSortKey(flagSort)
	if !ok {
		return types.PageQuery{}, fmt.Errorf("unknown sort key %q", flagSort)
	}
	dir := types.SortDirection(flagDir)
	if dir != types.SortAsc && dir != types.SortDesc {
		return types.PageQuery{}, fmt.Errorf("sort direction must be asc or desc, got %q", flagDir)
	}
	if flagPage < 0 {
		return types.PageQuery{}, fmt.Errorf("page must not be negative")
	}

	filters := types.FilterCriteria{
		Brand:         flagBrand,
		Specification: flagSpecName,
	}
	if cmd.Flags().Changed("engine") {
		filters.EngineLiter = types.Float(flagEngine)
	}
	if flagNewOnly {
		filters.IsNew = types.Bool(true)
	}
	if cmd.Flags().Changed("min-price") {
		filters.MinPrice = types.Float(flagMinPrice)
	}
	if cmd.Flags().Changed("max-price") {
		filters.MaxPrice = types.Float(flagMaxPrice)
	}
	var err error
	if filters.MinDate, err = parseDateFlag("min-date", flagMinDate); err != nil {
		return types.PageQuery{}, err
	}
	if filters.MaxDate, err = parseDateFlag("max-date", flagMaxDate); err != nil {
		return types.PageQuery{}, err
	}

	return types.PageQuery{
		Page:       flagPage,
		Size:       flagSize,
		SortBy:     key,
		SortDir:    dir,
		SearchTerm: flagSearch,
		Filters:    filters,
	}, nil
}

func parseDateFlag(name, value string) (*types.LocalDateTime, error) {
	if value == "" {
		return nil, nil
	}
	d, err := types.ParseLocalDateTime(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &d, nil
}

// carInputFromFlags only sets the fields the user actually passed
func carInputFromFlags(cmd *cobra.Command) cli.CarInput {
	in := cli.CarInput{BrandID: flagCarBrandID, ImagePath: flagCarImage}
	changed := cmd.Flags().Changed
	if changed("spec") {
		in.Specification = &flagCarSpec
	}
	if changed("engine") {
		in.EngineLiter = &flagCarEngine
	}
	if changed("new") {
		in.IsNew = &flagCarNew
	}
	if changed("price") {
		in.Price = &flagCarPrice
	}
	if changed("release") {
		in.ReleaseDateTime = &flagCarRelease
	}
	return in
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

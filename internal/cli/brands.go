package cli

import (
	"context"
	"fmt"
)

// ListBrands prints every brand
func (a *App) ListBrands(ctx context.Context, out OutputOptions) error {
	ctrl := a.Controller()
	if err := ctrl.LoadBrands(ctx); err != nil {
		return err
	}
	brands := ctrl.Snapshot().Brands
	return writeOutput(a.Out, brands, out, func() string { return renderBrands(brands) })
}

// AddBrand creates a brand
func (a *App) AddBrand(ctx context.Context, name string, out OutputOptions) error {
	if err := out.Validate(); err != nil {
		return err
	}
	created, err := a.Controller().AddBrand(ctx, name)
	if created == nil {
		return err
	}
	return writeOutput(a.Out, created, out, func() string {
		return fmt.Sprintf("Created brand %d (%s)", created.ID, created.Name)
	})
}

// RenameBrand changes the name of brand id
func (a *App) RenameBrand(ctx context.Context, id int64, name string, out OutputOptions) error {
	if err := out.Validate(); err != nil {
		return err
	}
	updated, err := a.Controller().RenameBrand(ctx, id, name)
	if err != nil {
		return err
	}
	return writeOutput(a.Out, updated, out, func() string {
		return fmt.Sprintf("Renamed brand %d to %s", updated.ID, updated.Name)
	})
}

// DeleteBrand removes brand id
func (a *App) DeleteBrand(ctx context.Context, id int64) error {
	if err := a.Controller().RemoveBrand(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Deleted brand %d\n", id)
	return nil
}

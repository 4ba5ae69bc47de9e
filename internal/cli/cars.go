package cli

import (
	"context"
	"fmt"

	"github.com/studiowebux/carcli/internal/gateway"
	"github.com/studiowebux/carcli/internal/types"
)

// CarInput carries the car fields set on the command line; nil means "not given"
type CarInput struct {
	BrandID         int64
	Specification   *string
	EngineLiter     *float64
	IsNew           *bool
	Price           *float64
	ReleaseDateTime *string
	ImagePath       string
}

// draft converts the input into a gateway payload
func (in CarInput) draft() (types.CarDraft, error) {
	d := types.CarDraft{
		BrandID:     in.BrandID,
		EngineLiter: in.EngineLiter,
		IsNew:       in.IsNew,
		Price:       in.Price,
	}
	if in.Specification != nil {
		d.Specification = *in.Specification
	}
	if in.ReleaseDateTime != nil && *in.ReleaseDateTime != "" {
		release, err := types.ParseLocalDateTime(*in.ReleaseDateTime)
		if err != nil {
			return d, err
		}
		d.ReleaseDateTime = &release
	}
	return d, nil
}

func (in CarInput) upload() (*gateway.Upload, error) {
	if in.ImagePath == "" {
		return nil, nil
	}
	return gateway.OpenUpload(in.ImagePath)
}

// ListCars prints one page of cars
func (a *App) ListCars(ctx context.Context, q types.PageQuery, out OutputOptions) error {
	if q.Size <= 0 {
		q.Size = a.Config.View.PageSize
	}
	if q.SortDir == "" {
		q.SortDir = types.SortAsc
	}

	page, err := a.Gateway.ListPage(ctx, q)
	if err != nil {
		return err
	}
	return writeOutput(a.Out, page, out, func() string { return renderPage(page) })
}

// AllCars prints every car, unpaginated
func (a *App) AllCars(ctx context.Context, out OutputOptions) error {
	cars, err := a.Gateway.ListAll(ctx)
	if err != nil {
		return err
	}
	return writeOutput(a.Out, cars, out, func() string { return renderCars(cars) })
}

// AddCar creates a car. Without a brand id the user picks one interactively.
func (a *App) AddCar(ctx context.Context, in CarInput, out OutputOptions) error {
	if err := out.Validate(); err != nil {
		return err
	}
	ctrl := a.Controller()
	if err := ctrl.LoadBrands(ctx); err != nil {
		return err
	}

	if in.BrandID == 0 {
		brands := ctrl.Snapshot().Brands
		if !isInteractive() {
			return fmt.Errorf("--brand-id is required")
		}
		id, err := promptForBrand(brands)
		if err != nil {
			return err
		}
		in.BrandID = id
	}

	draft, err := in.draft()
	if err != nil {
		return err
	}
	upload, err := in.upload()
	if err != nil {
		return err
	}

	created, err := ctrl.CreateCar(ctx, draft, upload)
	if created == nil {
		return err
	}
	if err != nil {
		// created, but the page refresh failed; not worth failing the command
		a.Logger.Sugar().Warnw("refresh after create failed", "error", err)
	}
	return writeOutput(a.Out, created, out, func() string { return renderCars([]types.Car{*created}) })
}

// UpdateCar sends the given fields for car id
func (a *App) UpdateCar(ctx context.Context, id int64, in CarInput, out OutputOptions) error {
	if err := out.Validate(); err != nil {
		return err
	}
	draft, err := in.draft()
	if err != nil {
		return err
	}
	upload, err := in.upload()
	if err != nil {
		return err
	}

	updated, err := a.Gateway.UpdateCar(ctx, id, draft, upload)
	if err != nil {
		return err
	}
	return writeOutput(a.Out, updated, out, func() string { return renderCars([]types.Car{*updated}) })
}

// DeleteCar removes car id
func (a *App) DeleteCar(ctx context.Context, id int64) error {
	if err := a.Gateway.DeleteCar(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Deleted car %d\n", id)
	return nil
}

// Bounds prints the min/max price and each car's gradient colour
func (a *App) Bounds(ctx context.Context, out OutputOptions) error {
	cars, err := a.Gateway.ListAll(ctx)
	if err != nil {
		return err
	}
	report := newBoundsReport(cars)
	return writeOutput(a.Out, report, out, func() string { return renderBounds(report) })
}

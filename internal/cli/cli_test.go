package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/carcli/internal/config"
	"github.com/studiowebux/carcli/internal/history"
	"github.com/studiowebux/carcli/internal/mock"
	"github.com/studiowebux/carcli/internal/session"
	"github.com/studiowebux/carcli/internal/types"
	"gopkg.in/yaml.v3"
)

type testApp struct {
	*App
	out *bytes.Buffer
	err *bytes.Buffer
}

func newTestApp(t *testing.T, withHistory bool) *testApp {
	t.Helper()
	srv := httptest.NewServer(mock.NewServer(mock.DefaultConfig(), nil).Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		API:  config.APIConfig{BaseURL: srv.URL, LoginURL: srv.URL + "/user/login", Timeout: 5 * time.Second},
		View: config.ViewConfig{PageSize: 5},
	}
	sess := session.NewManagerAt(filepath.Join(dir, ".session.json"))

	var hist *history.Manager
	if withHistory {
		var err error
		hist, err = history.NewManager(filepath.Join(dir, "carcli.db"), sess.Username)
		require.NoError(t, err)
	}

	app := NewApp(cfg, nil, sess, hist)
	t.Cleanup(func() { app.Close() })

	ta := &testApp{App: app, out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	app.Out = ta.out
	app.Err = ta.err
	return ta
}

func (ta *testApp) login(t *testing.T) {
	t.Helper()
	require.NoError(t, ta.Login(context.Background(), "admin", "admin"))
	ta.out.Reset()
}

func TestLogin_InvalidCredentials(t *testing.T) {
	app := newTestApp(t, false)

	err := app.Login(context.Background(), "admin", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, InvalidCredentialsMessage+"\n", app.err.String())
	assert.False(t, app.Session.IsAuthenticated())
}

func TestLoginWhoAmILogout(t *testing.T) {
	app := newTestApp(t, false)
	ctx := context.Background()

	require.NoError(t, app.Login(ctx, "admin", "admin"))
	assert.Contains(t, app.out.String(), "Logged in as admin")
	assert.True(t, app.Session.IsAuthenticated())

	app.out.Reset()
	require.NoError(t, app.WhoAmI())
	assert.Contains(t, app.out.String(), "admin")
	assert.Contains(t, app.out.String(), "Expires:")

	require.NoError(t, app.Logout())
	assert.ErrorIs(t, app.WhoAmI(), session.ErrNotAuthenticated)
}

func TestListCars_Unauthenticated(t *testing.T) {
	app := newTestApp(t, false)
	err := app.ListCars(context.Background(), types.PageQuery{}, OutputOptions{})
	assert.Error(t, err)
}

func TestListCars_Formats(t *testing.T) {
	app := newTestApp(t, false)
	app.login(t)
	ctx := context.Background()

	require.NoError(t, app.ListCars(ctx, types.PageQuery{}, OutputOptions{Format: FormatJSON}))
	var page types.PageResult
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &page))
	assert.Len(t, page.Content, 5, "page size comes from config")
	assert.Equal(t, int64(1), page.Content[0].IDValue())

	app.out.Reset()
	require.NoError(t, app.ListCars(ctx, types.PageQuery{Filters: types.FilterCriteria{Brand: "Toyota"}}, OutputOptions{Format: FormatYAML}))
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(app.out.Bytes(), &doc))
	assert.EqualValues(t, 3, doc["totalElements"])

	app.out.Reset()
	require.NoError(t, app.ListCars(ctx, types.PageQuery{SearchTerm: "yaris"}, OutputOptions{}))
	text := app.out.String()
	assert.Contains(t, text, "SPECIFICATION")
	assert.Contains(t, text, "Yaris")
	assert.Contains(t, text, "Page 1 of 1 (1 cars)")

	app.out.Reset()
	require.NoError(t, app.ListCars(ctx, types.PageQuery{SortBy: types.SortPrice, SortDir: types.SortDesc}, OutputOptions{Query: "content[0].specification"}))
	assert.Equal(t, "\"X5 xDrive40i\"\n", app.out.String())

	assert.Error(t, app.ListCars(ctx, types.PageQuery{}, OutputOptions{Format: "xml"}))
}

func TestCarLifecycle(t *testing.T) {
	app := newTestApp(t, false)
	app.login(t)
	ctx := context.Background()

	spec := "Supra"
	release := "2024-02-01"
	require.NoError(t, app.AddCar(ctx, CarInput{
		BrandID:         3,
		Specification:   &spec,
		Price:           types.Float(61000),
		IsNew:           types.Bool(true),
		ReleaseDateTime: &release,
	}, OutputOptions{Format: FormatJSON}))

	var created types.Car
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &created))
	assert.Equal(t, "Toyota", created.Brand.Name)
	assert.Equal(t, 2024, created.ReleaseDateTime.Year())

	app.out.Reset()
	newSpec := "Supra GR"
	require.NoError(t, app.UpdateCar(ctx, created.IDValue(), CarInput{Specification: &newSpec}, OutputOptions{Format: FormatJSON}))
	var updated types.Car
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &updated))
	assert.Equal(t, "Supra GR", updated.Specification)
	assert.Equal(t, 61000.0, updated.Price)

	app.out.Reset()
	require.NoError(t, app.DeleteCar(ctx, created.IDValue()))
	assert.Contains(t, app.out.String(), "Deleted car")
	assert.Error(t, app.DeleteCar(ctx, created.IDValue()))
}

func TestAddCar_WithImage(t *testing.T) {
	app := newTestApp(t, false)
	app.login(t)

	img := filepath.Join(t.TempDir(), "front.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG"), 0644))
	spec := "Civic"
	require.NoError(t, app.AddCar(context.Background(), CarInput{BrandID: 4, Specification: &spec, ImagePath: img}, OutputOptions{Format: FormatJSON}))

	var created types.Car
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &created))
	require.NotNil(t, created.Image)
	assert.True(t, strings.HasSuffix(created.Image.Filename, "_front.png"))
}

func TestAddCar_BadDate(t *testing.T) {
	app := newTestApp(t, false)
	app.login(t)
	bad := "yesterday"
	assert.Error(t, app.AddCar(context.Background(), CarInput{BrandID: 1, ReleaseDateTime: &bad}, OutputOptions{}))
}

func TestBrands(t *testing.T) {
	app := newTestApp(t, false)
	app.login(t)
	ctx := context.Background()

	require.NoError(t, app.AddBrand(ctx, "Mazda", OutputOptions{Format: FormatJSON}))
	var b types.Brand
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &b))

	app.out.Reset()
	require.NoError(t, app.RenameBrand(ctx, b.ID, "Mazda Motor", OutputOptions{}))
	assert.Contains(t, app.out.String(), "Mazda Motor")

	app.out.Reset()
	require.NoError(t, app.ListBrands(ctx, OutputOptions{}))
	assert.Contains(t, app.out.String(), "Mazda Motor")
	assert.Contains(t, app.out.String(), "Toyota")

	require.NoError(t, app.DeleteBrand(ctx, b.ID))
	assert.Error(t, app.DeleteBrand(ctx, 1), "brand still used by cars")
}

func TestOutputOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    OutputOptions
		wantErr string
	}{
		{"defaults", OutputOptions{}, ""},
		{"yaml upper case", OutputOptions{Format: "YAML"}, ""},
		{"valid query", OutputOptions{Query: "content[].price"}, ""},
		{"unknown format", OutputOptions{Format: "xml"}, "unsupported output format"},
		{"broken query", OutputOptions{Query: "content[."}, "invalid JMESPath query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBadQueryDoesNotMutate(t *testing.T) {
	app := newTestApp(t, false)
	app.login(t)
	ctx := context.Background()

	err := app.AddBrand(ctx, "Mazda", OutputOptions{Query: "[?name=="})
	require.ErrorIs(t, err, ErrInvalidQuery)

	require.NoError(t, app.ListBrands(ctx, OutputOptions{}))
	assert.NotContains(t, app.out.String(), "Mazda")
}

func TestBounds(t *testing.T) {
	app := newTestApp(t, false)
	app.login(t)

	require.NoError(t, app.Bounds(context.Background(), OutputOptions{Format: FormatJSON}))
	var report boundsReport
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &report))
	assert.Equal(t, 12000.0, report.Min)
	assert.Equal(t, 81000.0, report.Max)

	for _, c := range report.Cars {
		switch c.Price {
		case report.Min:
			assert.Equal(t, "rgb(0, 0, 255)", c.Color)
		case report.Max:
			assert.Equal(t, "rgb(255, 0, 0)", c.Color)
			assert.Equal(t, "#ff0000", c.Hex)
		}
	}
}

func TestHistory(t *testing.T) {
	app := newTestApp(t, true)
	app.login(t)
	ctx := context.Background()
	require.NoError(t, app.AllCars(ctx, OutputOptions{Format: FormatJSON}))

	app.out.Reset()
	require.NoError(t, app.ShowHistory(10, false, OutputOptions{Format: FormatJSON}))
	var entries []types.HistoryEntry
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "/car", entries[0].Path)
	assert.Equal(t, "admin", entries[0].Username)
	assert.Equal(t, "/user/login", entries[1].Path)

	app.out.Reset()
	require.NoError(t, app.ShowHistory(0, true, OutputOptions{}))
	require.NoError(t, app.ShowHistory(0, false, OutputOptions{Format: FormatJSON}))
	assert.Equal(t, "null\n", app.out.String()[len("History cleared\n"):])
}

func TestStats(t *testing.T) {
	app := newTestApp(t, true)
	app.login(t)
	ctx := context.Background()
	require.NoError(t, app.AllCars(ctx, OutputOptions{Format: FormatJSON}))
	require.NoError(t, app.AllCars(ctx, OutputOptions{Format: FormatJSON}))

	app.out.Reset()
	require.NoError(t, app.ShowStats(OutputOptions{Format: FormatJSON}))
	var stats []types.RouteStats
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, "/car", stats[0].Route)
	assert.Equal(t, 2, stats[0].TotalCalls)
	assert.Equal(t, 2, stats[0].SuccessCount)
	assert.Equal(t, "/user/login", stats[1].Route)

	app.out.Reset()
	require.NoError(t, app.ShowStats(OutputOptions{}))
	assert.Contains(t, app.out.String(), "/user/login")
	assert.Contains(t, app.out.String(), "3 calls recorded")
}

func TestHistory_Disabled(t *testing.T) {
	app := newTestApp(t, false)
	assert.ErrorIs(t, app.ShowHistory(10, false, OutputOptions{}), ErrHistoryDisabled)
	assert.ErrorIs(t, app.ShowStats(OutputOptions{}), ErrHistoryDisabled)
}

func TestPromptPassword_Piped(t *testing.T) {
	app := newTestApp(t, false)
	app.In = strings.NewReader("s3cret\n")

	pw, err := app.PromptPassword()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
}

func TestWriteMockConfig(t *testing.T) {
	app := newTestApp(t, false)
	path := filepath.Join(t.TempDir(), "mock.yaml")

	require.NoError(t, app.WriteMockConfig(path))
	assert.Contains(t, app.out.String(), path)

	cfg, err := mock.LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Brands, len(mock.DefaultConfig().Brands))
	assert.Len(t, cfg.Cars, len(mock.DefaultConfig().Cars))

	assert.Error(t, app.WriteMockConfig(filepath.Join(t.TempDir(), "mock.toml")))
}

func TestFormatRequestLog(t *testing.T) {
	line := formatRequestLog(mock.RequestLog{
		Timestamp: time.Date(2024, 3, 1, 9, 30, 15, 0, time.Local),
		Method:    "GET",
		Path:      "/car/byPage",
		Status:    200,
		Duration:  1500 * time.Microsecond,
	})
	assert.True(t, strings.HasPrefix(line, "09:30:15 GET "), line)
	assert.Contains(t, line, "/car/byPage")
	assert.True(t, strings.HasSuffix(line, " 200 1.5ms"), line)
}

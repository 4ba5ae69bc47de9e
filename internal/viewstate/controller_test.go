package viewstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/carcli/internal/gateway"
	"github.com/studiowebux/carcli/internal/types"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func id(v int64) *int64 { return &v }

func car(cid int64, brand, spec string, price float64) types.Car {
	return types.Car{
		ID:            id(cid),
		Brand:         types.Brand{ID: cid, Name: brand},
		Specification: spec,
		Price:         price,
	}
}

// fakeGateway serves canned pages and records every call
type fakeGateway struct {
	mu sync.Mutex

	page      *types.PageResult
	all       []types.Car
	brands    []types.Brand
	listErr   error
	brandsErr error
	mutErr    error

	queries  []types.PageQuery
	created  []types.CarDraft
	updated  map[int64]types.CarDraft
	deleted  []int64
	nextCar  *types.Car
	blockFor map[int]chan struct{} // ListPage call index → release
}

func newFakeGateway(page *types.PageResult) *fakeGateway {
	return &fakeGateway{page: page, updated: map[int64]types.CarDraft{}}
}

func (f *fakeGateway) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeGateway) ListPage(ctx context.Context, q types.PageQuery) (*types.PageResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	n := len(f.queries) - 1
	wait := f.blockFor[n]
	page, err := f.page, f.listErr
	f.mu.Unlock()

	if wait != nil {
		<-wait
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cp := *page
	cp.Content = append([]types.Car(nil), page.Content...)
	return &cp, nil
}

func (f *fakeGateway) ListAll(ctx context.Context) ([]types.Car, error) {
	return f.all, f.listErr
}

func (f *fakeGateway) ListBrands(ctx context.Context) ([]types.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.brandsErr != nil {
		return nil, f.brandsErr
	}
	return append([]types.Brand(nil), f.brands...), f.listErr
}

func (f *fakeGateway) CreateCar(ctx context.Context, draft types.CarDraft, upload *gateway.Upload) (*types.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	f.created = append(f.created, draft)
	if f.nextCar != nil {
		return f.nextCar, nil
	}
	return &types.Car{ID: id(99), Brand: *draft.Brand, Specification: draft.Specification}, nil
}

func (f *fakeGateway) UpdateCar(ctx context.Context, cid int64, draft types.CarDraft, upload *gateway.Upload) (*types.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	f.updated[cid] = draft
	return f.nextCar, nil
}

func (f *fakeGateway) DeleteCar(ctx context.Context, cid int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return f.mutErr
	}
	f.deleted = append(f.deleted, cid)
	return nil
}

func (f *fakeGateway) CreateBrand(ctx context.Context, b types.Brand) (*types.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = int64(len(f.brands) + 100)
	f.brands = append(f.brands, b)
	return &b, nil
}

func (f *fakeGateway) UpdateBrand(ctx context.Context, bid int64, name string) (*types.Brand, error) {
	return &types.Brand{ID: bid, Name: name}, nil
}

func (f *fakeGateway) DeleteBrand(ctx context.Context, bid int64) error {
	return f.mutErr
}

func fivePage() *types.PageResult {
	return &types.PageResult{
		Content: []types.Car{
			car(1, "Toyota", "Yaris", 15000),
			car(2, "BMW", "M3", 70000),
			car(3, "Audi", "A4", 40000),
			car(4, "Honda", "Civic", 21000),
			car(5, "bmw", "X5", 65000),
		},
		PageSize:      5,
		TotalElements: 12,
		TotalPages:    3,
	}
}

func TestLoad_InitialQueryAndServerOrder(t *testing.T) {
	gw := newFakeGateway(fivePage())
	c := New(gw, Options{})

	require.NoError(t, c.Load(context.Background()))

	require.Len(t, gw.queries, 1)
	q := gw.queries[0]
	assert.Equal(t, 0, q.Page)
	assert.Equal(t, 5, q.Size)
	assert.Equal(t, types.SortID, q.SortBy.OrDefault())
	assert.Equal(t, types.SortAsc, q.SortDir)

	snap := c.Snapshot()
	assert.Equal(t, fivePage().Content, snap.Cars, "display keeps server order")
	assert.Equal(t, 3, snap.TotalPages)
	assert.Equal(t, int64(12), snap.TotalElements)
	assert.True(t, snap.Loaded)
}

func TestLoad_ErrorKeepsState(t *testing.T) {
	gw := newFakeGateway(fivePage())
	c := New(gw, Options{})
	require.NoError(t, c.Load(context.Background()))

	gw.listErr = errors.New("connection refused")
	err := c.Load(context.Background())
	require.Error(t, err)
	assert.Len(t, c.Snapshot().Cars, 5)
}

func TestSortBy_Toggle(t *testing.T) {
	gw := newFakeGateway(fivePage())
	c := New(gw, Options{})
	ctx := context.Background()

	require.NoError(t, c.SortBy(ctx, types.SortPrice))
	snap := c.Snapshot()
	assert.Equal(t, types.SortPrice, snap.SortKey)
	assert.Equal(t, types.SortAsc, snap.SortDir)

	require.NoError(t, c.SortBy(ctx, types.SortPrice))
	assert.Equal(t, types.SortDesc, c.Snapshot().SortDir)

	require.NoError(t, c.SortBy(ctx, types.SortBrand))
	snap = c.Snapshot()
	assert.Equal(t, types.SortBrand, snap.SortKey)
	assert.Equal(t, types.SortAsc, snap.SortDir)

	require.Len(t, gw.queries, 3)
	assert.Equal(t, types.SortDesc, gw.queries[1].SortDir)
	assert.Equal(t, types.SortBrand, gw.queries[2].SortBy)
}

func TestPaging_BoundariesDoNotFetch(t *testing.T) {
	gw := newFakeGateway(fivePage())
	c := New(gw, Options{})
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	moved, err := c.PrevPage(ctx)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, 1, gw.fetches())
	assert.Equal(t, 0, c.Snapshot().Page)

	for want := 1; want <= 2; want++ {
		moved, err = c.NextPage(ctx)
		require.NoError(t, err)
		assert.True(t, moved)
		assert.Equal(t, want, c.Snapshot().Page)
	}
	assert.Equal(t, 3, gw.fetches())

	moved, err = c.NextPage(ctx)
	require.NoError(t, err)
	assert.False(t, moved, "page 2 of 3 is the last page")
	assert.Equal(t, 3, gw.fetches())
	assert.Equal(t, 2, c.Snapshot().Page)
}

func TestPaging_KeepsSortSearchAndFilters(t *testing.T) {
	gw := newFakeGateway(fivePage())
	c := New(gw, Options{})
	ctx := context.Background()

	require.NoError(t, c.SortBy(ctx, types.SortPrice))
	require.NoError(t, c.Search(ctx, "civic"))
	require.NoError(t, c.ApplyFilters(ctx, types.FilterCriteria{Brand: "Honda"}))
	_, err := c.NextPage(ctx)
	require.NoError(t, err)

	last := gw.queries[len(gw.queries)-1]
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, types.SortPrice, last.SortBy)
	assert.Equal(t, "civic", last.SearchTerm)
	assert.Equal(t, "Honda", last.Filters.Brand)
}

func TestSearchFiltersAndPageSize_ResetToFirstPage(t *testing.T) {
	gw := newFakeGateway(fivePage())
	c := New(gw, Options{})
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	_, _ = c.NextPage(ctx)

	require.NoError(t, c.Search(ctx, " yaris "))
	assert.Equal(t, 0, c.Snapshot().Page)
	assert.Equal(t, "yaris", c.Snapshot().SearchTerm)

	_, _ = c.NextPage(ctx)
	require.NoError(t, c.ApplyFilters(ctx, types.FilterCriteria{MaxPrice: types.Float(30000)}))
	assert.Equal(t, 0, c.Snapshot().Page)

	require.NoError(t, c.ResetFilters(ctx))
	assert.True(t, c.Snapshot().Filters.IsZero())

	require.NoError(t, c.SetPageSize(ctx, 10))
	assert.Equal(t, 10, gw.queries[len(gw.queries)-1].Size)
	assert.Error(t, c.SetPageSize(ctx, 0))
}

func TestFilterLocal(t *testing.T) {
	gw := newFakeGateway(fivePage())
	c := New(gw, Options{})
	ctx := context.Background()
	require.NoError(t, c.SortBy(ctx, types.SortPrice))
	before := gw.fetches()

	c.FilterLocal("BMW")
	snap := c.Snapshot()
	require.Len(t, snap.Cars, 2, "matches brand names case-insensitively")
	assert.Equal(t, "X5", snap.Cars[0].Specification, "re-sorted by price ascending")
	assert.Equal(t, "M3", snap.Cars[1].Specification)

	c.FilterLocal("civ")
	require.Len(t, c.Snapshot().Cars, 1, "matches specification")

	c.FilterLocal("")
	assert.Equal(t, fivePage().Content, c.Snapshot().Cars, "empty term restores server order")
	assert.Equal(t, before, gw.fetches(), "local filter never fetches")
}

func TestCreateCar_ResolvesBrandAndRefetches(t *testing.T) {
	gw := newFakeGateway(fivePage())
	gw.brands = []types.Brand{{ID: 1, Name: "BMW"}, {ID: 3, Name: "Toyota"}}
	c := New(gw, Options{})
	ctx := context.Background()
	require.NoError(t, c.LoadBrands(ctx))
	require.NoError(t, c.Load(ctx))

	gw.page = &types.PageResult{
		Content:       append(fivePage().Content, car(6, "Toyota", "Corolla", 20000)),
		TotalElements: 13, TotalPages: 3,
	}

	created, err := c.CreateCar(ctx, types.CarDraft{BrandID: 3, Specification: "Corolla", Price: types.Float(20000)}, nil)
	require.NoError(t, err)
	require.NotNil(t, created)

	require.Len(t, gw.created, 1)
	require.NotNil(t, gw.created[0].Brand)
	assert.Equal(t, types.Brand{ID: 3, Name: "Toyota"}, *gw.created[0].Brand)

	assert.Equal(t, 2, gw.fetches(), "exactly one refetch after create")
	snap := c.Snapshot()
	assert.Len(t, snap.Cars, 6)
	assert.Equal(t, int64(13), snap.TotalElements)
	assert.Equal(t, PhaseIdle, snap.Phase)
}

func TestCreateCar_UnknownBrand(t *testing.T) {
	gw := newFakeGateway(fivePage())
	c := New(gw, Options{})

	_, err := c.CreateCar(context.Background(), types.CarDraft{BrandID: 42}, nil)
	assert.ErrorIs(t, err, ErrUnknownBrand)
	assert.Empty(t, gw.created)
	assert.Equal(t, 0, gw.fetches())
}

func TestCreateCar_FailureLeavesStateUnchanged(t *testing.T) {
	gw := newFakeGateway(fivePage())
	gw.brands = []types.Brand{{ID: 3, Name: "Toyota"}}
	c := New(gw, Options{})
	ctx := context.Background()
	require.NoError(t, c.LoadBrands(ctx))
	require.NoError(t, c.Load(ctx))
	before := c.Snapshot()

	gw.mutErr = errors.New("500 internal")
	_, err := c.CreateCar(ctx, types.CarDraft{BrandID: 3}, nil)
	require.Error(t, err)

	assert.Equal(t, before, c.Snapshot())
	assert.Equal(t, 1, gw.fetches())
}

func TestUpdateCar_ReplacesInPlaceThenRefetches(t *testing.T) {
	gw := newFakeGateway(fivePage())
	gw.brands = []types.Brand{{ID: 3, Name: "Toyota"}}
	c := New(gw, Options{})
	ctx := context.Background()
	require.NoError(t, c.LoadBrands(ctx))
	require.NoError(t, c.Load(ctx))

	updated := car(2, "BMW", "M3 Competition", 80000)
	gw.nextCar = &updated

	draft := types.DraftFromCar(c.Snapshot().Cars[1])
	draft.Specification = "M3 Competition"
	draft.BrandID = 0
	got, err := c.UpdateCar(ctx, 1, draft, nil)
	require.NoError(t, err)
	assert.Equal(t, "M3 Competition", got.Specification)

	sent := gw.updated[2]
	assert.Nil(t, sent.Brand, "update sends brandId only")
	assert.Equal(t, 2, gw.fetches())
}

func TestUpdateCar_IndexOutOfRange(t *testing.T) {
	c := New(newFakeGateway(fivePage()), Options{})
	_, err := c.UpdateCar(context.Background(), 7, types.CarDraft{}, nil)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDeleteCar_RemovesLocallyWithoutRefetch(t *testing.T) {
	gw := newFakeGateway(fivePage())
	c := New(gw, Options{})
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	before := c.Snapshot()

	require.NoError(t, c.DeleteCar(ctx, 2))

	after := c.Snapshot()
	assert.Len(t, after.Cars, len(before.Cars)-1)
	assert.Equal(t, []int64{3}, gw.deleted)
	assert.Equal(t, 1, gw.fetches(), "no refetch after delete")

	after.Cars = before.Cars
	assert.Equal(t, before, after, "nothing else changes")
}

func TestDeleteCar_RefetchStepsBackFromEmptyPage(t *testing.T) {
	gw := newFakeGateway(&types.PageResult{
		Content:    []types.Car{car(11, "Kia", "Rio", 9000)},
		TotalPages: 3,
	})
	c := New(gw, Options{RefetchAfterDelete: true})
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	_, _ = c.NextPage(ctx)
	_, _ = c.NextPage(ctx)
	require.Equal(t, 2, c.Snapshot().Page)

	require.NoError(t, c.DeleteCar(ctx, 0))
	assert.Equal(t, 1, c.Snapshot().Page)
	assert.Equal(t, 1, gw.queries[len(gw.queries)-1].Page)
}

func TestMutation_BusyWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	gw := newFakeGateway(fivePage())
	gw.brands = []types.Brand{{ID: 3, Name: "Toyota"}}
	gw.blockFor = map[int]chan struct{}{1: release}
	c := New(gw, Options{})
	ctx := context.Background()
	require.NoError(t, c.LoadBrands(ctx))
	require.NoError(t, c.Load(ctx))

	done := make(chan error)
	go func() {
		_, err := c.CreateCar(ctx, types.CarDraft{BrandID: 3}, nil)
		done <- err
	}()

	require.Eventually(t, func() bool { return c.Phase() == PhaseReconciling }, testTimeout, testTick)
	assert.ErrorIs(t, c.DeleteCar(ctx, 0), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.NoError(t, c.DeleteCar(ctx, 0))
}

func TestFetch_DropsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	gw := newFakeGateway(fivePage())
	gw.blockFor = map[int]chan struct{}{0: release}
	c := New(gw, Options{})
	ctx := context.Background()

	slow := make(chan error)
	go func() { slow <- c.Load(ctx) }()
	require.Eventually(t, func() bool { return gw.fetches() == 1 }, testTimeout, testTick)

	gw.mu.Lock()
	gw.page = &types.PageResult{Content: []types.Car{car(9, "Kia", "Rio", 9000)}, TotalPages: 1}
	gw.mu.Unlock()
	require.NoError(t, c.Search(ctx, "rio"))

	gw.mu.Lock()
	gw.page = fivePage()
	gw.mu.Unlock()
	close(release)
	require.NoError(t, <-slow)

	snap := c.Snapshot()
	require.Len(t, snap.Cars, 1, "older response must not overwrite the newer one")
	assert.Equal(t, "Rio", snap.Cars[0].Specification)
}

func TestIndexOf(t *testing.T) {
	c := New(newFakeGateway(fivePage()), Options{})
	require.NoError(t, c.Load(context.Background()))

	want, ok := c.CarAt(3)
	require.True(t, ok)
	idx, ok := c.IndexOf(want.IDValue())
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok = c.IndexOf(999)
	assert.False(t, ok)
}

func TestLoadAll_FansOut(t *testing.T) {
	gw := newFakeGateway(fivePage())
	gw.all = []types.Car{car(1, "a", "a", 100), car(2, "b", "b", 900)}
	gw.brands = []types.Brand{{ID: 1, Name: "BMW"}}
	c := New(gw, Options{})

	require.NoError(t, c.LoadAll(context.Background()))
	snap := c.Snapshot()
	assert.Equal(t, 100.0, snap.Gradient.Min)
	assert.Equal(t, 900.0, snap.Gradient.Max)
	assert.Len(t, snap.Brands, 1)
	assert.Len(t, snap.Cars, 5)
}

func TestLoadAll_BrandFailureKeepsPage(t *testing.T) {
	gw := newFakeGateway(fivePage())
	gw.all = []types.Car{car(1, "a", "a", 100), car(2, "b", "b", 900)}
	gw.brandsErr = errors.New("brands down")
	gw.blockFor = map[int]chan struct{}{0: make(chan struct{})}
	c := New(gw, Options{})

	done := make(chan error, 1)
	go func() { done <- c.LoadAll(context.Background()) }()

	// the brand call has failed well before the page is released
	require.Eventually(t, func() bool {
		return c.Snapshot().Gradient.Max == 900
	}, time.Second, 5*time.Millisecond)
	close(gw.blockFor[0])

	err := <-done
	require.ErrorContains(t, err, "brands down")
	snap := c.Snapshot()
	assert.True(t, snap.Loaded)
	assert.Len(t, snap.Cars, 5)
	assert.Empty(t, snap.Brands)
	assert.Equal(t, 100.0, snap.Gradient.Min)
}

func TestBrandBookkeeping(t *testing.T) {
	gw := newFakeGateway(fivePage())
	gw.brands = []types.Brand{{ID: 1, Name: "BMW"}}
	c := New(gw, Options{})
	ctx := context.Background()
	require.NoError(t, c.LoadBrands(ctx))

	created, err := c.AddBrand(ctx, "Mazda")
	require.NoError(t, err)
	assert.Len(t, c.Snapshot().Brands, 2)

	_, err = c.RenameBrand(ctx, created.ID, "Mazda Motor")
	require.NoError(t, err)
	b, ok := c.Brand(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Mazda Motor", b.Name)

	require.NoError(t, c.RemoveBrand(ctx, 1))
	_, ok = c.Brand(1)
	assert.False(t, ok)

	_, err = c.AddBrand(ctx, "  ")
	assert.Error(t, err)
}

func TestAddToCart(t *testing.T) {
	c := New(newFakeGateway(fivePage()), Options{})
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.AddToCart(0))
	require.NoError(t, c.AddToCart(0))
	require.NoError(t, c.AddToCart(1))
	assert.ErrorIs(t, c.AddToCart(9), ErrIndexOutOfRange)

	assert.Equal(t, 3, c.Cart().Len())
	assert.Equal(t, 100000.0, c.Cart().Total())
}

package viewstate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/studiowebux/carcli/internal/gateway"
	"github.com/studiowebux/carcli/internal/pricing"
	"github.com/studiowebux/carcli/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrBusy is returned when a mutation is submitted while another one is in flight
	ErrBusy = errors.New("another change is still being applied")
	// ErrUnknownBrand is returned when a draft references a brand id missing from the brand list
	ErrUnknownBrand = errors.New("unknown brand")
	// ErrIndexOutOfRange is returned when a local index does not address a displayed car
	ErrIndexOutOfRange = errors.New("car index out of range")
	// ErrMissingID is returned when a displayed car has no server-assigned id
	ErrMissingID = errors.New("car has no id")
)

// DefaultPageSize is the page size used when none is configured
const DefaultPageSize = 5

// Gateway is the remote API surface the controller drives
type Gateway interface {
	ListPage(ctx context.Context, q types.PageQuery) (*types.PageResult, error)
	ListAll(ctx context.Context) ([]types.Car, error)
	ListBrands(ctx context.Context) ([]types.Brand, error)
	CreateCar(ctx context.Context, draft types.CarDraft, upload *gateway.Upload) (*types.Car, error)
	UpdateCar(ctx context.Context, id int64, draft types.CarDraft, upload *gateway.Upload) (*types.Car, error)
	DeleteCar(ctx context.Context, id int64) error
	CreateBrand(ctx context.Context, brand types.Brand) (*types.Brand, error)
	UpdateBrand(ctx context.Context, id int64, name string) (*types.Brand, error)
	DeleteBrand(ctx context.Context, id int64) error
}

// Phase is the mutation lifecycle: Idle → Submitting → Reconciling → Idle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseReconciling
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseReconciling:
		return "reconciling"
	default:
		return "idle"
	}
}

// Options tunes controller behaviour
type Options struct {
	PageSize int
	// RefetchAfterDelete replaces the local removal with a server refetch
	RefetchAfterDelete bool
	Logger             *zap.Logger
}

// Snapshot is an immutable copy of the view state for rendering
type Snapshot struct {
	Page          int
	PageSize      int
	SortKey       types.SortKey
	SortDir       types.SortDirection
	SearchTerm    string
	LocalFilter   string
	Filters       types.FilterCriteria
	Cars          []types.Car
	TotalPages    int
	TotalElements int64
	Brands        []types.Brand
	Gradient      pricing.Gradient
	Phase         Phase
	Loaded        bool
}

// HasNext reports whether a next page exists
func (s Snapshot) HasNext() bool {
	return s.Page+1 < s.TotalPages
}

// HasPrev reports whether a previous page exists
func (s Snapshot) HasPrev() bool {
	return s.Page > 0
}

// Controller owns paging, sorting, search and filter state plus the
// displayed page of cars. Safe for concurrent use.
type Controller struct {
	gw     Gateway
	logger *zap.Logger
	opts   Options
	cart   *Cart

	mu          sync.Mutex
	sorter      *sorter
	page        int
	pageSize    int
	sortKey     types.SortKey
	sortDir     types.SortDirection
	searchTerm  string
	filters     types.FilterCriteria
	localFilter string
	server      []types.Car // page as returned by the server
	display     []types.Car // server page after the local filter and sort
	totalPages  int
	totalElems  int64
	brands      []types.Brand
	gradient    pricing.Gradient
	phase       Phase
	loaded      bool
	issued      uint64
	applied     uint64
}

// New creates a controller at page 0, sorted by id ascending
func New(gw Gateway, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		gw:       gw,
		logger:   opts.Logger,
		opts:     opts,
		cart:     &Cart{},
		sorter:   newSorter(),
		pageSize: opts.PageSize,
		sortKey:  types.SortNone,
		sortDir:  types.SortAsc,
	}
}

// Cart returns the selection cart
func (c *Controller) Cart() *Cart {
	return c.cart
}

// Query returns the page query the next fetch would send
func (c *Controller) Query() types.PageQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryLocked()
}

func (c *Controller) queryLocked() types.PageQuery {
	return types.PageQuery{
		Page:       c.page,
		Size:       c.pageSize,
		SortBy:     c.sortKey,
		SortDir:    c.sortDir,
		SearchTerm: c.searchTerm,
		Filters:    c.filters,
	}
}

// Snapshot copies the current view state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Page:          c.page,
		PageSize:      c.pageSize,
		SortKey:       c.sortKey,
		SortDir:       c.sortDir,
		SearchTerm:    c.searchTerm,
		LocalFilter:   c.localFilter,
		Filters:       c.filters,
		Cars:          slices.Clone(c.display),
		TotalPages:    c.totalPages,
		TotalElements: c.totalElems,
		Brands:        slices.Clone(c.brands),
		Gradient:      c.gradient,
		Phase:         c.phase,
		Loaded:        c.loaded,
	}
}

// IndexOf returns the displayed index of the car with id
func (c *Controller) IndexOf(id int64) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, car := range c.display {
		if car.HasID() && car.IDValue() == id {
			return i, true
		}
	}
	return -1, false
}

// CarAt returns the displayed car at index
func (c *Controller) CarAt(index int) (types.Car, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.display) {
		return types.Car{}, false
	}
	return c.display[index], true
}

// Brand resolves a brand id against the loaded brand list
func (c *Controller) Brand(id int64) (types.Brand, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brandLocked(id)
}

func (c *Controller) brandLocked(id int64) (types.Brand, bool) {
	for _, b := range c.brands {
		if b.ID == id {
			return b, true
		}
	}
	return types.Brand{}, false
}

// LoadAll fetches brands, price bounds and the current page concurrently.
// Each load applies on its own; a failing one does not cancel the others.
func (c *Controller) LoadAll(ctx context.Context) error {
	loads := []func(context.Context) error{c.LoadBrands, c.LoadPriceBounds, c.Load}
	errs := make([]error, len(loads))

	var g errgroup.Group
	for i, load := range loads {
		g.Go(func() error {
			errs[i] = load(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Load fetches the current page with the current sort, search and filters
func (c *Controller) Load(ctx context.Context) error {
	return c.fetch(ctx)
}

// fetch issues one ListPage call and applies the response unless a newer
// one has already been applied
func (c *Controller) fetch(ctx context.Context) error {
	c.mu.Lock()
	q := c.queryLocked()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	res, err := c.gw.ListPage(ctx, q)
	if err != nil {
		c.logger.Error("Error fetching cars",
			zap.Int("page", q.Page),
			zap.String("sortBy", string(q.SortBy.OrDefault())),
			zap.Error(err))
		return fmt.Errorf("failed to fetch cars: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.applied {
		c.logger.Debug("discarding stale page", zap.Uint64("seq", seq), zap.Uint64("applied", c.applied))
		return nil
	}
	c.applied = seq
	c.server = slices.Clone(res.Content)
	c.totalPages = res.TotalPages
	c.totalElems = res.TotalElements
	c.loaded = true
	c.refreshDisplayLocked()
	return nil
}

// refreshDisplayLocked rebuilds the displayed list from the server page.
// Without a local filter the server order is kept as is.
func (c *Controller) refreshDisplayLocked() {
	if c.localFilter == "" {
		c.display = slices.Clone(c.server)
		return
	}
	out := make([]types.Car, 0, len(c.server))
	for _, car := range c.server {
		if matchesTerm(car, c.localFilter) {
			out = append(out, car)
		}
	}
	c.sorter.sort(out, c.sortKey, c.sortDir)
	c.display = out
}

// SortBy toggles the direction when key is already active, otherwise selects
// key ascending; then refetches the current page
func (c *Controller) SortBy(ctx context.Context, key types.SortKey) error {
	c.mu.Lock()
	if c.sortKey == key {
		c.sortDir = c.sortDir.Flip()
	} else {
		c.sortKey = key
		c.sortDir = types.SortAsc
	}
	c.mu.Unlock()
	return c.fetch(ctx)
}

// NextPage moves forward one page. At the last page it does nothing and returns false.
func (c *Controller) NextPage(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.page+1 >= c.totalPages {
		c.mu.Unlock()
		return false, nil
	}
	c.page++
	c.mu.Unlock()
	return true, c.fetch(ctx)
}

// PrevPage moves back one page. At page 0 it does nothing and returns false.
func (c *Controller) PrevPage(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.page <= 0 {
		c.mu.Unlock()
		return false, nil
	}
	c.page--
	c.mu.Unlock()
	return true, c.fetch(ctx)
}

// Search sets the server-side search term and fetches page 0
func (c *Controller) Search(ctx context.Context, term string) error {
	c.mu.Lock()
	c.searchTerm = strings.TrimSpace(term)
	c.page = 0
	c.mu.Unlock()
	return c.fetch(ctx)
}

// ApplyFilters replaces the filter criteria and fetches page 0
func (c *Controller) ApplyFilters(ctx context.Context, f types.FilterCriteria) error {
	c.mu.Lock()
	c.filters = f
	c.page = 0
	c.mu.Unlock()
	return c.fetch(ctx)
}

// ResetFilters clears every filter predicate and fetches page 0
func (c *Controller) ResetFilters(ctx context.Context) error {
	return c.ApplyFilters(ctx, types.FilterCriteria{})
}

// SetPageSize changes the page size and fetches page 0
func (c *Controller) SetPageSize(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("invalid page size %d", n)
	}
	c.mu.Lock()
	c.pageSize = n
	c.page = 0
	c.mu.Unlock()
	return c.fetch(ctx)
}

// FilterLocal narrows the fetched page to cars whose brand name or
// specification contains term, then re-sorts locally. An empty term
// restores the server order. No request is made.
func (c *Controller) FilterLocal(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localFilter = strings.TrimSpace(term)
	c.refreshDisplayLocked()
}

// LoadBrands replaces the brand list from the server
func (c *Controller) LoadBrands(ctx context.Context) error {
	brands, err := c.gw.ListBrands(ctx)
	if err != nil {
		c.logger.Error("Error fetching brands", zap.Error(err))
		return fmt.Errorf("failed to fetch brands: %w", err)
	}
	c.mu.Lock()
	c.brands = slices.Clone(brands)
	c.mu.Unlock()
	return nil
}

// LoadPriceBounds fetches every car and recomputes the price gradient bounds
func (c *Controller) LoadPriceBounds(ctx context.Context) error {
	all, err := c.gw.ListAll(ctx)
	if err != nil {
		c.logger.Error("Error fetching all cars", zap.Error(err))
		return fmt.Errorf("failed to fetch all cars: %w", err)
	}
	g := pricing.NewGradient(all)
	c.mu.Lock()
	c.gradient = g
	c.mu.Unlock()
	return nil
}

// begin moves Idle → Submitting
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseIdle {
		return ErrBusy
	}
	c.phase = PhaseSubmitting
	return nil
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// Phase returns the current mutation phase
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// resolveBrand fills draft.Brand from the brand list
func (c *Controller) resolveBrand(draft *types.CarDraft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.brandLocked(draft.BrandID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBrand, draft.BrandID)
	}
	draft.Brand = &b
	return nil
}

// CreateCar submits a new car with its brand resolved from the brand list,
// then refetches the current page. Local state is untouched on failure.
func (c *Controller) CreateCar(ctx context.Context, draft types.CarDraft, upload *gateway.Upload) (*types.Car, error) {
	if err := c.resolveBrand(&draft); err != nil {
		return nil, err
	}
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.setPhase(PhaseIdle)

	car, err := c.gw.CreateCar(ctx, draft, upload)
	if err != nil {
		c.logger.Error("Error saving car", zap.Error(err))
		return nil, fmt.Errorf("failed to create car: %w", err)
	}

	c.setPhase(PhaseReconciling)
	if err := c.fetch(ctx); err != nil {
		return car, err
	}
	return car, nil
}

// UpdateCar submits changed fields for the displayed car at index, replaces
// it in place with the server's record and refetches the current page
func (c *Controller) UpdateCar(ctx context.Context, index int, draft types.CarDraft, upload *gateway.Upload) (*types.Car, error) {
	target, ok := c.CarAt(index)
	if !ok {
		return nil, ErrIndexOutOfRange
	}
	if !target.HasID() {
		return nil, ErrMissingID
	}
	// update sends brandId only
	draft.Brand = nil
	if draft.BrandID != 0 {
		if _, ok := c.Brand(draft.BrandID); !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownBrand, draft.BrandID)
		}
	}

	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.setPhase(PhaseIdle)

	updated, err := c.gw.UpdateCar(ctx, target.IDValue(), draft, upload)
	if err != nil {
		c.logger.Error("Error updating car", zap.Int64("id", target.IDValue()), zap.Error(err))
		return nil, fmt.Errorf("failed to update car: %w", err)
	}

	c.mu.Lock()
	c.phase = PhaseReconciling
	replaceByID(c.server, *updated)
	replaceByID(c.display, *updated)
	c.mu.Unlock()

	if err := c.fetch(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// DeleteCar deletes the displayed car at index and removes it locally.
// With RefetchAfterDelete the page is refetched instead, stepping back a
// page when the current one became empty.
func (c *Controller) DeleteCar(ctx context.Context, index int) error {
	target, ok := c.CarAt(index)
	if !ok {
		return ErrIndexOutOfRange
	}
	if !target.HasID() {
		return ErrMissingID
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.setPhase(PhaseIdle)

	if err := c.gw.DeleteCar(ctx, target.IDValue()); err != nil {
		c.logger.Error("Error deleting car", zap.Int64("id", target.IDValue()), zap.Error(err))
		return fmt.Errorf("failed to delete car: %w", err)
	}

	c.mu.Lock()
	c.server = removeByID(c.server, target.IDValue())
	c.display = removeByID(c.display, target.IDValue())
	refetch := c.opts.RefetchAfterDelete
	if refetch {
		c.phase = PhaseReconciling
		if len(c.server) == 0 && c.page > 0 {
			c.page--
		}
	}
	c.mu.Unlock()

	if refetch {
		return c.fetch(ctx)
	}
	return nil
}

// AddToCart copies the displayed car at index into the cart
func (c *Controller) AddToCart(index int) error {
	car, ok := c.CarAt(index)
	if !ok {
		return ErrIndexOutOfRange
	}
	c.cart.Add(car)
	return nil
}

// AddBrand creates a brand, appends it and reloads the brand list
func (c *Controller) AddBrand(ctx context.Context, name string) (*types.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("brand name is required")
	}
	created, err := c.gw.CreateBrand(ctx, types.Brand{Name: name})
	if err != nil {
		c.logger.Error("Error saving brand", zap.Error(err))
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	c.mu.Lock()
	c.brands = append(c.brands, *created)
	c.mu.Unlock()

	if err := c.LoadBrands(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// RenameBrand changes a brand name on the server and in the local list
func (c *Controller) RenameBrand(ctx context.Context, id int64, name string) (*types.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("brand name is required")
	}
	updated, err := c.gw.UpdateBrand(ctx, id, name)
	if err != nil {
		c.logger.Error("Error updating brand", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update brand: %w", err)
	}
	c.mu.Lock()
	for i := range c.brands {
		if c.brands[i].ID == id {
			c.brands[i] = *updated
		}
	}
	c.mu.Unlock()
	return updated, nil
}

// RemoveBrand deletes a brand and filters it out of the local list
func (c *Controller) RemoveBrand(ctx context.Context, id int64) error {
	if err := c.gw.DeleteBrand(ctx, id); err != nil {
		c.logger.Error("Error deleting brand", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	c.mu.Lock()
	out := c.brands[:0]
	for _, b := range c.brands {
		if b.ID != id {
			out = append(out, b)
		}
	}
	c.brands = out
	c.mu.Unlock()
	return nil
}

func replaceByID(cars []types.Car, car types.Car) {
	for i := range cars {
		if cars[i].HasID() && cars[i].IDValue() == car.IDValue() {
			cars[i] = car
		}
	}
}

func removeByID(cars []types.Car, id int64) []types.Car {
	out := make([]types.Car, 0, len(cars))
	for _, car := range cars {
		if car.HasID() && car.IDValue() == id {
			continue
		}
		out = append(out, car)
	}
	return out
}

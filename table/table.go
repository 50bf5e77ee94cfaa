package table

import (
	"context"
	"sync"
)

// State is the controller's load lifecycle phase.
type State uint8

const (
	// StateIdle means no load has been issued yet.
	StateIdle State = iota
	// StateLoading means a load is in flight; previous rows stay visible.
	StateLoading
	// StateLoaded means the most recent load succeeded.
	StateLoaded
	// StateError means the most recent load failed; the last good rows stay
	// visible.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Params are the loader's query inputs: staged filters plus the offset and
// limit the controller derives from its pagination.
type Params map[string]any

// Loader fetches one page of rows. It returns the rows, the total row count
// when the backend reports one (len(rows) otherwise), and any error.
type Loader[T any] func(ctx context.Context, params Params) ([]T, int, error)

// Pagination is the controller's page window.
type Pagination struct {
	Page     int
	PageSize int
	Total    int
}

// Snapshot is an immutable view of the controller at one point in time.
type Snapshot[T any] struct {
	State      State
	Rows       []T
	Pagination Pagination
	Filters    Params
	Err        error
}

const defaultPageSize = 20

// Option customizes a Controller.
type Option[T any] func(*Controller[T])

// WithPageSize sets the page window size. Values below one are ignored.
func WithPageSize[T any](size int) Option[T] {
	return func(c *Controller[T]) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithInitialFilters seeds the staged filter set.
func WithInitialFilters[T any](filters Params) Option[T] {
	return func(c *Controller[T]) {
		for k, v := range filters {
			c.filters[k] = v
		}
	}
}

// WithNotifier registers the error callback. Only the error of the current
// load reaches it; superseded failures are discarded silently.
func WithNotifier[T any](fn func(error)) Option[T] {
	return func(c *Controller[T]) {
		c.notifier = fn
	}
}

// WithOnChange registers a snapshot callback fired after every state
// transition. Callbacks run on the goroutine that completed the load and
// must not call back into the controller.
func WithOnChange[T any](fn func(Snapshot[T])) Option[T] {
	return func(c *Controller[T]) {
		c.onChange = fn
	}
}

// Controller drives one table: staged filters, a page window, and rows
// loaded through the loader. All methods are safe for concurrent use.
type Controller[T any] struct {
	loader   Loader[T]
	notifier func(error)
	onChange func(Snapshot[T])

	mu       sync.Mutex
	seq      uint64
	state    State
	rows     []T
	filters  Params
	page     int
	pageSize int
	total    int
	lastErr  error
}

// New creates a Controller over loader in the Idle state. Nothing loads
// until Reload or LoadPage is called.
func New[T any](loader Loader[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		loader:   loader,
		filters:  Params{},
		page:     1,
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a deep-enough copy of the current state: rows and filters
// are copied, row elements are shared.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	snap := Snapshot[T]{
		State: c.state,
		Pagination: Pagination{
			Page:     c.page,
			PageSize: c.pageSize,
			Total:    c.total,
		},
		Filters: make(Params, len(c.filters)),
		Err:     c.lastErr,
	}
	if c.rows != nil {
		snap.Rows = make([]T, len(c.rows))
		copy(snap.Rows, c.rows)
	}
	for k, v := range c.filters {
		snap.Filters[k] = v
	}
	return snap
}

// SetFilter merges one filter into the staged set without issuing a load.
// A nil value removes the key. The next Reload or LoadPage picks the staged
// set up.
func (c *Controller[T]) SetFilter(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value == nil {
		delete(c.filters, key)
		return
	}
	c.filters[key] = value
}

// SetFilters merges several filters at once, with the same staging semantics
// as SetFilter.
func (c *Controller[T]) SetFilters(filters Params) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range filters {
		if v == nil {
			delete(c.filters, k)
			continue
		}
		c.filters[k] = v
	}
}

// Reload issues a load for page one with the staged filters. It blocks until
// the loader returns; concurrent calls resolve last-issued-wins.
func (c *Controller[T]) Reload(ctx context.Context) {
	c.load(ctx, 1)
}

// LoadPage issues a load for the given page with the staged filters. Pages
// below one clamp to one.
func (c *Controller[T]) LoadPage(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}
	c.load(ctx, page)
}

func (c *Controller[T]) load(ctx context.Context, page int) {
	c.mu.Lock()
	c.seq++
	issued := c.seq
	c.state = StateLoading
	c.page = page
	params := make(Params, len(c.filters)+2)
	for k, v := range c.filters {
		params[k] = v
	}
	params["offset"] = (page - 1) * c.pageSize
	params["limit"] = c.pageSize
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.changed(snap)

	rows, total, err := c.loader(ctx, params)

	c.mu.Lock()
	if issued != c.seq {
		// Superseded by a later load; its completion owns the table now.
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.state = StateError
		c.lastErr = err
		snap = c.snapshotLocked()
		c.mu.Unlock()

		if c.notifier != nil {
			c.notifier(err)
		}
		c.changed(snap)
		return
	}

	c.state = StateLoaded
	c.rows = rows
	c.total = total
	c.lastErr = nil
	snap = c.snapshotLocked()
	c.mu.Unlock()

	c.changed(snap)
}

func (c *Controller[T]) changed(snap Snapshot[T]) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}

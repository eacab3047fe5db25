package listing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitaciones-portal/internal/model"
	"github.com/nurpe/licitaciones-portal/internal/region"
	"github.com/nurpe/licitaciones-portal/internal/tenderapi"
)

// ErrSuperseded is returned by Load when a newer load was issued while this
// one was in flight; its response was dropped.
var ErrSuperseded = errors.New("load superseded by a newer request")

type Fetcher interface {
	ListTenders(ctx context.Context, q tenderapi.Query) (*tenderapi.ListResult, error)
}

// Controller owns the filter state and the currently loaded page of one
// dashboard session. Loads are sequenced by generation: only the response
// to the most recently issued load is applied.
type Controller struct {
	fetcher  Fetcher
	log      zerolog.Logger
	pageSize int
	now      func() time.Time

	mu         sync.Mutex
	filters    model.FilterState
	items      []model.Tender
	total      int
	statistics *model.Statistics
	err        error
	loaded     bool
	loadedAt   time.Time
	generation uint64
	inFlight   int
}

func NewController(fetcher Fetcher, pageSize int, log zerolog.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Controller{
		fetcher:  fetcher,
		log:      log,
		pageSize: pageSize,
		now:      time.Now,
		filters:  model.DefaultFilterState(pageSize),
	}
}

// SetFilter updates one field, resets the page to 1 and reloads.
func (c *Controller) SetFilter(ctx context.Context, field model.FilterField, value string) error {
	c.mu.Lock()
	next := c.filters
	if err := ApplyField(&next, field, value); err != nil {
		c.mu.Unlock()
		return err
	}
	next.Page = 1
	c.filters = next
	c.mu.Unlock()
	return c.Load(ctx)
}

// Apply replaces every filter field with one reload. The page is reset to 1
// when any filter changed; otherwise next.Page is kept.
func (c *Controller) Apply(ctx context.Context, next model.FilterState) error {
	c.mu.Lock()
	if !next.SameFilters(c.filters) || next.Page < 1 {
		next.Page = 1
	}
	next.PageSize = c.pageSize
	c.filters = next
	c.mu.Unlock()
	return c.Load(ctx)
}

func (c *Controller) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.filters.Page = page
	c.mu.Unlock()
	return c.Load(ctx)
}

func (c *Controller) ClearFilters(ctx context.Context) error {
	c.mu.Lock()
	c.filters = model.DefaultFilterState(c.pageSize)
	c.mu.Unlock()
	return c.Load(ctx)
}

// Load fetches the page for the current filters. On failure the error is
// recorded and the previous page stays in place.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	query := c.query()
	c.inFlight++
	c.mu.Unlock()

	result, err := c.fetcher.ListTenders(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--

	if gen != c.generation {
		c.log.Debug().Uint64("generation", gen).Uint64("latest", c.generation).Msg("dropping stale listing response")
		return ErrSuperseded
	}
	if err != nil {
		c.err = err
		return err
	}

	c.items = result.Page.Items
	c.total = result.Page.Total
	c.statistics = result.Statistics
	c.err = nil
	c.loaded = true
	c.loadedAt = c.now()
	return nil
}

func (c *Controller) query() tenderapi.Query {
	return QueryFor(c.filters)
}

// QueryFor translates filter state into the remote query: region codes go
// out as the backend's region spelling and statuses as their label.
func QueryFor(f model.FilterState) tenderapi.Query {
	q := tenderapi.Query{
		DateFrom: f.DateFrom,
		DateTo:   f.DateTo,
		Page:     f.Page,
		Limit:    f.PageSize,
		Search:   f.Search,
	}
	if r, ok := region.ByCode(f.Region); ok {
		q.Region = r.APIName
	}
	if f.Status != model.StatusUnknown {
		q.Status = f.Status.Label()
	}
	return q
}

func (c *Controller) Filters() model.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Visible returns the fetched page narrowed by the local search term.
func (c *Controller) Visible() []model.Tender {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible()
}

func (c *Controller) visible() []model.Tender {
	out := make([]model.Tender, 0, len(c.items))
	for _, t := range c.items {
		if matches(t, c.filters.Search) {
			out = append(out, t)
		}
	}
	return out
}

// Find looks a tender up in the currently loaded page.
func (c *Controller) Find(id string) (model.Tender, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.items {
		if t.ID == id {
			return t, true
		}
	}
	return model.Tender{}, false
}

type Snapshot struct {
	Filters    model.FilterState
	Items      []model.Tender
	PageItems  int
	Total      int
	TotalPages int
	Statistics *model.Statistics
	Err        error
	Loaded     bool
	Loading    bool
	LoadedAt   time.Time
}

func (s Snapshot) HasPrev() bool { return s.Filters.Page > 1 }
func (s Snapshot) HasNext() bool { return s.Filters.Page < s.TotalPages }

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Filters:    c.filters,
		Items:      c.visible(),
		PageItems:  len(c.items),
		Total:      c.total,
		TotalPages: model.TotalPages(c.total, c.filters.PageSize),
		Statistics: c.statistics,
		Err:        c.err,
		Loaded:     c.loaded,
		Loading:    c.inFlight > 0,
		LoadedAt:   c.loadedAt,
	}
}

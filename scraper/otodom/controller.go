package otodom

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"otodom-scraper/config"
	"otodom-scraper/models"
	"otodom-scraper/observability"
	"otodom-scraper/storage"
	"otodom-scraper/utils"
)

// Session is the browser surface the controller drives.
type Session interface {
	PageSource
	Navigate(ctx context.Context, url string) error
	// WaitInteractable blocks until sel is visible and enabled, or timeout.
	WaitInteractable(ctx context.Context, sel string, timeout time.Duration) error
	Disabled(ctx context.Context, sel string) (bool, error)
	Click(ctx context.Context, sel string) error
	Close() error
}

// State is a step of the pagination state machine.
type State int

const (
	StateInit State = iota
	StateConsentPending
	StateSearching
	StateScrapingPage
	StateAdvancing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateConsentPending:
		return "consent-pending"
	case StateSearching:
		return "searching"
	case StateScrapingPage:
		return "scraping-page"
	case StateAdvancing:
		return "advancing"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Settings are the fixed navigation parameters of a run.
type Settings struct {
	StartURL     string
	PageCeiling  int // additional pages after the first
	WaitTimeout  time.Duration
	SearchSettle time.Duration
	PageSettle   time.Duration
}

// SettingsFromConfig copies the navigation parameters out of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		StartURL:     cfg.StartURL,
		PageCeiling:  cfg.PageCeiling,
		WaitTimeout:  cfg.WaitTimeout,
		SearchSettle: cfg.SearchSettle,
		PageSettle:   cfg.PageSettle,
	}
}

// PaginationState tracks where the run is.
type PaginationState struct {
	Page       int
	Ceiling    int
	Done       bool
	StopReason string
}

// CeilingReached reports whether no further page may be visited.
func (p *PaginationState) CeilingReached() bool {
	return p.Page >= 1+p.Ceiling
}

func (p *PaginationState) stop(reason string) {
	p.Done = true
	p.StopReason = reason
}

// ConsentError is returned when the consent barrier could not be dismissed.
type ConsentError struct {
	Err error
}

func (e *ConsentError) Error() string {
	return "consent not accepted: " + e.Err.Error()
}

func (e *ConsentError) Unwrap() error { return e.Err }

// Controller drives one sequential scrape run over a single session.
type Controller struct {
	settings  Settings
	session   Session
	store     storage.RecordWriter
	journal   storage.RecordJournal
	extractor *Extractor
	clock     utils.Clock
	metrics   *observability.Metrics
	logger    *utils.Logger
	runID     string

	pagination PaginationState
	summary    models.RunSummary
	released   bool
}

// Option customises a Controller.
type Option func(*Controller)

// WithJournal appends every extracted record to j before it is inserted.
func WithJournal(j storage.RecordJournal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithMetrics records outcomes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithClock replaces the settle clock.
func WithClock(clock utils.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithRunID sets the identifier attached to logs and the summary.
func WithRunID(id string) Option {
	return func(c *Controller) { c.runID = id }
}

// NewController creates a Controller. It takes ownership of session and
// store and closes both when the run ends.
func NewController(settings Settings, session Session, store storage.RecordWriter, logger *utils.Logger, opts ...Option) *Controller {
	c := &Controller{
		settings: settings,
		session:  session,
		store:    store,
		clock:    utils.RealClock{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runID == "" {
		c.runID = uuid.NewString()
	}
	if c.metrics == nil {
		c.metrics = observability.NewMetrics(prometheus.NewRegistry())
	}
	c.extractor = NewExtractor(c.logger)
	c.pagination = PaginationState{Page: 1, Ceiling: settings.PageCeiling}
	c.summary = models.RunSummary{RunID: c.runID}
	return c
}

// Run executes the state machine until Done. The returned error is non-nil
// only when the start page could not be loaded; the session and store are
// released in every case.
func (c *Controller) Run(ctx context.Context) (*models.RunSummary, error) {
	defer c.release()

	state := StateInit
	for state != StateDone {
		c.logger.Debug("[otodom] State %s (page %d)", state, c.pagination.Page)

		next, err := c.step(ctx, state)
		if err != nil {
			c.pagination.stop(err.Error())
			c.summary.StopReason = c.pagination.StopReason
			return &c.summary, err
		}
		state = next
	}

	c.release()
	c.summary.StopReason = c.pagination.StopReason
	c.logger.Info("[otodom] Scrape complete — %d pages, %d inserted, stop: %s",
		c.summary.Pages, c.summary.Inserted, c.summary.StopReason)
	return &c.summary, nil
}

// Pagination returns the current pagination state.
func (c *Controller) Pagination() PaginationState {
	return c.pagination
}

func (c *Controller) step(ctx context.Context, state State) (State, error) {
	switch state {
	case StateInit:
		c.logger.Info("[otodom] Loading %s", c.settings.StartURL)
		if err := c.session.Navigate(ctx, c.settings.StartURL); err != nil {
			return StateDone, fmt.Errorf("load %s: %w", c.settings.StartURL, err)
		}
		return StateConsentPending, nil

	case StateConsentPending:
		if err := c.acceptConsent(ctx); err != nil {
			// The barrier is best effort; the search still runs.
			c.logger.Warn("[otodom] Error accepting cookies: %v", err)
		} else {
			c.logger.Info("[otodom] Cookies accepted")
		}
		return StateSearching, nil

	case StateSearching:
		if err := c.submitSearch(ctx); err != nil {
			c.logger.Error("[otodom] Error submitting search: %v", err)
		}
		return StateScrapingPage, nil

	case StateScrapingPage:
		c.scrapeCurrentPage(ctx)
		return StateAdvancing, nil

	case StateAdvancing:
		if c.advance(ctx) {
			return StateScrapingPage, nil
		}
		return StateDone, nil
	}
	return StateDone, fmt.Errorf("unknown state %s", state)
}

func (c *Controller) acceptConsent(ctx context.Context) *ConsentError {
	if err := c.session.WaitInteractable(ctx, consentButtonXPath, c.settings.WaitTimeout); err != nil {
		return &ConsentError{Err: err}
	}
	if err := c.session.Click(ctx, consentButtonXPath); err != nil {
		return &ConsentError{Err: err}
	}
	return nil
}

func (c *Controller) submitSearch(ctx context.Context) error {
	if err := c.session.WaitInteractable(ctx, searchSubmitXPath, c.settings.WaitTimeout); err != nil {
		return fmt.Errorf("wait for search button: %w", err)
	}
	if err := c.session.Click(ctx, searchSubmitXPath); err != nil {
		return fmt.Errorf("click search button: %w", err)
	}
	return c.clock.Sleep(ctx, c.settings.SearchSettle)
}

func (c *Controller) scrapeCurrentPage(ctx context.Context) {
	page := c.pagination.Page
	c.summary.Pages++
	c.metrics.PagesScraped.Inc()

	res, err := c.extractor.ExtractPage(ctx, c.session)
	if err != nil {
		c.logger.Error("[otodom] Page %d: error finding elements: %v", page, err)
		return
	}

	c.logger.Info("[otodom] Page %d — found %d price, %d area, %d address elements",
		page, res.Prices, res.Areas, res.Addresses)

	c.summary.Dropped += res.Dropped
	c.metrics.RecordsDropped.Add(float64(res.Dropped))
	c.summary.Extracted += len(res.Records)
	c.metrics.RecordsExtracted.Add(float64(len(res.Records)))

	for _, rec := range res.Records {
		if c.journal != nil {
			if err := c.journal.Append(page, rec); err != nil {
				c.logger.Warn("[journal] Append failed: %v", err)
			}
		}

		id, err := c.store.Insert(ctx, rec)
		if err != nil {
			c.summary.InsertFailures++
			c.metrics.InsertFailures.Inc()
			c.logger.Error("[store] Error inserting data: %v", err)
			continue
		}
		c.summary.Inserted++
		c.metrics.RowsInserted.Inc()
		c.logger.Debug("[store] Inserted #%d price: %s, area: %s, voie: %s, city: %s",
			id, rec.Price, rec.Area, rec.Street, rec.City)
	}
}

// advance moves to the next page and reports whether it did. Every failure
// to find or use the next-page control ends pagination, so a transient
// fault here is indistinguishable from the last page.
func (c *Controller) advance(ctx context.Context) bool {
	p := &c.pagination

	if err := ctx.Err(); err != nil {
		p.stop(fmt.Sprintf("cancelled: %v", err))
		return false
	}
	if p.CeilingReached() {
		p.stop(fmt.Sprintf("page ceiling reached (%d)", p.Ceiling))
		return false
	}

	if err := c.session.WaitInteractable(ctx, nextPageXPath, c.settings.WaitTimeout); err != nil {
		c.logger.Info("[otodom] Error during pagination: %v", err)
		p.stop("no next page control")
		return false
	}
	disabled, err := c.session.Disabled(ctx, nextPageXPath)
	if err != nil || disabled {
		c.logger.Info("[otodom] No more pages available")
		p.stop("next page control disabled")
		return false
	}

	c.logger.Info("[otodom] Moving to page %d", p.Page+1)
	if err := c.session.Click(ctx, nextPageXPath); err != nil {
		c.logger.Info("[otodom] Error during pagination: %v", err)
		p.stop("next page click failed")
		return false
	}
	if err := c.clock.Sleep(ctx, c.settings.PageSettle); err != nil {
		p.stop(fmt.Sprintf("cancelled: %v", err))
		return false
	}

	p.Page++
	return true
}

// release closes the store and then the session, once.
func (c *Controller) release() {
	if c.released {
		return
	}
	c.released = true

	if err := c.store.Close(); err != nil {
		c.logger.Warn("[store] Close failed: %v", err)
	}
	if err := c.session.Close(); err != nil {
		c.logger.Warn("[browser] Close failed: %v", err)
	}
}

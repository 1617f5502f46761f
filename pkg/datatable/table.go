package datatable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// NoResultsText fills the single row rendered for an empty page
const NoResultsText = "No results."

// Lister fetches pages of one collection. *Resource satisfies it.
type Lister[T any] interface {
	Endpoint() string
	List(ctx context.Context, q url.Values) (*PageResult[T], error)
}

// Refresher invalidates a collection and reloads the visible page
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Column renders one field of a record
type Column[T any] struct {
	Key      string
	Title    string
	Sortable bool
	Value    func(rec T) string
}

// Header is a rendered column header
type Header struct {
	Key      string
	Title    string
	Sortable bool
	// Order is set on the column the table is sorted by
	Order Order
}

// Row is a rendered table row. An empty page renders one row whose single
// cell spans every column.
type Row struct {
	Cells []string
	Span  int
}

// View is a snapshot of the table for rendering
type View[T any] struct {
	Headers     []Header
	Rows        []Row
	Records     []T
	Meta        Meta
	State       State
	Loading     bool
	Placeholder bool
	Err         error
}

// TableConfig holds the dependencies of a Table
type TableConfig[T any] struct {
	Source      Lister[T]
	Columns     []Column[T]
	PageSize    int
	// Initial is the starting query state. The zero value starts on page 1
	// with PageSize.
	Initial     State
	Cache       *Cache
	Clock       Clock
	QuietPeriod time.Duration
	Notifier    Notifier
	Logger      *slog.Logger
}

// Table drives a paginated, sortable, searchable listing
type Table[T any] struct {
	source   Lister[T]
	columns  []Column[T]
	cache    *Cache
	debounce *Debouncer
	notifier Notifier
	logger   *slog.Logger

	mu          sync.Mutex
	state       State
	page        *PageResult[T]
	placeholder bool
	loading     bool
	err         error
}

// NewTable creates a table controller. Nothing is fetched until Load.
func NewTable[T any](cfg TableConfig[T]) *Table[T] {
	cache := cfg.Cache
	if cache == nil {
		cache = NewCache(DefaultStaleTime)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	state := cfg.Initial
	if state == (State{}) {
		state = NewState(cfg.PageSize)
	}
	return &Table[T]{
		source:   cfg.Source,
		columns:  cfg.Columns,
		cache:    cache,
		debounce: NewDebouncer(cfg.Clock, cfg.QuietPeriod),
		notifier: notifierOrDiscard(cfg.Notifier),
		logger:   logger,
		state:    clampPage(state),
	}
}

// Endpoint returns the collection this table lists
func (t *Table[T]) Endpoint() string {
	return t.source.Endpoint()
}

// State returns the current query state
func (t *Table[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Load fetches the current page
func (t *Table[T]) Load(ctx context.Context) error {
	return t.fetch(ctx)
}

// Dispatch applies action and fetches when the query changed
func (t *Table[T]) Dispatch(ctx context.Context, action Action) error {
	t.mu.Lock()
	before := t.state.Key()
	t.state = Reduce(t.state, action)
	changed := t.state.Key() != before
	t.mu.Unlock()

	if !changed {
		return nil
	}
	return t.fetch(ctx)
}

// Search records typed text and commits it once input has been quiet for
// the debounce period. Each call restarts the period.
func (t *Table[T]) Search(ctx context.Context, text string) {
	t.mu.Lock()
	t.state = Reduce(t.state, TypeSearch(text))
	t.mu.Unlock()

	t.debounce.Schedule(func() {
		if err := t.Dispatch(ctx, CommitSearch(text)); err != nil {
			t.logger.Debug("search fetch failed", slog.String("error", err.Error()))
		}
	})
}

// FlushSearch commits pending search text immediately
func (t *Table[T]) FlushSearch() bool {
	return t.debounce.Flush()
}

// Refresh invalidates every cached page of the endpoint and refetches the
// visible one
func (t *Table[T]) Refresh(ctx context.Context) error {
	t.cache.InvalidateEndpoint(t.Endpoint())
	return t.fetch(ctx)
}

func (t *Table[T]) fetch(ctx context.Context) error {
	endpoint := t.Endpoint()

	t.mu.Lock()
	state := t.state
	key := state.Key()
	if v, ok := t.cache.Get(endpoint, key); ok {
		if page, ok := v.(*PageResult[T]); ok {
			t.applyLocked(page)
			clamped := t.state.Key() != key
			t.mu.Unlock()
			if clamped {
				return t.fetch(ctx)
			}
			return nil
		}
	}
	t.loading = true
	if t.page == nil {
		if v, ok := t.cache.Placeholder(endpoint); ok {
			if page, ok := v.(*PageResult[T]); ok {
				t.page = page
			}
		}
	}
	t.placeholder = t.page != nil
	t.mu.Unlock()

	page, err := t.source.List(ctx, state.Query())

	t.mu.Lock()
	if err == nil {
		t.cache.Put(endpoint, key, page)
	}
	if t.state.Key() != key {
		// a newer query was issued while this one was in flight
		t.mu.Unlock()
		return nil
	}
	if err != nil {
		t.loading = false
		t.placeholder = false
		t.err = err
		t.mu.Unlock()

		t.logger.Warn("list fetch failed",
			slog.String("endpoint", endpoint),
			slog.String("query", key),
			slog.String("error", err.Error()))
		t.notifier.Notify(Notification{Level: LevelError, Message: errorMessage(err)})
		return err
	}
	t.applyLocked(page)
	clamped := t.state.Key() != key
	t.mu.Unlock()

	if clamped {
		// the requested page is past the end reported by the server
		return t.fetch(ctx)
	}
	return nil
}

func (t *Table[T]) applyLocked(page *PageResult[T]) {
	t.page = page
	t.loading = false
	t.placeholder = false
	t.err = nil
	t.state = Reduce(t.state, SyncMeta(page.Meta))
}

// View returns a rendering snapshot
func (t *Table[T]) View() View[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := View[T]{
		Headers:     t.headersLocked(),
		State:       t.state,
		Loading:     t.loading,
		Placeholder: t.placeholder,
		Err:         t.err,
	}
	if t.page != nil {
		v.Meta = t.page.Meta
		v.Records = append([]T(nil), t.page.Data...)
	}

	if len(v.Records) == 0 {
		span := len(t.columns)
		if span == 0 {
			span = 1
		}
		v.Rows = []Row{{Cells: []string{NoResultsText}, Span: span}}
		return v
	}

	v.Rows = make([]Row, 0, len(v.Records))
	for _, rec := range v.Records {
		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			if col.Value != nil {
				cells[i] = col.Value(rec)
			}
		}
		v.Rows = append(v.Rows, Row{Cells: cells, Span: 1})
	}
	return v
}

func (t *Table[T]) headersLocked() []Header {
	headers := make([]Header, len(t.columns))
	for i, col := range t.columns {
		headers[i] = Header{Key: col.Key, Title: col.Title, Sortable: col.Sortable}
		if col.Key == t.state.Sort {
			headers[i].Order = t.state.Order
		}
	}
	return headers
}

// errorMessage is the text shown to the operator for a failed request
func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Error()
	}
	return fmt.Sprintf("Request failed: %v", err)
}

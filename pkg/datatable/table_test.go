package datatable

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPeopleTable(t *testing.T, people Lister[person], clock Clock, notifier Notifier) *Table[person] {
	t.Helper()
	return NewTable(TableConfig[person]{
		Source:      people,
		Columns:     peopleColumns,
		Clock:       clock,
		QuietPeriod: 500 * time.Millisecond,
		Notifier:    notifier,
	})
}

func TestTable_Load_RendersRows(t *testing.T) {
	t.Parallel()

	_, srv := newFakeAPI(t, 3)
	table := newPeopleTable(t, newPeople(t, srv), &fakeClock{}, nil)
	require.NoError(t, table.Load(context.Background()))

	v := table.View()
	require.Len(t, v.Rows, 3)
	assert.Equal(t, []string{"1", "Person 01", "p1@example.com"}, v.Rows[0].Cells)
	assert.Equal(t, 1, v.Rows[0].Span)
	assert.Len(t, v.Records, 3)
	assert.Equal(t, int64(3), v.Meta.Total)
	assert.False(t, v.Loading)
	assert.NoError(t, v.Err)
}

func TestTable_EmptyPage_SingleNoResultsRow(t *testing.T) {
	t.Parallel()

	_, srv := newFakeAPI(t, 0)
	table := newPeopleTable(t, newPeople(t, srv), &fakeClock{}, nil)
	require.NoError(t, table.Load(context.Background()))

	v := table.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, []string{NoResultsText}, v.Rows[0].Cells)
	assert.Equal(t, len(peopleColumns), v.Rows[0].Span)
}

func TestTable_Pagination_LastPageHasRemainder(t *testing.T) {
	t.Parallel()

	_, srv := newFakeAPI(t, 25)
	table := newPeopleTable(t, newPeople(t, srv), &fakeClock{}, nil)
	ctx := context.Background()
	require.NoError(t, table.Load(ctx))
	require.NoError(t, table.Dispatch(ctx, LastPage()))

	v := table.View()
	assert.Equal(t, 3, v.Meta.LastPage)
	assert.Equal(t, 3, v.State.Page)
	assert.Len(t, v.Rows, 5)
	assert.Equal(t, "Person 21", v.Rows[0].Cells[1])
}

func TestTable_ToggleSort_RequestsDescending(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t, 25)
	table := newPeopleTable(t, newPeople(t, srv), &fakeClock{}, nil)
	ctx := context.Background()
	require.NoError(t, table.Load(ctx))

	require.NoError(t, table.Dispatch(ctx, ToggleSort("name")))
	require.NoError(t, table.Dispatch(ctx, ToggleSort("name")))

	q := api.lastRequest().URL.Query()
	assert.Equal(t, "name", q.Get("sort"))
	assert.Equal(t, "desc", q.Get("order"))

	v := table.View()
	assert.Equal(t, "Person 25", v.Rows[0].Cells[1])
	assert.Equal(t, Desc, v.Headers[1].Order)
	assert.Empty(t, v.Headers[2].Order)
}

func TestTable_Search_TypingWithinWindowSendsOneQuery(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t, 5)
	clock := &fakeClock{}
	table := newPeopleTable(t, newPeople(t, srv), clock, nil)
	ctx := context.Background()

	table.Search(ctx, "Jane")
	clock.Advance(200 * time.Millisecond)
	table.Search(ctx, "Jan")
	assert.Equal(t, "Jan", table.State().PendingSearch)
	assert.Empty(t, api.Requests(), "no query inside the quiet period")

	clock.Advance(500 * time.Millisecond)

	assert.Equal(t, []string{"GET /people?page=1&pageSize=10&search=Jan"}, api.Requests())
	assert.Equal(t, "Jan", table.State().Search)
}

func TestTable_Search_ResetsToFirstPage(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t, 25)
	clock := &fakeClock{}
	table := newPeopleTable(t, newPeople(t, srv), clock, nil)
	ctx := context.Background()
	require.NoError(t, table.Load(ctx))
	require.NoError(t, table.Dispatch(ctx, SetPage(3)))

	table.Search(ctx, "person 1")
	require.True(t, table.FlushSearch())

	q := api.lastRequest().URL.Query()
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "person 1", q.Get("search"))
	assert.Len(t, table.View().Records, 10)
}

func TestTable_CachedPageNotRefetched(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t, 25)
	table := newPeopleTable(t, newPeople(t, srv), &fakeClock{}, nil)
	ctx := context.Background()
	require.NoError(t, table.Load(ctx))
	require.NoError(t, table.Dispatch(ctx, NextPage()))
	require.NoError(t, table.Dispatch(ctx, PrevPage()))

	assert.Len(t, api.Requests(), 2)
	assert.Equal(t, "Person 01", table.View().Rows[0].Cells[1])

	// no-op transitions never fetch
	require.NoError(t, table.Dispatch(ctx, FirstPage()))
	assert.Len(t, api.Requests(), 2)
}

func TestTable_Refresh_BypassesCache(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t, 2)
	table := newPeopleTable(t, newPeople(t, srv), &fakeClock{}, nil)
	ctx := context.Background()
	require.NoError(t, table.Load(ctx))

	api.mu.Lock()
	api.records[1].Name = "Aaron"
	api.mu.Unlock()

	require.NoError(t, table.Refresh(ctx))
	assert.Len(t, api.Requests(), 2)
	rows := table.View().Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Aaron", rows[0].Cells[1], "renamed record sorts first after refresh")
	assert.Equal(t, "Person 01", rows[1].Cells[1])
}

func TestTable_FetchError_KeepsRowsAndNotifies(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t, 25)
	rec := &Recorder{}
	table := newPeopleTable(t, newPeople(t, srv), &fakeClock{}, rec)
	ctx := context.Background()
	require.NoError(t, table.Load(ctx))

	api.mu.Lock()
	api.failList = true
	api.mu.Unlock()

	err := table.Dispatch(ctx, NextPage())
	require.Error(t, err)

	v := table.View()
	assert.Equal(t, "Person 01", v.Rows[0].Cells[1], "prior rows stay visible")
	assert.Error(t, v.Err)
	assert.False(t, v.Loading)

	n, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "database unavailable", n.Message)
}

func TestTable_PageClampedAfterRecordsRemoved(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t, 25)
	table := newPeopleTable(t, newPeople(t, srv), &fakeClock{}, nil)
	ctx := context.Background()
	require.NoError(t, table.Load(ctx))
	require.NoError(t, table.Dispatch(ctx, LastPage()))

	api.mu.Lock()
	api.records = api.records[:12]
	api.mu.Unlock()

	require.NoError(t, table.Refresh(ctx))

	v := table.View()
	assert.Equal(t, 2, v.State.Page)
	assert.Len(t, v.Records, 2)
	assert.Equal(t, "GET /people?page=2&pageSize=10", api.Requests()[len(api.Requests())-1])
}

func TestTable_CachedPagePastEndIsClamped(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t, 25)
	cache := NewCache(time.Minute)
	open := func() *Table[person] {
		return NewTable(TableConfig[person]{
			Source:  newPeople(t, srv),
			Columns: peopleColumns,
			Initial: State{Page: 5, PageSize: 10},
			Cache:   cache,
			Clock:   &fakeClock{},
		})
	}
	ctx := context.Background()

	first := open()
	require.NoError(t, first.Load(ctx))
	assert.Equal(t, []string{
		"GET /people?page=5&pageSize=10",
		"GET /people?page=3&pageSize=10",
	}, api.Requests())

	second := open()
	require.NoError(t, second.Load(ctx))

	v := second.View()
	assert.Equal(t, 3, v.State.Page)
	assert.Len(t, v.Records, 5, "rows belong to the clamped page, not the cached empty one")
	assert.Len(t, api.Requests(), 2, "both pages come from the cache")
}

// gatedLister blocks List until released so in-flight state can be observed
type gatedLister struct {
	inner   Lister[person]
	entered chan struct{}
	release chan struct{}
}

func (g *gatedLister) Endpoint() string { return g.inner.Endpoint() }

func (g *gatedLister) List(ctx context.Context, q url.Values) (*PageResult[person], error) {
	g.entered <- struct{}{}
	<-g.release
	return g.inner.List(ctx, q)
}

func TestTable_PlaceholderWhileLoading(t *testing.T) {
	t.Parallel()

	_, srv := newFakeAPI(t, 25)
	gated := &gatedLister{
		inner:   newPeople(t, srv),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	table := newPeopleTable(t, gated, &fakeClock{}, nil)
	ctx := context.Background()

	go func() { <-gated.entered; gated.release <- struct{}{} }()
	require.NoError(t, table.Load(ctx))

	done := make(chan error, 1)
	go func() { done <- table.Dispatch(ctx, NextPage()) }()
	<-gated.entered

	v := table.View()
	assert.True(t, v.Loading)
	assert.True(t, v.Placeholder)
	assert.Equal(t, "Person 01", v.Rows[0].Cells[1], "previous page shown while loading")

	gated.release <- struct{}{}
	require.NoError(t, <-done)

	v = table.View()
	assert.False(t, v.Loading)
	assert.False(t, v.Placeholder)
	assert.Equal(t, "Person 11", v.Rows[0].Cells[1])
}

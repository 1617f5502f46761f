package datatable

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// ============================================================================
// Fake Clock
// ============================================================================

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs every timer that came due
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// Active returns the number of timers neither stopped nor fired
func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// ============================================================================
// Fake API
// ============================================================================

type person struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// fakeAPI serves /people with the list envelope, 422 problems and 204
// deletes
type fakeAPI struct {
	mu       sync.Mutex
	nextID   int64
	records  []person
	requests []*http.Request
	bodies   []map[string]interface{}
	failList bool
}

func newFakeAPI(t *testing.T, n int) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{}
	for i := 1; i <= n; i++ {
		api.nextID++
		api.records = append(api.records, person{
			ID:    api.nextID,
			Name:  "Person " + pad(i),
			Email: "p" + strconv.Itoa(i) + "@example.com",
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /people", api.list)
	mux.HandleFunc("POST /people", api.create)
	mux.HandleFunc("PUT /people/{id}", api.update)
	mux.HandleFunc("DELETE /people/{id}", api.remove)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.requests = append(api.requests, r.Clone(r.Context()))
		api.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return api, srv
}

func pad(i int) string {
	if i < 10 {
		return "0" + strconv.Itoa(i)
	}
	return strconv.Itoa(i)
}

// Requests returns "METHOD /path?query" for every request received
func (a *fakeAPI) Requests() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.requests))
	for i, r := range a.requests {
		out[i] = r.Method + " " + r.URL.RequestURI()
	}
	return out
}

func (a *fakeAPI) lastRequest() *http.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		return nil
	}
	return a.requests[len(a.requests)-1]
}

func (a *fakeAPI) resetRequests() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = nil
}

func (a *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.failList {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"title": "Service Unavailable", "detail": "database unavailable",
		})
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("pageSize"))
	if size < 1 {
		size = 10
	}
	search := strings.ToLower(q.Get("search"))

	var matched []person
	for _, p := range a.records {
		if search == "" || strings.Contains(strings.ToLower(p.Name), search) || strings.Contains(p.Email, search) {
			matched = append(matched, p)
		}
	}
	desc := q.Get("order") == "desc"
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return matched[i].Name > matched[j].Name
		}
		return matched[i].Name < matched[j].Name
	})

	total := len(matched)
	last := (total + size - 1) / size
	if last < 1 {
		last = 1
	}
	start := (page - 1) * size
	data := []person{}
	if start < total {
		end := start + size
		if end > total {
			end = total
		}
		data = matched[start:end]
	}

	body := map[string]interface{}{
		"data":         data,
		"current_page": page,
		"last_page":    last,
		"from":         nil,
		"to":           nil,
		"total":        total,
		"per_page":     size,
	}
	if len(data) > 0 {
		body["from"] = start + 1
		body["to"] = start + len(data)
	}
	writeJSON(w, http.StatusOK, body)
}

func (a *fakeAPI) decode(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	var in map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"detail": "Invalid request body"})
		return nil, false
	}
	a.bodies = append(a.bodies, in)

	name, _ := in["name"].(string)
	email, _ := in["email"].(string)
	if name == "boom" {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"title": "Internal Server Error", "detail": "An unexpected error occurred",
		})
		return nil, false
	}
	if !strings.Contains(email, "@") {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"message": "Invalid email address",
			"errors":  map[string][]string{"email": {"Invalid email address", "second message"}},
		})
		return nil, false
	}
	return in, true
}

func (a *fakeAPI) create(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	in, ok := a.decode(w, r)
	if !ok {
		return
	}
	a.nextID++
	p := person{ID: a.nextID, Name: in["name"].(string), Email: in["email"].(string)}
	a.records = append(a.records, p)
	writeJSON(w, http.StatusCreated, p)
}

func (a *fakeAPI) update(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	in, ok := a.decode(w, r)
	if !ok {
		return
	}
	for i := range a.records {
		if a.records[i].ID == id {
			a.records[i].Name = in["name"].(string)
			a.records[i].Email = in["email"].(string)
			writeJSON(w, http.StatusOK, a.records[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]interface{}{"detail": "Person not found"})
}

func (a *fakeAPI) remove(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	for i := range a.records {
		if a.records[i].ID == id {
			a.records = append(a.records[:i], a.records[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]interface{}{"detail": "Person not found"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newPeople(t *testing.T, srv *httptest.Server, opts ...Option) *Resource[person] {
	t.Helper()
	client, err := NewClient(srv.URL, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewResource[person](client, "people")
}

var peopleColumns = []Column[person]{
	{Key: "id", Title: "ID", Value: func(p person) string { return strconv.FormatInt(p.ID, 10) }},
	{Key: "name", Title: "Name", Sortable: true, Value: func(p person) string { return p.Name }},
	{Key: "email", Title: "Email", Sortable: true, Value: func(p person) string { return p.Email }},
}

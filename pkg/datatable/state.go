package datatable

import (
	"net/url"
	"strconv"
	"strings"
)

// Order is a sort direction
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// DefaultPageSize matches the server's default page size
const DefaultPageSize = 10

// State is the query state of one table instance. It is a value: every
// transition goes through Reduce and returns a new State.
type State struct {
	Page     int
	PageSize int
	Sort     string
	Order    Order
	// Search is the committed search text sent to the server
	Search string
	// PendingSearch is what the operator has typed but not yet committed
	PendingSearch string
	// LastPage is the last page reported by the server, 0 until known
	LastPage int
}

// NewState returns the initial state for a table
func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{Page: 1, PageSize: pageSize}
}

// Query returns the list parameters for the state. Unset values are
// omitted so the server applies its defaults.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Page > 0 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(s.PageSize))
	}
	if s.Sort != "" {
		q.Set("sort", s.Sort)
		order := s.Order
		if order == "" {
			order = Asc
		}
		q.Set("order", string(order))
	}
	if s.Search != "" {
		q.Set("search", s.Search)
	}
	return q
}

// Key returns a stable cache key for the query parameters
func (s State) Key() string {
	// url.Values.Encode sorts by key
	return s.Query().Encode()
}

// Action is a state transition
type Action interface {
	apply(s State) State
}

type actionFunc func(s State) State

func (f actionFunc) apply(s State) State { return f(s) }

// Reduce applies a to s
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return clampPage(a.apply(s))
}

func clampPage(s State) State {
	if s.Page < 1 {
		s.Page = 1
	}
	if s.LastPage > 0 && s.Page > s.LastPage {
		s.Page = s.LastPage
	}
	return s
}

// SetPage moves to page n
func SetPage(n int) Action {
	return actionFunc(func(s State) State {
		s.Page = n
		return s
	})
}

// NextPage moves forward one page
func NextPage() Action {
	return actionFunc(func(s State) State {
		s.Page++
		return s
	})
}

// PrevPage moves back one page
func PrevPage() Action {
	return actionFunc(func(s State) State {
		s.Page--
		return s
	})
}

// FirstPage moves to page 1
func FirstPage() Action {
	return SetPage(1)
}

// LastPage moves to the last known page. It is a no-op until the server
// has reported one.
func LastPage() Action {
	return actionFunc(func(s State) State {
		if s.LastPage > 0 {
			s.Page = s.LastPage
		}
		return s
	})
}

// SetPageSize changes the page size and returns to the first page
func SetPageSize(n int) Action {
	return actionFunc(func(s State) State {
		if n <= 0 {
			n = DefaultPageSize
		}
		if n != s.PageSize {
			s.PageSize = n
			s.LastPage = 0
		}
		s.Page = 1
		return s
	})
}

// ToggleSort sorts by column. A new column starts ascending; clicking the
// current column flips the direction.
func ToggleSort(column string) Action {
	return actionFunc(func(s State) State {
		if s.Sort == column && s.Order == Asc {
			s.Order = Desc
		} else {
			s.Sort = column
			s.Order = Asc
		}
		return s
	})
}

// TypeSearch records typed text without changing the query
func TypeSearch(text string) Action {
	return actionFunc(func(s State) State {
		s.PendingSearch = text
		return s
	})
}

// CommitSearch makes text the active search and returns to the first page
func CommitSearch(text string) Action {
	return actionFunc(func(s State) State {
		text = strings.TrimSpace(text)
		s.PendingSearch = text
		if text != s.Search {
			s.Search = text
			s.LastPage = 0
		}
		s.Page = 1
		return s
	})
}

// SyncMeta records the page shape reported by the server
func SyncMeta(m Meta) Action {
	return actionFunc(func(s State) State {
		if m.LastPage > 0 {
			s.LastPage = m.LastPage
		}
		return s
	})
}

// Reset clears sort and search and returns to the first page, keeping the
// page size
func Reset() Action {
	return actionFunc(func(s State) State {
		return NewState(s.PageSize)
	})
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/forgo/backoffice/api/internal/model"
)

// maxBodyBytes caps request bodies decoded by DecodeJSON
const maxBodyBytes = 1 << 20

// DataResponse wraps a successful response with optional HATEOAS links
type DataResponse struct {
	Data  interface{}       `json:"data"`
	Links map[string]string `json:"_links,omitempty"`
}

// PaginatedResponse is the length-aware page envelope admin tables consume
type PaginatedResponse struct {
	Data         interface{} `json:"data"`
	CurrentPage  int         `json:"current_page"`
	LastPage     int         `json:"last_page"`
	From         *int        `json:"from"`
	To           *int        `json:"to"`
	Total        int64       `json:"total"`
	PerPage      int         `json:"per_page"`
	Path         string      `json:"path"`
	FirstPageURL string      `json:"first_page_url"`
	LastPageURL  string      `json:"last_page_url"`
	NextPageURL  *string     `json:"next_page_url"`
	PrevPageURL  *string     `json:"prev_page_url"`
}

// NewPaginatedResponse builds the envelope for page. Page links keep the
// request's other query parameters so search and sort survive navigation.
func NewPaginatedResponse[T any](r *http.Request, page *model.Page[T]) PaginatedResponse {
	items := page.Items
	if items == nil {
		items = []T{}
	}

	path := requestPath(r)
	query := r.URL.Query()
	pageURL := func(n int) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(n))
		return path + "?" + q.Encode()
	}

	last := page.LastPage()
	resp := PaginatedResponse{
		Data:         items,
		CurrentPage:  page.Page,
		LastPage:     last,
		From:         page.From(),
		To:           page.To(),
		Total:        page.Total,
		PerPage:      page.PageSize,
		Path:         path,
		FirstPageURL: pageURL(1),
		LastPageURL:  pageURL(last),
	}
	if page.Page < last {
		next := pageURL(page.Page + 1)
		resp.NextPageURL = &next
	}
	if page.Page > 1 {
		prev := pageURL(page.Page - 1)
		resp.PrevPageURL = &prev
	}
	return resp
}

func requestPath(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.Path)
}

// ParseListParams reads search, sort, order, page and pageSize from the
// query string. Non-numeric page values are left zero for Normalize.
func ParseListParams(r *http.Request) model.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	return model.ListParams{
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
		Page:     page,
		PageSize: pageSize,
	}
}

// ParseID reads a positive integer path parameter
func ParseID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteData writes a successful data response
func WriteData(w http.ResponseWriter, status int, data interface{}, links map[string]string) {
	response := DataResponse{
		Data:  data,
		Links: links,
	}
	WriteJSON(w, status, response)
}

// WriteError writes an error response using RFC 9457 Problem Details
func WriteError(w http.ResponseWriter, err *model.ProblemDetails) {
	err.WriteJSON(w)
}

// DecodeJSON decodes a JSON request body into the given struct.
// Unknown fields are ignored; only the target's fields are ever read.
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	return nil
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

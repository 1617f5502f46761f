package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/forgo/backoffice/api/pkg/datatable"
)

func headerTitle(h datatable.Header) string {
	title := strings.ToUpper(h.Title)
	switch h.Order {
	case datatable.Asc:
		title += " (asc)"
	case datatable.Desc:
		title += " (desc)"
	}
	return title
}

// renderTable writes the view as aligned columns followed by a page summary
func renderTable[T any](w io.Writer, v datatable.View[T]) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	titles := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		titles[i] = headerTitle(h)
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))

	for _, row := range v.Rows {
		if row.Span > 1 {
			fmt.Fprintln(tw, row.Cells[0])
			continue
		}
		fmt.Fprintln(tw, strings.Join(row.Cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	m := v.Meta
	if m.From == nil || m.To == nil {
		_, err := fmt.Fprintf(w, "\nShowing 0 results (page %d of %d)\n", v.State.Page, max(m.LastPage, 1))
		return err
	}
	_, err := fmt.Fprintf(w, "\nShowing %d to %d of %d results (page %d of %d)\n",
		*m.From, *m.To, m.Total, m.CurrentPage, m.LastPage)
	return err
}

// renderRecord writes one record as label/value pairs
func renderRecord[T any](w io.Writer, columns []datatable.Column[T], rec T) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, col := range columns {
		if col.Value == nil {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", col.Title, col.Value(rec))
	}
	return tw.Flush()
}

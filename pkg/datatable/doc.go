// Package datatable implements the paginated table and modal form used by
// the back-office consoles, without any rendering.
//
// A Table owns an immutable State that changes only through Reduce. Each
// change that alters the query fetches the page through a Lister (usually
// a *Resource) unless the Cache already holds a fresh copy. Search input
// is debounced: TypeSearch records keystrokes and CommitSearch runs once
// the quiet period passes without further input.
//
// FormDialog and DeleteConfirmation perform mutations. On success they
// notify, then call Refresh on the owning collection, which drops every
// cached page of the endpoint and refetches the visible one.
//
// # Example Usage
//
//	client, _ := datatable.NewClient("http://localhost:8080")
//	customers := datatable.NewResource[model.Customer](client, "/customers")
//	table := datatable.NewTable(datatable.TableConfig[model.Customer]{
//	    Source:  customers,
//	    Columns: columns,
//	})
//	_ = table.Load(ctx)
//	_ = table.Dispatch(ctx, datatable.ToggleSort("name"))
//	view := table.View()
package datatable

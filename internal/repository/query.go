package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/forgo/backoffice/api/internal/database"
	"github.com/forgo/backoffice/api/internal/model"
)

// likeEscaper escapes LIKE wildcards so user input matches literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased %term% LIKE pattern
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// searchScope restricts q to rows where any column contains term,
// case-insensitively. LOWER/LIKE behaves the same on PostgreSQL and SQLite.
func searchScope(term string, columns []string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return q
		}
		pattern := containsPattern(term)
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
			args[i] = pattern
		}
		return q.Where(strings.Join(clauses, " OR "), args...)
	}
}

// orderClause renders the ORDER BY for already-normalized params.
// id breaks ties so paging is stable.
func orderClause(params model.ListParams) string {
	if params.Sort == "id" {
		return "id " + params.Order
	}
	return fmt.Sprintf("%s %s, id %s", params.Sort, params.Order, model.SortAsc)
}

// paginate counts the filtered rows and loads one page of them
func paginate[T any](ctx context.Context, db *gorm.DB, params model.ListParams, searchColumns []string) (*model.Page[T], error) {
	var zero T
	q := db.WithContext(ctx).Model(&zero).Scopes(searchScope(params.Search, searchColumns))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, database.TranslateError(err)
	}

	items := make([]T, 0, params.PageSize)
	if total > int64(params.Offset()) {
		err := q.Order(orderClause(params)).
			Limit(params.PageSize).
			Offset(params.Offset()).
			Find(&items).Error
		if err != nil {
			return nil, database.TranslateError(err)
		}
	}

	return &model.Page[T]{
		Items:    items,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// checkAffected turns a write that matched no rows into ErrNotFound
func checkAffected(res *gorm.DB) error {
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

package pipeline

import (
	"sort"

	"github.com/AnTengye/contractdesk/backend/model"
)

// SortColumn is the column the table is ordered by for predicates p
func SortColumn(p Predicates) DateColumn {
	if p.Year.Active() && p.Year.Column.Valid() {
		return p.Year.Column
	}
	return DefaultSortColumn
}

// Sort orders records newest first by column, in place. Ties keep their
// relative order; empty and malformed dates sort last.
func Sort(records []model.Contract, column DateColumn) []model.Contract {
	if !column.Valid() {
		column = DefaultSortColumn
	}
	sort.SliceStable(records, func(i, j int) bool {
		return column.Of(&records[i]).Compare(column.Of(&records[j])) > 0
	})
	return records
}

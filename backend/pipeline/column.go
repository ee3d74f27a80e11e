package pipeline

import (
	"fmt"

	"github.com/AnTengye/contractdesk/backend/model"
)

// DateColumn names one of the date-bearing contract fields
type DateColumn string

const (
	ColumnNone            DateColumn = ""
	ColumnStartDate       DateColumn = "start_date"
	ColumnEndDate         DateColumn = "end_date"
	ColumnApplicationDate DateColumn = "app_date"
	ColumnFinalDate       DateColumn = "final_date"
)

// DateColumns lists every DateColumn in table order
var DateColumns = []DateColumn{ColumnStartDate, ColumnEndDate, ColumnApplicationDate, ColumnFinalDate}

// DefaultSortColumn orders the table when no year filter is active
const DefaultSortColumn = ColumnStartDate

// ParseDateColumn accepts the column names used by the API
func ParseDateColumn(s string) (DateColumn, error) {
	switch DateColumn(s) {
	case ColumnNone:
		return ColumnNone, nil
	case ColumnStartDate, ColumnEndDate, ColumnApplicationDate, ColumnFinalDate:
		return DateColumn(s), nil
	}
	switch s {
	case "startDate":
		return ColumnStartDate, nil
	case "endDate":
		return ColumnEndDate, nil
	case "appDate":
		return ColumnApplicationDate, nil
	case "finalDate":
		return ColumnFinalDate, nil
	}
	return ColumnNone, fmt.Errorf("unknown date column %q", s)
}

// Valid reports whether c is one of the known date fields
func (c DateColumn) Valid() bool {
	switch c {
	case ColumnStartDate, ColumnEndDate, ColumnApplicationDate, ColumnFinalDate:
		return true
	}
	return false
}

// Of returns the value of column c in record r
func (c DateColumn) Of(r *model.Contract) model.Date {
	switch c {
	case ColumnStartDate:
		return r.StartDate
	case ColumnEndDate:
		return r.EndDate
	case ColumnApplicationDate:
		return r.ApplicationDate
	case ColumnFinalDate:
		return r.FinalDate
	}
	return model.Date{}
}

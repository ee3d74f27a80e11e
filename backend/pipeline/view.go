package pipeline

import (
	"fmt"
	"strings"

	"github.com/AnTengye/contractdesk/backend/model"
)

// View is the navigation-level selection applied before the table predicates
type View string

const (
	ViewAll      View = "ALL"
	ViewHome     View = "HOME"
	ViewInvalid  View = "INVALID"
	ViewUpcoming View = "UPCOMING"
	ViewExpired  View = "EXPIRED"
	ViewOverdue  View = "OVERDUE"
)

// ParseView maps an API value to a View; empty means ALL
func ParseView(s string) (View, error) {
	v := View(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case "":
		return ViewAll, nil
	case ViewAll, ViewHome, ViewInvalid, ViewUpcoming, ViewExpired, ViewOverdue:
		return v, nil
	}
	return ViewAll, fmt.Errorf("unknown view %q", s)
}

// Title is the heading shown above the table
func (v View) Title() string {
	switch v {
	case ViewHome:
		return "合約管理-有效合約"
	case ViewUpcoming:
		return "即期合約 (三個月內到期)"
	case ViewExpired:
		return "到期合約 (已屆期)"
	case ViewOverdue:
		return "逾期合約 (未繳回檔案/備註)"
	case ViewInvalid:
		return "無效合約 (已停用)"
	default:
		return "合約清單"
	}
}

// Includes reports whether c belongs to view v on the given day
func (v View) Includes(c *model.Contract, today model.Date) bool {
	switch v {
	case ViewHome:
		return !c.Disabled && c.EndDate.After(today)
	case ViewInvalid:
		return c.Disabled
	case ViewUpcoming:
		return Upcoming(c, today)
	case ViewExpired:
		return Expired(c, today)
	case ViewOverdue:
		return OverdueByEndDate(c, today)
	default:
		return true
	}
}

// SubmissionProjection lists the records overdue by the 45-day submission
// rule. The due date is shown in the end date column and the application and
// final dates are blanked.
func SubmissionProjection(records []model.Contract, today model.Date) []model.Contract {
	result := make([]model.Contract, 0)
	for i := range records {
		c := &records[i]
		if !OverdueBySubmission45d(c, today) {
			continue
		}
		row := c.Clone()
		row.EndDate = SubmissionDue(c)
		row.ApplicationDate = model.Date{}
		row.FinalDate = model.Date{}
		result = append(result, row)
	}
	return result
}

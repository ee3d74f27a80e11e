// Package pipeline derives the rendered contract table from the raw record
// set: filter, then sort, then paginate. Every stage is a pure function of
// its inputs; the current date is passed in explicitly.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/AnTengye/contractdesk/backend/model"
)

// Status is the status-bucket predicate
type Status string

const (
	StatusAll      Status = "ALL"
	StatusUpcoming Status = "UPCOMING"
	StatusExpired  Status = "EXPIRED"
	StatusOverdue  Status = "OVERDUE"
)

// RenewalFilter is the renewal predicate
type RenewalFilter string

const (
	RenewalAll RenewalFilter = "ALL"
	RenewalY   RenewalFilter = "Y"
	RenewalN   RenewalFilter = "N"
)

// AttachmentFilter is the attachment-presence predicate
type AttachmentFilter string

const (
	AttachmentAll  AttachmentFilter = "ALL"
	AttachmentHas  AttachmentFilter = "HAS"
	AttachmentNone AttachmentFilter = "NONE"
)

// DepartmentAll disables the department predicate
const DepartmentAll = "ALL"

// UpcomingWindowMonths is how far ahead the UPCOMING bucket looks
const UpcomingWindowMonths = 3

// YearFilter keeps records whose Column value falls in Year. The zero value
// is inactive.
type YearFilter struct {
	Column DateColumn `json:"column"`
	Year   string     `json:"year"`
}

// Active reports whether the filter constrains anything
func (y YearFilter) Active() bool {
	return y.Column != ColumnNone && y.Year != "" && y.Year != "ALL"
}

// Predicates is the full set of table filters. The zero value matches every
// record.
type Predicates struct {
	Status     Status           `json:"status"`
	Renewal    RenewalFilter    `json:"renewal"`
	Department string           `json:"dept"`
	Year       YearFilter       `json:"year"`
	Attachment AttachmentFilter `json:"file"`
	Search     string           `json:"q"`
}

// Normalize maps empty values to their ALL form so equal filters compare equal
func (p Predicates) Normalize() Predicates {
	if p.Status == "" {
		p.Status = StatusAll
	}
	if p.Renewal == "" {
		p.Renewal = RenewalAll
	}
	if p.Department == "" {
		p.Department = DepartmentAll
	}
	if p.Attachment == "" {
		p.Attachment = AttachmentAll
	}
	if !p.Year.Active() {
		p.Year = YearFilter{}
	}
	return p
}

// Validate rejects values outside the closed enumerations
func (p Predicates) Validate() error {
	p = p.Normalize()
	switch p.Status {
	case StatusAll, StatusUpcoming, StatusExpired, StatusOverdue:
	default:
		return fmt.Errorf("unknown status %q", p.Status)
	}
	switch p.Renewal {
	case RenewalAll, RenewalY, RenewalN:
	default:
		return fmt.Errorf("unknown renewal filter %q", p.Renewal)
	}
	switch p.Attachment {
	case AttachmentAll, AttachmentHas, AttachmentNone:
	default:
		return fmt.Errorf("unknown attachment filter %q", p.Attachment)
	}
	if p.Year.Active() {
		if !p.Year.Column.Valid() {
			return fmt.Errorf("unknown date column %q", p.Year.Column)
		}
		if !isYear(p.Year.Year) {
			return fmt.Errorf("year must be four digits, got %q", p.Year.Year)
		}
	}
	return nil
}

// Query is one evaluation of the filter engine
type Query struct {
	Today      model.Date
	View       View
	Predicates Predicates
}

// Filter returns the records matching the view and every active predicate, in
// their original relative order. The input slice is not modified.
func Filter(records []model.Contract, q Query) []model.Contract {
	p := q.Predicates.Normalize()
	term := strings.ToLower(strings.TrimSpace(p.Search))

	result := make([]model.Contract, 0, len(records))
	for i := range records {
		c := &records[i]
		if !q.View.Includes(c, q.Today) {
			continue
		}
		if !matchStatus(c, p.Status, q.Today) {
			continue
		}
		if p.Renewal != RenewalAll && string(c.Renewal) != string(p.Renewal) {
			continue
		}
		if p.Department != DepartmentAll && c.Department != p.Department {
			continue
		}
		if p.Year.Active() && !p.Year.Column.Of(c).InYear(p.Year.Year) {
			continue
		}
		switch p.Attachment {
		case AttachmentHas:
			if !c.Attachment.Present() {
				continue
			}
		case AttachmentNone:
			if c.Attachment.Present() {
				continue
			}
		}
		if term != "" && !matchSearch(c, term) {
			continue
		}
		result = append(result, *c)
	}
	return result
}

func matchStatus(c *model.Contract, s Status, today model.Date) bool {
	switch s {
	case StatusUpcoming:
		return Upcoming(c, today)
	case StatusExpired:
		return Expired(c, today)
	case StatusOverdue:
		return OverdueByEndDate(c, today)
	default:
		return true
	}
}

// Upcoming: end date after today and within the next three calendar months
func Upcoming(c *model.Contract, today model.Date) bool {
	if c.Disabled {
		return false
	}
	limit := today.AddMonths(UpcomingWindowMonths)
	return c.EndDate.After(today) && c.EndDate.OnOrBefore(limit)
}

// Expired: end date on or before today. Disabled records still count.
func Expired(c *model.Contract, today model.Date) bool {
	return c.EndDate.OnOrBefore(today)
}

// OverdueByEndDate: expired with neither a file nor a note, and not disabled
func OverdueByEndDate(c *model.Contract, today model.Date) bool {
	return !c.Disabled && Expired(c, today) && missingReturn(c)
}

// SubmissionGraceDays is the allowance after the start date for handing the
// signed contract back.
const SubmissionGraceDays = 45

// SubmissionDue is start date plus the grace period
func SubmissionDue(c *model.Contract) model.Date {
	return c.StartDate.AddDays(SubmissionGraceDays)
}

// OverdueBySubmission45d: the submission due date has been reached with
// neither a file nor a note, and not disabled. Records without a start date
// are never overdue. A note counts as a return here too, the same as for
// OverdueByEndDate, although the legacy overdue list only looked at the file.
func OverdueBySubmission45d(c *model.Contract, today model.Date) bool {
	return !c.Disabled && SubmissionDue(c).OnOrBefore(today) && missingReturn(c)
}

func missingReturn(c *model.Contract) bool {
	return !c.Attachment.Present() && c.NoteBlank()
}

func matchSearch(c *model.Contract, term string) bool {
	for _, field := range []string{c.ContractNumber, c.Department, c.Vendor, c.Content, c.Handler, c.Note} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

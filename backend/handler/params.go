package handler

import (
	"strings"

	"github.com/AnTengye/contractdesk/backend/model"
	"github.com/AnTengye/contractdesk/backend/pipeline"
)

// FilterParams is the wire form of the table predicates, accepted both as a
// query string and as a JSON body
type FilterParams struct {
	Status     string `form:"status" json:"status"`
	Renewal    string `form:"renewal" json:"renewal"`
	Department string `form:"dept" json:"dept"`
	YearColumn string `form:"year_col" json:"year_col"`
	Year       string `form:"year" json:"year"`
	Attachment string `form:"file" json:"file"`
	Search     string `form:"q" json:"q"`
}

func (f FilterParams) predicates() (pipeline.Predicates, error) {
	col, err := pipeline.ParseDateColumn(f.YearColumn)
	if err != nil {
		return pipeline.Predicates{}, err
	}
	p := pipeline.Predicates{
		Status:     pipeline.Status(strings.ToUpper(f.Status)),
		Renewal:    pipeline.RenewalFilter(strings.ToUpper(f.Renewal)),
		Department: f.Department,
		Year:       pipeline.YearFilter{Column: col, Year: f.Year},
		Attachment: pipeline.AttachmentFilter(strings.ToUpper(f.Attachment)),
		Search:     f.Search,
	}
	if err := p.Validate(); err != nil {
		return pipeline.Predicates{}, err
	}
	return p.Normalize(), nil
}

// listParams is one stateless table query
type listParams struct {
	FilterParams
	View string `form:"view"`
	Page int    `form:"page" binding:"omitempty,min=1"`
}

// ContractInput is the editable part of a record. Dates use the yyyy/MM/dd
// form; empty clears the date.
type ContractInput struct {
	ContractNumber  string `json:"no" binding:"max=64"`
	Department      string `json:"dept" binding:"max=64"`
	Vendor          string `json:"vendor" binding:"max=256"`
	Content         string `json:"content" binding:"max=2000"`
	StartDate       string `json:"start_date" binding:"omitempty,datetime=2006/01/02"`
	EndDate         string `json:"end_date" binding:"omitempty,datetime=2006/01/02"`
	Renewal         string `json:"renewal" binding:"omitempty,oneof=Y N"`
	Handler         string `json:"handler" binding:"max=64"`
	ApplicationDate string `json:"app_date" binding:"omitempty,datetime=2006/01/02"`
	FinalDate       string `json:"final_date" binding:"omitempty,datetime=2006/01/02"`
	Note            string `json:"note" binding:"max=2000"`
	Disabled        bool   `json:"disabled"`
}

// Apply overwrites the editable fields of c. Identity, attachment, approvals
// and lending flags are kept.
func (in ContractInput) Apply(c *model.Contract) {
	c.ContractNumber = in.ContractNumber
	c.Department = in.Department
	c.Vendor = in.Vendor
	c.Content = in.Content
	c.StartDate = model.ParseDate(in.StartDate)
	c.EndDate = model.ParseDate(in.EndDate)
	c.Renewal = model.Renewal(in.Renewal)
	c.Handler = in.Handler
	c.ApplicationDate = model.ParseDate(in.ApplicationDate)
	c.FinalDate = model.ParseDate(in.FinalDate)
	c.Note = in.Note
	c.Disabled = in.Disabled
}

type linkInput struct {
	URL string `json:"url" binding:"required,url"`
}

type viewInput struct {
	View string `json:"view"`
}

type pageInput struct {
	Page int `json:"page" binding:"required,min=1"`
}

type selectAllInput struct {
	All bool `json:"all"`
}

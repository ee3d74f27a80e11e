package model

import (
	"strings"
)

// Contract is one row of a contract ledger
type Contract struct {
	ID               string         `json:"id" yaml:"id"`
	ContractNumber   string         `json:"no" yaml:"no"`
	Department       string         `json:"dept" yaml:"dept"`
	Vendor           string         `json:"vendor" yaml:"vendor"`
	Content          string         `json:"content" yaml:"content"`
	StartDate        Date           `json:"start_date" yaml:"start_date"`
	EndDate          Date           `json:"end_date" yaml:"end_date"`
	Renewal          Renewal        `json:"renewal" yaml:"renewal"`
	Handler          string         `json:"handler" yaml:"handler"`
	ApplicationDate  Date           `json:"app_date" yaml:"app_date"`
	FinalDate        Date           `json:"final_date" yaml:"final_date"`
	Note             string         `json:"note" yaml:"note"`
	Attachment       Attachment     `json:"attachment" yaml:"attachment"`
	Disabled         bool           `json:"disabled" yaml:"disabled"`
	Approvals        []ApprovalStep `json:"approvals,omitempty" yaml:"approvals,omitempty"`
	LendingCompleted bool           `json:"lending_completed" yaml:"lending_completed"`
	ManagerConfirmed bool           `json:"manager_confirmed" yaml:"manager_confirmed"`
}

// NoteBlank reports whether the note is empty or whitespace only
func (c *Contract) NoteBlank() bool {
	return strings.TrimSpace(c.Note) == ""
}

// Clone returns a copy that shares no slices with c
func (c Contract) Clone() Contract {
	if c.Approvals != nil {
		steps := make([]ApprovalStep, len(c.Approvals))
		copy(steps, c.Approvals)
		c.Approvals = steps
	}
	return c
}

// Renewal is the renewal flag of a contract
type Renewal string

const (
	RenewalYes   Renewal = "Y"
	RenewalNo    Renewal = "N"
	RenewalUnset Renewal = ""
)

// ApprovalStatus constants
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// ApprovalStep is one sign-off of the external approval workflow
type ApprovalStep struct {
	Role   string         `json:"role" yaml:"role"`
	Name   string         `json:"name" yaml:"name"`
	Status ApprovalStatus `json:"status" yaml:"status"`
	Date   Date           `json:"date,omitempty" yaml:"date,omitempty"`
}

package service

import (
	"github.com/AnTengye/contractdesk/backend/model"
)

// ChartLayout selects which sign-off roles an approval chart shows
type ChartLayout string

const (
	// LayoutContract is the three-step chain of a contract submission
	LayoutContract ChartLayout = "contract"
	// LayoutLending is the sectioned chain of a contract lending request
	LayoutLending ChartLayout = "lending"
)

// RoleGeneralManager signs lendings longer than 15 days
const RoleGeneralManager = "聯柏總經理"

type chartSection struct {
	title    string
	roles    []string
	optional bool
}

var chartLayouts = map[ChartLayout][]chartSection{
	LayoutContract: {
		{title: "簽核流程", roles: []string{"經辦人", "Team Leader", "部主管"}},
	},
	LayoutLending: {
		{title: "借用單位", roles: []string{"借用單位經辦", "借用-Team主管", "借用-部主管"}},
		{title: "合約權責單位", roles: []string{"合約權責單位經辦", "權責-Team主管", "權責-部主管"}},
		{title: "合約保管單位", roles: []string{"合約管理者"}},
		{title: "超過15日借閱", roles: []string{RoleGeneralManager}, optional: true},
	},
}

// ChartRow is one rendered sign-off
type ChartRow struct {
	Role        string               `json:"role"`
	Name        string               `json:"name"`
	Status      model.ApprovalStatus `json:"status"`
	StatusLabel string               `json:"status_label"`
	Signed      bool                 `json:"signed"`
	DateLabel   string               `json:"date_label"`
}

type ChartSection struct {
	Title string     `json:"title"`
	Rows  []ChartRow `json:"rows"`
}

// ApprovalChart is the read-only sign-off view of one record
type ApprovalChart struct {
	ContractID string         `json:"contract_id"`
	Layout     ChartLayout    `json:"layout"`
	Sections   []ChartSection `json:"sections"`
}

// StatusLabel is the display text of an approval status
func StatusLabel(s model.ApprovalStatus) string {
	switch s {
	case model.ApprovalApproved:
		return "核准"
	case model.ApprovalRejected:
		return "駁回"
	default:
		return "待簽核"
	}
}

// BuildApprovalChart lays out the approval steps of c. Roles with no step
// render as pending with "--" as the signer. Optional sections appear only
// when c carries one of their steps.
func BuildApprovalChart(c model.Contract, layout ChartLayout) ApprovalChart {
	steps := make(map[string]model.ApprovalStep, len(c.Approvals))
	for _, s := range c.Approvals {
		steps[s.Role] = s
	}

	sections, ok := chartLayouts[layout]
	if !ok {
		layout = LayoutContract
		sections = chartLayouts[layout]
	}

	chart := ApprovalChart{ContractID: c.ID, Layout: layout, Sections: []ChartSection{}}
	for _, sec := range sections {
		if sec.optional && !hasAnyRole(steps, sec.roles) {
			continue
		}
		out := ChartSection{Title: sec.title, Rows: make([]ChartRow, 0, len(sec.roles))}
		for _, role := range sec.roles {
			out.Rows = append(out.Rows, chartRow(role, steps[role]))
		}
		chart.Sections = append(chart.Sections, out)
	}
	return chart
}

func chartRow(role string, step model.ApprovalStep) ChartRow {
	status := step.Status
	if status == "" {
		status = model.ApprovalPending
	}
	row := ChartRow{
		Role:        role,
		Name:        step.Name,
		Status:      status,
		StatusLabel: StatusLabel(status),
		DateLabel:   "尚未簽核",
	}
	if row.Name == "" {
		row.Name = "--"
	}
	if step.Date.Valid() {
		row.Signed = true
		row.DateLabel = "簽核日期：" + step.Date.String()
	}
	return row
}

func hasAnyRole(steps map[string]model.ApprovalStep, roles []string) bool {
	for _, r := range roles {
		if _, ok := steps[r]; ok {
			return true
		}
	}
	return false
}

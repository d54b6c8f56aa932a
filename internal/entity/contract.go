package entity

import (
	"time"

	"github.com/covera-app/covera/constants"
)

// Contract is the stored contract record. Status is derived from EndDate.
type Contract struct {
	ID           string                     `json:"id"`
	OrgID        string                     `json:"orgId"`
	Title        string                     `json:"title"`
	VendorID     string                     `json:"vendorId,omitempty"`
	ContractType string                     `json:"contractType,omitempty"`
	StartDate    *string                    `json:"startDate"`
	EndDate      *string                    `json:"endDate"`
	Value        string                     `json:"value,omitempty"` // "$1,234.50"
	AutoRenewal  *bool                      `json:"autoRenewal"`
	Description  *string                    `json:"description"`
	Parties      []Party                    `json:"parties"`
	Status       constants.ComplianceStatus `json:"status"`
	Milestones   []Milestone                `json:"milestones"`
	Deliverables []Deliverable              `json:"deliverables"`
	SLAs         []SLA                      `json:"slas"`
	Documents    []Document                 `json:"documents"`
	CreatedAt    time.Time                  `json:"createdAt"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
}

type Party struct {
	Name string  `json:"name"`
	Role *string `json:"role"`
}

type Milestone struct {
	Name    string                    `json:"name"`
	DueDate *string                   `json:"dueDate"`
	Status  constants.MilestoneStatus `json:"status"`
}

type Deliverable struct {
	Name    string                      `json:"name"`
	DueDate *string                     `json:"dueDate"`
	Status  constants.DeliverableStatus `json:"status"`
}

type SLA struct {
	Metric string              `json:"metric"`
	Target string              `json:"target"`
	Status constants.SLAStatus `json:"status"`
}

package entity

import (
	"time"

	"github.com/covera-app/covera/constants"
)

// Vendor is the stored vendor record. Status fields are derived and are
// overwritten by compliance.Engine before a record leaves the service layer.
type Vendor struct {
	ID                string                     `json:"id"`
	OrgID             string                     `json:"orgId"`
	Name              string                     `json:"name"`
	Email             string                     `json:"email,omitempty"`
	Phone             string                     `json:"phone,omitempty"`
	Category          string                     `json:"category,omitempty"`
	InsuranceExpiry   *string                    `json:"insuranceExpiry"`
	Status            constants.ComplianceStatus `json:"status"`
	InsurancePolicies []InsurancePolicy          `json:"insurancePolicies"`
	Documents         []Document                 `json:"documents"`
	CreatedAt         time.Time                  `json:"createdAt"`
	UpdatedAt         time.Time                  `json:"updatedAt"`
}

// InsurancePolicy is one coverage line from a certificate of insurance.
type InsurancePolicy struct {
	Type          string                     `json:"type"`
	Carrier       *string                    `json:"carrier"`
	PolicyNumber  *string                    `json:"policyNumber"`
	CoverageLimit *int64                     `json:"coverageLimit"`
	ExpiryDate    *string                    `json:"expiryDate"`
	Status        constants.ComplianceStatus `json:"status"`
}

// Document is an opaque reference to an externally stored blob.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"` // constants.PDF | constants.IMAGE
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Path       string    `json:"path,omitempty"`
}

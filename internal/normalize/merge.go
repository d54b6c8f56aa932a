package normalize

import (
	"time"

	"github.com/covera-app/covera/internal/compliance"
	"github.com/covera-app/covera/internal/entity"
)

// MergeVendor applies an insurance patch to v. A certificate that lists
// policies replaces the policy list and the vendor expiry together, even when
// the new expiry is null; a certificate with no policies leaves both alone.
// Statuses are recomputed against today afterwards.
func MergeVendor(v *entity.Vendor, p *VendorPatch, today time.Time) {
	if v == nil || p == nil {
		return
	}
	if len(p.Policies) > 0 {
		v.InsurancePolicies = append([]entity.InsurancePolicy(nil), p.Policies...)
		v.InsuranceExpiry = p.InsuranceExpiry
	}
	if v.Name == "" && p.InsuredName != nil {
		v.Name = *p.InsuredName
	}
	compliance.RefreshVendorAt(v, today)
}

// MergeContract applies a contract patch to c: non-null fields overwrite,
// null fields keep what the record already has.
func MergeContract(c *entity.Contract, p *ContractPatch, today time.Time) {
	if c == nil || p == nil {
		return
	}
	if p.ContractType != nil {
		c.ContractType = *p.ContractType
	}
	if p.StartDate != nil {
		c.StartDate = p.StartDate
	}
	if p.EndDate != nil {
		c.EndDate = p.EndDate
	}
	if p.Value != nil {
		c.Value = FormatCurrency(*p.Value)
	}
	if p.AutoRenewal != nil {
		c.AutoRenewal = p.AutoRenewal
	}
	if p.Description != nil {
		c.Description = p.Description
	}
	if len(p.Parties) > 0 {
		c.Parties = append([]entity.Party(nil), p.Parties...)
	}
	compliance.RefreshContractAt(c, today)
}

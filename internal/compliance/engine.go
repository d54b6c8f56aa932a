package compliance

import (
	"time"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/entity"
)

// Clock returns the current wall-clock time.
type Clock func() time.Time

// Engine binds the classification rules to a clock so every consumer
// (API, reports, alerts, exports) derives "today" the same way.
type Engine struct {
	now Clock
}

// NewEngine returns an Engine reading time from now; nil means time.Now.
func NewEngine(now Clock) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Today is the engine's current time; callers pass it down so a single
// render pass evaluates every record against the same day.
func (e *Engine) Today() time.Time {
	return e.now()
}

// Insurance classifies an insurance expiry with the 30-day threshold.
func (e *Engine) Insurance(expiry *string) constants.ComplianceStatus {
	return Classify(expiry, constants.InsuranceThresholdDays, e.now())
}

// Contract classifies a contract end date with the 60-day threshold.
func (e *Engine) Contract(endDate *string) constants.ComplianceStatus {
	return Classify(endDate, constants.ContractThresholdDays, e.now())
}

// RefreshVendor recomputes the vendor status and every policy status in place.
func (e *Engine) RefreshVendor(v *entity.Vendor) {
	RefreshVendorAt(v, e.now())
}

// RefreshContract recomputes the contract status in place. Milestones,
// deliverables and SLAs carry user-set statuses and are left untouched.
func (e *Engine) RefreshContract(c *entity.Contract) {
	RefreshContractAt(c, e.now())
}

// RefreshVendorAt is RefreshVendor against an explicit day.
func RefreshVendorAt(v *entity.Vendor, today time.Time) {
	if v == nil {
		return
	}
	v.Status = Classify(v.InsuranceExpiry, constants.InsuranceThresholdDays, today)
	for i := range v.InsurancePolicies {
		p := &v.InsurancePolicies[i]
		p.Status = Classify(p.ExpiryDate, constants.InsuranceThresholdDays, today)
	}
}

// RefreshContractAt is RefreshContract against an explicit day.
func RefreshContractAt(c *entity.Contract, today time.Time) {
	if c == nil {
		return
	}
	c.Status = Classify(c.EndDate, constants.ContractThresholdDays, today)
}
